package importer

// Status classifies what happened to a single source row.
type Status int

const (
	StatusInserted Status = iota
	StatusDuplicate
	StatusInvalid
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusInserted:
		return "inserted"
	case StatusDuplicate:
		return "duplicate"
	case StatusInvalid:
		return "invalid"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RowResult is what happened to one source row.
type RowResult struct {
	Line   int
	Status Status
	Reason string
}

// Failure is a row that was not stored, as listed in the Outcome.
type Failure struct {
	Line   int    `json:"line"`
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// Outcome summarizes an import run. Failed counts both invalid rows and rows
// that could not be written.
type Outcome struct {
	Processed  int       `json:"processed"`
	Succeeded  int       `json:"succeeded"`
	Duplicates int       `json:"duplicates"`
	Failed     int       `json:"failed"`
	Failures   []Failure `json:"failures,omitempty"`
}

// Fold derives the outcome counters from per-row results.
func Fold(results []RowResult) *Outcome {
	o := &Outcome{Processed: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusInserted:
			o.Succeeded++
		case StatusDuplicate:
			o.Duplicates++
		default:
			o.Failed++
			o.Failures = append(o.Failures, Failure{Line: r.Line, Status: r.Status.String(), Reason: r.Reason})
		}
	}
	return o
}
