package normalize

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nuvie/records/internal/domain/patient"
)

// Source column names.
const (
	ColID                 = "Id"
	ColFirst              = "FIRST"
	ColMiddle             = "MIDDLE"
	ColLast               = "LAST"
	ColPrefix             = "PREFIX"
	ColSuffix             = "SUFFIX"
	ColBirthDate          = "BIRTHDATE"
	ColDeathDate          = "DEATHDATE"
	ColSSN                = "SSN"
	ColGender             = "GENDER"
	ColMarital            = "MARITAL"
	ColRace               = "RACE"
	ColIncome             = "INCOME"
	ColAddress            = "ADDRESS"
	ColCity               = "CITY"
	ColState              = "STATE"
	ColZip                = "ZIP"
	ColHealthcareCoverage = "HEALTHCARE_COVERAGE"
)

// RawRow is one data line of a source file. Line is 1-based and counts the
// header, so it matches what a spreadsheet shows.
type RawRow struct {
	Line  int
	Cells map[string]string
}

// Get returns the cell for col, or nil when the column is missing.
func (r RawRow) Get(col string) *string {
	v, ok := r.Cells[col]
	if !ok {
		return nil
	}
	return &v
}

// String returns the cleaned cell for col.
func (r RawRow) String(col string) *string {
	v, ok := r.Cells[col]
	if !ok {
		return nil
	}
	return CleanString(v)
}

// Normalizer maps raw rows onto patient records.
type Normalizer struct {
	vocab Vocabulary
	log   zerolog.Logger
}

// New returns a Normalizer using vocab for coded columns. Warnings go to log.
func New(vocab Vocabulary, log zerolog.Logger) *Normalizer {
	return &Normalizer{vocab: vocab, log: log}
}

// Map builds a patient from row. The Id column, when filled, must be a UUID
// and is kept as the patient id; otherwise a new id is generated.
func (n *Normalizer) Map(row RawRow) (*patient.Patient, error) {
	id := uuid.New()
	if raw := row.String(ColID); raw != nil {
		parsed, err := uuid.Parse(*raw)
		if err != nil {
			return nil, fmt.Errorf("invalid Id %q: %w", *raw, err)
		}
		id = parsed
	}

	d := patient.Demographics{
		BirthDate: n.Date(row, ColBirthDate),
		DeathDate: n.Date(row, ColDeathDate),
		SSN:       row.String(ColSSN),
		FullName: FullName(
			row.Get(ColPrefix), row.Get(ColFirst), row.Get(ColMiddle),
			row.Get(ColLast), row.Get(ColSuffix),
		),
		Gender:             Translate(row.Get(ColGender), n.vocab.Gender),
		SelfDeclaredColor:  Translate(row.Get(ColRace), n.vocab.Race),
		CivilState:         Translate(row.Get(ColMarital), n.vocab.Marital),
		Address:            row.String(ColAddress),
		City:               row.String(ColCity),
		State:              row.String(ColState),
		ZipCode:            row.String(ColZip),
		HealthcareCoverage: row.String(ColHealthcareCoverage),
	}
	if v, ok := row.Cells[ColIncome]; ok {
		d.Income = CleanFloat(v)
	}

	return &patient.Patient{ID: id, Demographics: d}, nil
}

// Date parses the col cell, logging a warning when a non-blank value
// cannot be read.
func (n *Normalizer) Date(row RawRow, col string) *time.Time {
	raw, ok := row.Cells[col]
	if !ok {
		return nil
	}
	t, err := TryParseDate(raw)
	if err != nil {
		n.log.Warn().Err(err).Int("line", row.Line).Str("column", col).Msg("unparseable date")
		return nil
	}
	return t
}
