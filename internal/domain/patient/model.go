package patient

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("patient not found")
	ErrDuplicateSSN = errors.New("a patient with this SSN already exists")
	ErrSSNRequired  = errors.New("ssn is required")
	ErrDuplicateID  = errors.New("a patient with this id already exists")
	ErrConflict     = errors.New("patient conflicts with an existing record")
)

// Demographics is a cleaned patient record. A nil field means the value
// was absent in the source; non-nil strings are trimmed and never empty.
type Demographics struct {
	SSN                *string    `json:"ssn"`
	FullName           *string    `json:"full_name"`
	BirthDate          *time.Time `json:"birth_date"`
	DeathDate          *time.Time `json:"death_date"`
	Gender             *string    `json:"gender"`
	SelfDeclaredColor  *string    `json:"self_declared_color"`
	CivilState         *string    `json:"civil_state"`
	Income             *float64   `json:"income"`
	Address            *string    `json:"address"`
	City               *string    `json:"city"`
	State              *string    `json:"state"`
	ZipCode            *string    `json:"zip_code"`
	HealthcareCoverage *string    `json:"healthcare_coverage"`
}

type Patient struct {
	ID uuid.UUID `json:"id"`
	Demographics
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Update is a partial change to a patient. Fields holds the JSON names the
// client sent, so an explicit null clears a field while an omitted one is
// left alone. With no Fields only non-nil values apply.
type Update struct {
	Demographics
	Fields map[string]bool `json:"-"`
}

func (u *Update) UnmarshalJSON(b []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}
	if err := json.Unmarshal(b, &u.Demographics); err != nil {
		return err
	}
	u.Fields = make(map[string]bool, len(keys))
	for k := range keys {
		u.Fields[k] = true
	}
	return nil
}

// Clears reports whether the update explicitly sets the named field to null.
func (u Update) Clears(field string) bool {
	return u.Fields[field] && u.Demographics.isNil(field)
}

// Apply copies the fields u sets onto d, including explicit nulls.
func (d *Demographics) Apply(u Update) {
	set(&d.SSN, u.SSN, u.Fields["ssn"])
	set(&d.FullName, u.FullName, u.Fields["full_name"])
	set(&d.BirthDate, u.BirthDate, u.Fields["birth_date"])
	set(&d.DeathDate, u.DeathDate, u.Fields["death_date"])
	set(&d.Gender, u.Gender, u.Fields["gender"])
	set(&d.SelfDeclaredColor, u.SelfDeclaredColor, u.Fields["self_declared_color"])
	set(&d.CivilState, u.CivilState, u.Fields["civil_state"])
	set(&d.Income, u.Income, u.Fields["income"])
	set(&d.Address, u.Address, u.Fields["address"])
	set(&d.City, u.City, u.Fields["city"])
	set(&d.State, u.State, u.Fields["state"])
	set(&d.ZipCode, u.ZipCode, u.Fields["zip_code"])
	set(&d.HealthcareCoverage, u.HealthcareCoverage, u.Fields["healthcare_coverage"])
}

func set[T any](dst **T, v *T, sent bool) {
	if v != nil || sent {
		*dst = v
	}
}

func (d Demographics) isNil(field string) bool {
	switch field {
	case "ssn":
		return d.SSN == nil
	case "full_name":
		return d.FullName == nil
	case "birth_date":
		return d.BirthDate == nil
	case "death_date":
		return d.DeathDate == nil
	case "gender":
		return d.Gender == nil
	case "self_declared_color":
		return d.SelfDeclaredColor == nil
	case "civil_state":
		return d.CivilState == nil
	case "income":
		return d.Income == nil
	case "address":
		return d.Address == nil
	case "city":
		return d.City == nil
	case "state":
		return d.State == nil
	case "zip_code":
		return d.ZipCode == nil
	case "healthcare_coverage":
		return d.HealthcareCoverage == nil
	}
	return false
}

// toUTC stores dates without a zone offset.
func (d *Demographics) toUTC() {
	if d.BirthDate != nil {
		t := d.BirthDate.UTC()
		d.BirthDate = &t
	}
	if d.DeathDate != nil {
		t := d.DeathDate.UTC()
		d.DeathDate = &t
	}
}

// BasicData is the short summary shown on patient cards.
type BasicData struct {
	FullName  string `json:"full_name"`
	Age       *int   `json:"age"`
	BirthDate string `json:"birth_date,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Deceased  bool   `json:"deceased"`
	Location  string `json:"location,omitempty"`
	Coverage  string `json:"healthcare_coverage,omitempty"`
}

const birthDateLayout = "02/01/2006"

// Summary builds BasicData with age computed at now, or at death when the
// patient is deceased.
func (p *Patient) Summary(now time.Time) BasicData {
	b := BasicData{
		FullName: deref(p.FullName),
		Gender:   deref(p.Gender),
		Deceased: p.DeathDate != nil,
		Coverage: deref(p.HealthcareCoverage),
	}
	if p.BirthDate != nil {
		b.BirthDate = p.BirthDate.Format(birthDateLayout)
		until := now
		if p.DeathDate != nil {
			until = *p.DeathDate
		}
		age := yearsBetween(*p.BirthDate, until)
		b.Age = &age
	}
	switch city, state := deref(p.City), deref(p.State); {
	case city != "" && state != "":
		b.Location = city + ", " + state
	default:
		b.Location = city + state
	}
	return b
}

func yearsBetween(from, to time.Time) int {
	from, to = from.UTC(), to.UTC()
	years := to.Year() - from.Year()
	if to.Month() < from.Month() || (to.Month() == from.Month() && to.Day() < from.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
