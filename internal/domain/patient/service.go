package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	patients Repository
	now      func() time.Time
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients, now: time.Now}
}

func (s *Service) CreatePatient(ctx context.Context, d Demographics) (*Patient, error) {
	if d.SSN == nil || strings.TrimSpace(*d.SSN) == "" {
		return nil, ErrSSNRequired
	}
	ssn := strings.TrimSpace(*d.SSN)
	d.SSN = &ssn

	if err := s.ensureSSNFree(ctx, ssn, uuid.Nil); err != nil {
		return nil, err
	}

	d.toUTC()
	p := &Patient{ID: uuid.New(), Demographics: d}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return p, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) GetPatientBySSN(ctx context.Context, ssn string) (*Patient, error) {
	return s.patients.GetBySSN(ctx, strings.TrimSpace(ssn))
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

func (s *Service) SearchByName(ctx context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	return s.patients.SearchByName(ctx, strings.TrimSpace(name), limit, offset)
}

// UpdatePatient applies the fields upd sets; an explicit null clears the
// field, except the SSN which cannot be removed. Changing the SSN to one held
// by another patient fails with ErrDuplicateSSN.
func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, upd Update) (*Patient, error) {
	if upd.Clears("ssn") {
		return nil, ErrSSNRequired
	}
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.SSN != nil {
		ssn := strings.TrimSpace(*upd.SSN)
		if ssn == "" {
			return nil, ErrSSNRequired
		}
		upd.SSN = &ssn
		if p.SSN == nil || *p.SSN != ssn {
			if err := s.ensureSSNFree(ctx, ssn, id); err != nil {
				return nil, err
			}
		}
	}

	upd.toUTC()
	p.Apply(upd)
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return p, nil
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.patients.Delete(ctx, id)
}

func (s *Service) BasicData(ctx context.Context, id uuid.UUID) (*BasicData, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	b := p.Summary(s.now())
	return &b, nil
}

func (s *Service) ensureSSNFree(ctx context.Context, ssn string, self uuid.UUID) error {
	existing, err := s.patients.GetBySSN(ctx, ssn)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check ssn: %w", err)
	case existing.ID != self:
		return ErrDuplicateSSN
	}
	return nil
}
