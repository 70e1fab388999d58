package importer

import (
	"context"

	"github.com/nuvie/records/internal/domain/patient"
)

// Store opens one session per batch window.
type Store interface {
	Begin(ctx context.Context) (Session, error)
}

// Session is a unit of work. Rows staged in a session are visible to its
// own FindByNaturalKey and are persisted only by Commit.
type Session interface {
	// FindByNaturalKey returns nil, nil when no patient has the SSN.
	FindByNaturalKey(ctx context.Context, ssn string) (*patient.Patient, error)
	// StageInsert must leave the session usable when it fails.
	StageInsert(ctx context.Context, p *patient.Patient) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
