package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nuvie/records/internal/domain/patient"
	"github.com/nuvie/records/internal/platform/db"
)

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pgStore struct {
	pool     txBeginner
	patients patient.Repository
}

// NewPGStore runs each session in a pgx transaction. The patient repository
// joins it through the transaction carried in the context.
func NewPGStore(pool *pgxpool.Pool, patients patient.Repository) Store {
	return &pgStore{pool: pool, patients: patients}
}

func (s *pgStore) Begin(ctx context.Context) (Session, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	return &pgSession{tx: tx, patients: s.patients}, nil
}

type pgSession struct {
	tx       pgx.Tx
	patients patient.Repository
}

func (s *pgSession) FindByNaturalKey(ctx context.Context, ssn string) (*patient.Patient, error) {
	p, err := s.patients.GetBySSN(db.WithTx(ctx, s.tx), ssn)
	if errors.Is(err, patient.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// StageInsert wraps the insert in a savepoint so a rejected row does not
// abort the batch transaction.
func (s *pgSession) StageInsert(ctx context.Context, p *patient.Patient) error {
	sp, err := s.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if err := s.patients.Create(db.WithTx(ctx, sp), p); err != nil {
		_ = sp.Rollback(ctx)
		return err
	}
	return sp.Commit(ctx)
}

func (s *pgSession) Commit(ctx context.Context) error {
	return s.tx.Commit(ctx)
}

func (s *pgSession) Rollback(ctx context.Context) error {
	err := s.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}
