// Package importer loads patient rows from a spreadsheet into the database
// in fixed-size transactional batches.
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nuvie/records/internal/normalize"
)

// DefaultBatchSize is used when New is given a non-positive batch size.
const DefaultBatchSize = 100

// Importer loads rows from a Source into a Store one batch per transaction.
type Importer struct {
	store      Store
	normalizer *normalize.Normalizer
	batchSize  int
	log        zerolog.Logger
}

// New builds an Importer that writes batchSize rows per session.
func New(store Store, normalizer *normalize.Normalizer, batchSize int, log zerolog.Logger) *Importer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Importer{
		store:      store,
		normalizer: normalizer,
		batchSize:  batchSize,
		log:        log.With().Str("component", "importer").Logger(),
	}
}

// Run imports every row of src. A source that cannot be read returns no
// outcome. Batch and row failures are recorded in the outcome and the run
// continues. Cancellation stops between batches and returns what was done.
func (imp *Importer) Run(ctx context.Context, src Source) (*Outcome, error) {
	start := time.Now()
	rows, err := src.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", src.Name(), err)
	}
	imp.log.Info().Str("source", src.Name()).Int("rows", len(rows)).Msg("source loaded")

	results := make([]RowResult, 0, len(rows))
	for from, batch := 0, 1; from < len(rows); from, batch = from+imp.batchSize, batch+1 {
		if err := ctx.Err(); err != nil {
			imp.log.Warn().Err(err).Int("batch", batch).Msg("import cancelled")
			return Fold(results), err
		}
		to := min(from+imp.batchSize, len(rows))
		results = append(results, imp.runBatch(ctx, batch, rows[from:to])...)
	}

	out := Fold(results)
	imp.log.Info().
		Str("source", src.Name()).
		Int("processed", out.Processed).
		Int("succeeded", out.Succeeded).
		Int("duplicates", out.Duplicates).
		Int("failed", out.Failed).
		Dur("elapsed", time.Since(start)).
		Msg("import finished")
	return out, nil
}

func (imp *Importer) runBatch(ctx context.Context, batch int, rows []normalize.RawRow) []RowResult {
	log := imp.log.With().Int("batch", batch).Int("first_line", rows[0].Line).Int("size", len(rows)).Logger()
	log.Info().Msg("processing batch")

	sess, err := imp.store.Begin(ctx)
	if err != nil {
		log.Error().Err(err).Msg("could not open batch session")
		return failAll(rows, fmt.Sprintf("batch %d not started: %v", batch, err))
	}

	results := make([]RowResult, 0, len(rows))
	for _, row := range rows {
		r := imp.processRow(ctx, sess, row)
		imp.logRow(log, r)
		results = append(results, r)
	}

	if err := sess.Commit(ctx); err != nil {
		log.Error().Err(err).Msg("batch commit failed, rolling back")
		if rbErr := sess.Rollback(ctx); rbErr != nil {
			log.Error().Err(rbErr).Msg("rollback failed")
		}
		reason := fmt.Sprintf("batch %d commit failed: %v", batch, err)
		for i := range results {
			if results[i].Status == StatusInserted {
				results[i] = RowResult{Line: results[i].Line, Status: StatusFailed, Reason: reason}
			}
		}
		return results
	}

	log.Info().Msg("batch committed")
	return results
}

func (imp *Importer) processRow(ctx context.Context, sess Session, row normalize.RawRow) RowResult {
	ssn := row.String(normalize.ColSSN)
	if ssn == nil {
		return invalid(row, "missing SSN")
	}
	birth, ok := row.Cells[normalize.ColBirthDate]
	if !ok || normalize.IsAbsent(birth) {
		return invalid(row, "missing BIRTHDATE")
	}
	if _, err := normalize.TryParseDate(birth); err != nil {
		return invalid(row, fmt.Sprintf("unparseable BIRTHDATE %q", birth))
	}

	existing, err := sess.FindByNaturalKey(ctx, *ssn)
	if err != nil {
		return RowResult{Line: row.Line, Status: StatusFailed, Reason: fmt.Sprintf("duplicate check: %v", err)}
	}
	if existing != nil {
		return RowResult{Line: row.Line, Status: StatusDuplicate, Reason: "SSN " + *ssn + " already exists"}
	}

	p, err := imp.normalizer.Map(row)
	if err != nil {
		return invalid(row, err.Error())
	}
	if err := sess.StageInsert(ctx, p); err != nil {
		return RowResult{Line: row.Line, Status: StatusFailed, Reason: fmt.Sprintf("insert: %v", err)}
	}
	return RowResult{Line: row.Line, Status: StatusInserted}
}

func (imp *Importer) logRow(log zerolog.Logger, r RowResult) {
	switch r.Status {
	case StatusDuplicate:
		log.Info().Int("line", r.Line).Str("reason", r.Reason).Msg("skipping duplicate row")
	case StatusInvalid:
		log.Warn().Int("line", r.Line).Str("reason", r.Reason).Msg("skipping invalid row")
	case StatusFailed:
		log.Error().Int("line", r.Line).Str("reason", r.Reason).Msg("row failed")
	}
}

func invalid(row normalize.RawRow, reason string) RowResult {
	return RowResult{Line: row.Line, Status: StatusInvalid, Reason: reason}
}

func failAll(rows []normalize.RawRow, reason string) []RowResult {
	out := make([]RowResult, len(rows))
	for i, row := range rows {
		out[i] = RowResult{Line: row.Line, Status: StatusFailed, Reason: reason}
	}
	return out
}
