package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nuvie/records/internal/platform/db"
)

const uniqueViolation = "23505"

// Constraint names Postgres gives the patients table's keys.
const (
	pkeyConstraint = "patients_pkey"
	ssnConstraint  = "patients_ssn_key"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Resolve(ctx, r.pool)
}

const patientCols = `id, ssn, full_name, birth_date, death_date, gender, self_declared_color,
	civil_state, income, address, city, state, zip_code, healthcare_coverage,
	created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (
			id, ssn, full_name, birth_date, death_date, gender, self_declared_color,
			civil_state, income, address, city, state, zip_code, healthcare_coverage
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING created_at, updated_at`,
		p.ID, p.SSN, p.FullName, p.BirthDate, p.DeathDate, p.Gender, p.SelfDeclaredColor,
		p.CivilState, p.Income, p.Address, p.City, p.State, p.ZipCode, p.HealthcareCoverage,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return translateErr(err)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) GetBySSN(ctx context.Context, ssn string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE ssn = $1`, ssn))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE patients SET
			ssn=$2, full_name=$3, birth_date=$4, death_date=$5, gender=$6, self_declared_color=$7,
			civil_state=$8, income=$9, address=$10, city=$11, state=$12, zip_code=$13,
			healthcare_coverage=$14, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.SSN, p.FullName, p.BirthDate, p.DeathDate, p.Gender, p.SelfDeclaredColor,
		p.CivilState, p.Income, p.Address, p.City, p.State, p.ZipCode, p.HealthcareCoverage,
	).Scan(&p.UpdatedAt)
	return translateErr(err)
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patients
		ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	patients, err := collectPatients(rows)
	return patients, total, err
}

func (r *repoPG) SearchByName(ctx context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	pattern := "%" + likeEscaper.Replace(name) + "%"

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patients WHERE full_name ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patients
		WHERE full_name ILIKE $1 ORDER BY full_name, id LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	patients, err := collectPatients(rows)
	return patients, total, err
}

// likeEscaper makes user input match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.SSN, &p.FullName, &p.BirthDate, &p.DeathDate, &p.Gender,
		&p.SelfDeclaredColor, &p.CivilState, &p.Income, &p.Address, &p.City, &p.State,
		&p.ZipCode, &p.HealthcareCoverage, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translateErr(err)
	}
	return &p, nil
}

func collectPatients(rows pgx.Rows) ([]*Patient, error) {
	defer rows.Close()
	var out []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case ssnConstraint:
			return ErrDuplicateSSN
		case pkeyConstraint:
			return ErrDuplicateID
		}
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	return err
}
