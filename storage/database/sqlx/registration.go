package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/eic-cefet/seminarios-v2-sub001/core/registration"
)

type registrationRow struct {
	ID         string    `db:"id"`
	SeminarID  string    `db:"seminar_id"`
	UserID     string    `db:"user_id"`
	AttendedAt null.Time `db:"attended_at"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r registrationRow) domain() registration.Registration {
	return registration.Registration{
		ID:         r.ID,
		SeminarID:  r.SeminarID,
		UserID:     r.UserID,
		AttendedAt: r.AttendedAt.Ptr(),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type certificateRow struct {
	ID             string    `db:"id"`
	RegistrationID string    `db:"registration_id"`
	Serial         string    `db:"serial"`
	IssuedAt       time.Time `db:"issued_at"`
}

func (r certificateRow) domain() registration.Certificate {
	return registration.Certificate{
		ID:             r.ID,
		RegistrationID: r.RegistrationID,
		Serial:         r.Serial,
		IssuedAt:       r.IssuedAt,
	}
}

type registrationRepository struct {
	db *sqlx.DB
}

var _ registration.Repository = (*registrationRepository)(nil) // interface compliance check

func NewRegistrationRepository(db *sqlx.DB) *registrationRepository {
	return &registrationRepository{db: db}
}

func (repo registrationRepository) CreateRegistration(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	reg.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO registration (id, seminar_id, user_id, attended_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		reg.ID, reg.SeminarID, reg.UserID, null.TimeFromPtr(reg.AttendedAt),
		reg.CreatedAt.UTC(), reg.UpdatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return registration.Registration{}, registration.ErrAlreadyRegistered
		}
		return registration.Registration{}, errors.Wrap(err, "inserting registration")
	}
	return reg, nil
}

func (repo registrationRepository) GetRegistration(ctx context.Context, filter registration.GetFilter) (registration.Registration, error) {
	var q string
	var args []interface{}

	switch {
	case filter.ID != "":
		q = `SELECT * FROM registration WHERE id = $1`
		args = append(args, filter.ID)
	case filter.SeminarID != "" && filter.UserID != "":
		q = `SELECT * FROM registration WHERE seminar_id = $1 AND user_id = $2`
		args = append(args, filter.SeminarID, filter.UserID)
	default:
		return registration.Registration{}, registration.ErrNotFound
	}

	var row registrationRow
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return registration.Registration{}, registration.ErrNotFound
		}
		return registration.Registration{}, errors.Wrap(err, "finding registration")
	}
	return row.domain(), nil
}

func (repo registrationRepository) QueryRegistrations(ctx context.Context, filter *registration.QueryFilter) ([]registration.Registration, error) {
	q := `SELECT * FROM registration`
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.SeminarID != "" {
			conds = append(conds, fmt.Sprintf("seminar_id = %s", arg(filter.SeminarID)))
		}
		if filter.UserID != "" {
			conds = append(conds, fmt.Sprintf("user_id = %s", arg(filter.UserID)))
		}
		if filter.AttendedOnly {
			conds = append(conds, "attended_at IS NOT NULL")
		}
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at ASC"

	var rows []registrationRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying registrations")
	}
	regs := make([]registration.Registration, 0, len(rows))
	for _, r := range rows {
		regs = append(regs, r.domain())
	}
	return regs, nil
}

func (repo registrationRepository) UpdateRegistration(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE registration SET attended_at = $2, updated_at = $3 WHERE id = $1`,
		reg.ID, null.TimeFromPtr(reg.AttendedAt), reg.UpdatedAt.UTC())
	if err != nil {
		return registration.Registration{}, errors.Wrap(err, "updating registration")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return registration.Registration{}, registration.ErrNotFound
	}
	return repo.GetRegistration(ctx, registration.GetFilter{ID: reg.ID})
}

func (repo registrationRepository) DeleteRegistration(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM registration WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting registration")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return registration.ErrNotFound
	}
	return nil
}

func (repo registrationRepository) CreateCertificate(ctx context.Context, cert registration.Certificate) (registration.Certificate, error) {
	cert.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO certificate (id, registration_id, serial, issued_at)
		VALUES ($1, $2, $3, $4)`,
		cert.ID, cert.RegistrationID, cert.Serial, cert.IssuedAt.UTC())
	if err != nil {
		return registration.Certificate{}, errors.Wrap(err, "inserting certificate")
	}
	return cert, nil
}

func (repo registrationRepository) GetCertificate(ctx context.Context, filter registration.CertificateGetFilter) (registration.Certificate, error) {
	var q string
	var args []interface{}

	switch {
	case filter.RegistrationID != "":
		q = `SELECT * FROM certificate WHERE registration_id = $1`
		args = append(args, filter.RegistrationID)
	case filter.Serial != "":
		q = `SELECT * FROM certificate WHERE serial = $1`
		args = append(args, filter.Serial)
	default:
		return registration.Certificate{}, registration.ErrCertificateNotFound
	}

	var row certificateRow
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return registration.Certificate{}, registration.ErrCertificateNotFound
		}
		return registration.Certificate{}, errors.Wrap(err, "finding certificate")
	}
	return row.domain(), nil
}
