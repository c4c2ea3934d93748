package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/eic-cefet/seminarios-v2-sub001/core/presence"
)

type presenceLinkRow struct {
	ID        string    `db:"id"`
	SeminarID string    `db:"seminar_id"`
	UUID      string    `db:"uuid"`
	IsActive  bool      `db:"is_active"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r presenceLinkRow) domain() presence.PresenceLink {
	return presence.PresenceLink{
		ID:        r.ID,
		SeminarID: r.SeminarID,
		UUID:      r.UUID,
		Active:    r.IsActive,
		ExpiresAt: r.ExpiresAt,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func newPresenceLinkRow(pl presence.PresenceLink) presenceLinkRow {
	return presenceLinkRow{
		ID:        pl.ID,
		SeminarID: pl.SeminarID,
		UUID:      pl.UUID,
		IsActive:  pl.Active,
		ExpiresAt: pl.ExpiresAt.UTC(),
		CreatedAt: pl.CreatedAt.UTC(),
		UpdatedAt: pl.UpdatedAt.UTC(),
	}
}

type presenceLinkRepository struct {
	db *sqlx.DB
}

var _ presence.Repository = (*presenceLinkRepository)(nil) // interface compliance check

func NewPresenceLinkRepository(db *sqlx.DB) *presenceLinkRepository {
	return &presenceLinkRepository{db: db}
}

func (repo presenceLinkRepository) CreatePresenceLink(ctx context.Context, pl presence.PresenceLink) (presence.PresenceLink, error) {
	pl.ID = uuid.New().String()
	row := newPresenceLinkRow(pl)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO presence_link (id, seminar_id, uuid, is_active, expires_at, created_at, updated_at)
		VALUES (:id, :seminar_id, :uuid, :is_active, :expires_at, :created_at, :updated_at)`,
		row)
	if err != nil {
		if isUniqueViolation(err) {
			return presence.PresenceLink{}, presence.ErrAlreadyExists
		}
		return presence.PresenceLink{}, errors.Wrap(err, "inserting presence link")
	}
	return row.domain(), nil
}

func (repo presenceLinkRepository) GetPresenceLink(ctx context.Context, filter presence.GetFilter) (presence.PresenceLink, error) {
	var q string
	var args []interface{}

	switch {
	case filter.ID != "":
		q = `SELECT * FROM presence_link WHERE id = $1`
		args = append(args, filter.ID)
	case filter.SeminarID != "":
		q = `SELECT * FROM presence_link WHERE seminar_id = $1`
		args = append(args, filter.SeminarID)
	case filter.UUID != "":
		if _, err := uuid.Parse(filter.UUID); err != nil {
			return presence.PresenceLink{}, presence.ErrNotFound
		}
		q = `SELECT * FROM presence_link WHERE uuid = $1`
		args = append(args, filter.UUID)
	default:
		return presence.PresenceLink{}, presence.ErrNotFound
	}

	var row presenceLinkRow
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return presence.PresenceLink{}, presence.ErrNotFound
		}
		return presence.PresenceLink{}, errors.Wrap(err, "finding presence link")
	}
	return row.domain(), nil
}

func (repo presenceLinkRepository) UpdatePresenceLink(ctx context.Context, pl presence.PresenceLink) (presence.PresenceLink, error) {
	row := newPresenceLinkRow(pl)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE presence_link SET
			is_active  = :is_active,
			expires_at = :expires_at,
			updated_at = :updated_at
		WHERE id = :id`,
		row)
	if err != nil {
		return presence.PresenceLink{}, errors.Wrap(err, "updating presence link")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return presence.PresenceLink{}, presence.ErrNotFound
	}
	return repo.GetPresenceLink(ctx, presence.GetFilter{ID: pl.ID})
}
