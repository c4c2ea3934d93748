package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/eic-cefet/seminarios-v2-sub001/core"
	"github.com/eic-cefet/seminarios-v2-sub001/core/seminar"
)

type seminarRow struct {
	ID          string      `db:"id"`
	Name        null.String `db:"name"`
	Slug        null.String `db:"slug"`
	Description null.String `db:"description"`
	ScheduledAt null.Time   `db:"scheduled_at"`
	Room        null.String `db:"room"`
	IsActive    null.Bool   `db:"is_active"`
	CreatedBy   null.String `db:"created_by"`
	LocationID  null.String `db:"location_id"`
	SubjectID   null.String `db:"subject_id"`
	WorkshopID  null.String `db:"workshop_id"`
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
	DeletedAt   null.Time   `db:"deleted_at"`
}

func (r seminarRow) domain() seminar.Seminar {
	return seminar.Seminar{
		ID:          r.ID,
		Name:        r.Name.String,
		Slug:        r.Slug.String,
		Description: r.Description.String,
		ScheduledAt: r.ScheduledAt.Time,
		Room:        r.Room.String,
		IsActive:    r.IsActive.Ptr(),
		CreatedBy:   r.CreatedBy.String,
		LocationID:  r.LocationID.String,
		SubjectID:   r.SubjectID.Ptr(),
		WorkshopID:  r.WorkshopID.Ptr(),
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
		DeletedAt:   r.DeletedAt.Ptr(),
	}
}

func newSeminarRow(sem seminar.Seminar) seminarRow {
	return seminarRow{
		ID:          sem.ID,
		Name:        null.NewString(sem.Name, sem.Name != ""),
		Slug:        null.NewString(sem.Slug, sem.Slug != ""),
		Description: null.NewString(sem.Description, sem.Description != ""),
		ScheduledAt: null.NewTime(sem.ScheduledAt.UTC(), !sem.ScheduledAt.IsZero()),
		Room:        null.NewString(sem.Room, sem.Room != ""),
		IsActive:    null.BoolFromPtr(sem.IsActive),
		CreatedBy:   null.NewString(sem.CreatedBy, sem.CreatedBy != ""),
		LocationID:  null.NewString(sem.LocationID, sem.LocationID != ""),
		SubjectID:   null.StringFromPtr(sem.SubjectID),
		WorkshopID:  null.StringFromPtr(sem.WorkshopID),
		CreatedAt:   null.NewTime(sem.CreatedAt.UTC(), !sem.CreatedAt.IsZero()),
		UpdatedAt:   null.NewTime(sem.UpdatedAt.UTC(), !sem.UpdatedAt.IsZero()),
		DeletedAt:   null.TimeFromPtr(sem.DeletedAt),
	}
}

type seminarRepository struct {
	db *sqlx.DB
}

var _ seminar.Repository = (*seminarRepository)(nil) // interface compliance check

func NewSeminarRepository(db *sqlx.DB) *seminarRepository {
	return &seminarRepository{db: db}
}

func (repo seminarRepository) CheckSlugUniqueness(ctx context.Context, slug string, excludedSeminars ...seminar.Seminar) error {
	q := `SELECT EXISTS (SELECT 1 FROM seminar WHERE slug = $1`
	args := []interface{}{slug}
	if len(excludedSeminars) > 0 {
		ids := make([]string, 0, len(excludedSeminars))
		for _, s := range excludedSeminars {
			ids = append(ids, s.ID)
		}
		q += ` AND NOT (id = ANY($2))`
		args = append(args, pq.Array(ids))
	}
	q += `)`

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, q, args...); err != nil {
		return errors.Wrap(err, "checking slug uniqueness")
	}
	if exists {
		return seminar.ErrSlugExists
	}
	return nil
}

func (repo seminarRepository) CreateSeminar(ctx context.Context, sem seminar.Seminar) (seminar.Seminar, error) {
	sem.ID = uuid.New().String()
	row := newSeminarRow(sem)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO seminar (id, name, slug, description, scheduled_at, room, is_active,
			created_by, location_id, subject_id, workshop_id, created_at, updated_at, deleted_at)
		VALUES (:id, :name, :slug, :description, :scheduled_at, :room, :is_active,
			:created_by, :location_id, :subject_id, :workshop_id, :created_at, :updated_at, :deleted_at)`,
		row)
	if err != nil {
		if isUniqueViolation(err) {
			return seminar.Seminar{}, seminar.ErrSlugExists
		}
		return seminar.Seminar{}, errors.Wrap(err, "inserting seminar")
	}
	return row.domain(), nil
}

func (repo seminarRepository) GetSeminar(ctx context.Context, filter seminar.GetFilter) (seminar.Seminar, error) {
	var q string
	var args []interface{}

	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return seminar.Seminar{}, seminar.ErrNotFound
		}
		q = `SELECT * FROM seminar WHERE id = $1`
		args = append(args, filter.ID)
	case filter.Slug != "":
		q = `SELECT * FROM seminar WHERE slug = $1`
		args = append(args, filter.Slug)
	default:
		return seminar.Seminar{}, seminar.ErrNotFound
	}
	if !filter.IncludeDeleted {
		q += ` AND deleted_at IS NULL`
	}

	var row seminarRow
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return seminar.Seminar{}, seminar.ErrNotFound
		}
		return seminar.Seminar{}, errors.Wrap(err, "finding seminar")
	}
	return row.domain(), nil
}

func (repo seminarRepository) QuerySeminars(ctx context.Context, filter *seminar.QueryFilter, ordering []core.DBOrdering) ([]seminar.Seminar, error) {
	q := `SELECT * FROM seminar`
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	includeDeleted := false
	if filter != nil {
		includeDeleted = filter.IncludeDeleted
		if filter.Search != "" {
			p := arg("%" + filter.Search + "%")
			conds = append(conds, fmt.Sprintf("(name ILIKE %[1]s OR description ILIKE %[1]s)", p))
		}
		if filter.LocationID != "" {
			conds = append(conds, fmt.Sprintf("location_id = %s", arg(filter.LocationID)))
		}
		if filter.SubjectID != "" {
			conds = append(conds, fmt.Sprintf("subject_id = %s", arg(filter.SubjectID)))
		}
		if filter.WorkshopID != "" {
			conds = append(conds, fmt.Sprintf("workshop_id = %s", arg(filter.WorkshopID)))
		}
		if filter.IsActive != nil {
			conds = append(conds, fmt.Sprintf("is_active = %s", arg(*filter.IsActive)))
		}
		if !filter.ScheduledFrom.IsZero() {
			conds = append(conds, fmt.Sprintf("scheduled_at >= %s", arg(filter.ScheduledFrom.UTC())))
		}
		if !filter.ScheduledTo.IsZero() {
			conds = append(conds, fmt.Sprintf("scheduled_at <= %s", arg(filter.ScheduledTo.UTC())))
		}
		if filter.CreatedBy != "" {
			conds = append(conds, fmt.Sprintf("created_by = %s", arg(filter.CreatedBy)))
		}
	}
	if !includeDeleted {
		conds = append(conds, "deleted_at IS NULL")
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += orderingClause(ordering, "scheduled_at DESC")

	var rows []seminarRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying seminars")
	}
	sems := make([]seminar.Seminar, 0, len(rows))
	for _, r := range rows {
		sems = append(sems, r.domain())
	}
	return sems, nil
}

func (repo seminarRepository) UpdateSeminar(ctx context.Context, sem seminar.Seminar) (seminar.Seminar, error) {
	row := newSeminarRow(sem)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE seminar SET
			name         = COALESCE(:name, name),
			slug         = COALESCE(:slug, slug),
			description  = COALESCE(:description, description),
			scheduled_at = COALESCE(:scheduled_at, scheduled_at),
			room         = COALESCE(:room, room),
			is_active    = COALESCE(:is_active, is_active),
			location_id  = COALESCE(:location_id, location_id),
			subject_id   = :subject_id,
			workshop_id  = :workshop_id,
			updated_at   = COALESCE(:updated_at, updated_at)
		WHERE id = :id`,
		row)
	if err != nil {
		if isUniqueViolation(err) {
			return seminar.Seminar{}, seminar.ErrSlugExists
		}
		return seminar.Seminar{}, errors.Wrap(err, "updating seminar")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return seminar.Seminar{}, seminar.ErrNotFound
	}
	return repo.GetSeminar(ctx, seminar.GetFilter{ID: sem.ID, IncludeDeleted: true})
}

func (repo seminarRepository) SetSeminarDeleted(ctx context.Context, id string, deletedAt *time.Time) (seminar.Seminar, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE seminar SET deleted_at = $2, updated_at = NOW() WHERE id = $1`,
		id, null.TimeFromPtr(deletedAt))
	if err != nil {
		return seminar.Seminar{}, errors.Wrap(err, "marking seminar deleted")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return seminar.Seminar{}, seminar.ErrNotFound
	}
	return repo.GetSeminar(ctx, seminar.GetFilter{ID: id, IncludeDeleted: true})
}

func (repo seminarRepository) ReassignSubject(ctx context.Context, fromSubjectID, toSubjectID string) (int, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE seminar SET subject_id = $2, updated_at = NOW() WHERE subject_id = $1`,
		fromSubjectID, toSubjectID)
	if err != nil {
		return 0, errors.Wrap(err, "reassigning seminar subjects")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
