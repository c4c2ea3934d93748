package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/eic-cefet/seminarios-v2-sub001/core"
	"github.com/eic-cefet/seminarios-v2-sub001/core/catalog"
)

type locationRow struct {
	ID        string      `db:"id"`
	Name      string      `db:"name"`
	Address   null.String `db:"address"`
	Capacity  null.Int    `db:"capacity"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (r locationRow) domain() catalog.Location {
	return catalog.Location{
		ID:        r.ID,
		Name:      r.Name,
		Address:   r.Address.String,
		Capacity:  r.Capacity.Int,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type subjectRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r subjectRow) domain() catalog.Subject {
	return catalog.Subject{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

type workshopRow struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	Description null.String `db:"description"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (r workshopRow) domain() catalog.Workshop {
	return catalog.Workshop{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description.String,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type catalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *sqlx.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (repo catalogRepository) CreateLocation(ctx context.Context, loc catalog.Location) (catalog.Location, error) {
	loc.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO location (id, name, address, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		loc.ID, loc.Name, null.NewString(loc.Address, loc.Address != ""), loc.Capacity,
		loc.CreatedAt.UTC(), loc.UpdatedAt.UTC())
	if err != nil {
		return catalog.Location{}, errors.Wrap(err, "inserting location")
	}
	return loc, nil
}

func (repo catalogRepository) QueryLocations(ctx context.Context, ordering []core.DBOrdering) ([]catalog.Location, error) {
	q := `SELECT * FROM location` + orderingClause(ordering, "name ASC")
	var rows []locationRow
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying locations")
	}
	locs := make([]catalog.Location, 0, len(rows))
	for _, r := range rows {
		locs = append(locs, r.domain())
	}
	return locs, nil
}

func (repo catalogRepository) GetLocation(ctx context.Context, id string) (catalog.Location, error) {
	if _, err := uuid.Parse(id); err != nil {
		return catalog.Location{}, catalog.ErrNotFound
	}
	var row locationRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM location WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Location{}, catalog.ErrNotFound
		}
		return catalog.Location{}, errors.Wrap(err, "finding location")
	}
	return row.domain(), nil
}

func (repo catalogRepository) UpdateLocation(ctx context.Context, loc catalog.Location) (catalog.Location, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE location SET name = $2, address = $3, capacity = $4, updated_at = $5 WHERE id = $1`,
		loc.ID, loc.Name, null.NewString(loc.Address, loc.Address != ""), loc.Capacity, loc.UpdatedAt.UTC())
	if err != nil {
		return catalog.Location{}, errors.Wrap(err, "updating location")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.Location{}, catalog.ErrNotFound
	}
	return repo.GetLocation(ctx, loc.ID)
}

func (repo catalogRepository) DeleteLocation(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM location WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting location")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (repo catalogRepository) CreateSubject(ctx context.Context, sub catalog.Subject) (catalog.Subject, error) {
	sub.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO subject (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		sub.ID, sub.Name, sub.CreatedAt.UTC(), sub.UpdatedAt.UTC())
	if err != nil {
		return catalog.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (repo catalogRepository) QuerySubjects(ctx context.Context, ordering []core.DBOrdering) ([]catalog.Subject, error) {
	q := `SELECT * FROM subject` + orderingClause(ordering, "name ASC")
	var rows []subjectRow
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subs := make([]catalog.Subject, 0, len(rows))
	for _, r := range rows {
		subs = append(subs, r.domain())
	}
	return subs, nil
}

func (repo catalogRepository) GetSubject(ctx context.Context, id string) (catalog.Subject, error) {
	if _, err := uuid.Parse(id); err != nil {
		return catalog.Subject{}, catalog.ErrNotFound
	}
	var row subjectRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM subject WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Subject{}, catalog.ErrNotFound
		}
		return catalog.Subject{}, errors.Wrap(err, "finding subject")
	}
	return row.domain(), nil
}

func (repo catalogRepository) UpdateSubject(ctx context.Context, sub catalog.Subject) (catalog.Subject, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE subject SET name = $2, updated_at = $3 WHERE id = $1`,
		sub.ID, sub.Name, sub.UpdatedAt.UTC())
	if err != nil {
		return catalog.Subject{}, errors.Wrap(err, "updating subject")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.Subject{}, catalog.ErrNotFound
	}
	return repo.GetSubject(ctx, sub.ID)
}

func (repo catalogRepository) DeleteSubject(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM subject WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (repo catalogRepository) CreateWorkshop(ctx context.Context, ws catalog.Workshop) (catalog.Workshop, error) {
	ws.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO workshop (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		ws.ID, ws.Name, null.NewString(ws.Description, ws.Description != ""),
		ws.CreatedAt.UTC(), ws.UpdatedAt.UTC())
	if err != nil {
		return catalog.Workshop{}, errors.Wrap(err, "inserting workshop")
	}
	return ws, nil
}

func (repo catalogRepository) QueryWorkshops(ctx context.Context, ordering []core.DBOrdering) ([]catalog.Workshop, error) {
	q := `SELECT * FROM workshop` + orderingClause(ordering, "name ASC")
	var rows []workshopRow
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying workshops")
	}
	wss := make([]catalog.Workshop, 0, len(rows))
	for _, r := range rows {
		wss = append(wss, r.domain())
	}
	return wss, nil
}

func (repo catalogRepository) GetWorkshop(ctx context.Context, id string) (catalog.Workshop, error) {
	if _, err := uuid.Parse(id); err != nil {
		return catalog.Workshop{}, catalog.ErrNotFound
	}
	var row workshopRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM workshop WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Workshop{}, catalog.ErrNotFound
		}
		return catalog.Workshop{}, errors.Wrap(err, "finding workshop")
	}
	return row.domain(), nil
}

func (repo catalogRepository) UpdateWorkshop(ctx context.Context, ws catalog.Workshop) (catalog.Workshop, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE workshop SET name = $2, description = $3, updated_at = $4 WHERE id = $1`,
		ws.ID, ws.Name, null.NewString(ws.Description, ws.Description != ""), ws.UpdatedAt.UTC())
	if err != nil {
		return catalog.Workshop{}, errors.Wrap(err, "updating workshop")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.Workshop{}, catalog.ErrNotFound
	}
	return repo.GetWorkshop(ctx, ws.ID)
}

func (repo catalogRepository) DeleteWorkshop(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM workshop WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting workshop")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
