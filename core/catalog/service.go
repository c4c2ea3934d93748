package catalog

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/eic-cefet/seminarios-v2-sub001/core"
	"github.com/eic-cefet/seminarios-v2-sub001/core/seminar"
)

var (
	// errors
	ErrNotFound  = errors.New("record not found")
	ErrSelfMerge = errors.New("a subject cannot be merged into itself")
)

type (
	Service interface {
		CreateLocation(ctx context.Context, nl NewLocation) (Location, error)
		QueryLocations(ctx context.Context, ordering []core.DBOrdering) ([]Location, error)
		GetLocation(ctx context.Context, id string) (Location, error)
		UpdateLocation(ctx context.Context, id string, nl NewLocation) (Location, error)
		DeleteLocation(ctx context.Context, id string) error

		CreateSubject(ctx context.Context, ns NewSubject) (Subject, error)
		QuerySubjects(ctx context.Context, ordering []core.DBOrdering) ([]Subject, error)
		GetSubject(ctx context.Context, id string) (Subject, error)
		UpdateSubject(ctx context.Context, id string, ns NewSubject) (Subject, error)
		DeleteSubject(ctx context.Context, id string) error
		// MergeSubjects moves every seminar referencing id onto intoID and
		// deletes the merged subject; returns the number of seminars moved.
		MergeSubjects(ctx context.Context, id, intoID string) (int, error)

		CreateWorkshop(ctx context.Context, nw NewWorkshop) (Workshop, error)
		QueryWorkshops(ctx context.Context, ordering []core.DBOrdering) ([]Workshop, error)
		GetWorkshop(ctx context.Context, id string) (Workshop, error)
		UpdateWorkshop(ctx context.Context, id string, nw NewWorkshop) (Workshop, error)
		DeleteWorkshop(ctx context.Context, id string) error
	}

	service struct {
		repo        Repository
		seminarRepo seminar.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, seminarRepo seminar.Repository) Service {
	return &service{repo: repo, seminarRepo: seminarRepo}
}

// Locations

func (svc *service) CreateLocation(ctx context.Context, nl NewLocation) (Location, error) {
	now := time.Now().UTC()
	return svc.repo.CreateLocation(ctx, Location{
		Name:      nl.Name,
		Address:   nl.Address,
		Capacity:  nl.Capacity,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) QueryLocations(ctx context.Context, ordering []core.DBOrdering) ([]Location, error) {
	return svc.repo.QueryLocations(ctx, ordering)
}

func (svc *service) GetLocation(ctx context.Context, id string) (Location, error) {
	return svc.repo.GetLocation(ctx, id)
}

func (svc *service) UpdateLocation(ctx context.Context, id string, nl NewLocation) (Location, error) {
	loc, err := svc.repo.GetLocation(ctx, id)
	if err != nil {
		return Location{}, err
	}
	loc.Name = nl.Name
	loc.Address = nl.Address
	loc.Capacity = nl.Capacity
	loc.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateLocation(ctx, loc)
}

func (svc *service) DeleteLocation(ctx context.Context, id string) error {
	// a location still referenced by seminars trips the FK constraint;
	// that error bubbles up as-is
	return svc.repo.DeleteLocation(ctx, id)
}

// Subjects

func (svc *service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	now := time.Now().UTC()
	return svc.repo.CreateSubject(ctx, Subject{Name: ns.Name, CreatedAt: now, UpdatedAt: now})
}

func (svc *service) QuerySubjects(ctx context.Context, ordering []core.DBOrdering) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx, ordering)
}

func (svc *service) GetSubject(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubject(ctx, id)
}

func (svc *service) UpdateSubject(ctx context.Context, id string, ns NewSubject) (Subject, error) {
	sub, err := svc.repo.GetSubject(ctx, id)
	if err != nil {
		return Subject{}, err
	}
	sub.Name = ns.Name
	sub.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubject(ctx, sub)
}

func (svc *service) DeleteSubject(ctx context.Context, id string) error {
	return svc.repo.DeleteSubject(ctx, id)
}

func (svc *service) MergeSubjects(ctx context.Context, id, intoID string) (int, error) {
	if id == intoID {
		return 0, core.NewValidationError(ErrSelfMerge, core.FieldError{Field: "into_id", Error: ErrSelfMerge.Error()})
	}
	// both sides must exist before any seminar moves
	if _, err := svc.repo.GetSubject(ctx, id); err != nil {
		return 0, err
	}
	if _, err := svc.repo.GetSubject(ctx, intoID); err != nil {
		return 0, err
	}

	moved, err := svc.seminarRepo.ReassignSubject(ctx, id, intoID)
	if err != nil {
		return 0, errors.Wrap(err, "reassigning seminars")
	}
	if err = svc.repo.DeleteSubject(ctx, id); err != nil {
		return moved, errors.Wrap(err, "deleting merged subject")
	}
	return moved, nil
}

// Workshops

func (svc *service) CreateWorkshop(ctx context.Context, nw NewWorkshop) (Workshop, error) {
	now := time.Now().UTC()
	return svc.repo.CreateWorkshop(ctx, Workshop{
		Name:        nw.Name,
		Description: nw.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) QueryWorkshops(ctx context.Context, ordering []core.DBOrdering) ([]Workshop, error) {
	return svc.repo.QueryWorkshops(ctx, ordering)
}

func (svc *service) GetWorkshop(ctx context.Context, id string) (Workshop, error) {
	return svc.repo.GetWorkshop(ctx, id)
}

func (svc *service) UpdateWorkshop(ctx context.Context, id string, nw NewWorkshop) (Workshop, error) {
	ws, err := svc.repo.GetWorkshop(ctx, id)
	if err != nil {
		return Workshop{}, err
	}
	ws.Name = nw.Name
	ws.Description = nw.Description
	ws.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateWorkshop(ctx, ws)
}

func (svc *service) DeleteWorkshop(ctx context.Context, id string) error {
	return svc.repo.DeleteWorkshop(ctx, id)
}
