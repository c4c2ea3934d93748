package seminar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/pkg/errors"

	"github.com/eic-cefet/seminarios-v2-sub001/core"
	"github.com/eic-cefet/seminarios-v2-sub001/core/user"
)

var (
	// errors
	ErrNotFound     = errors.New("seminar not found")
	ErrAccessDenied = errors.New("permission denied")
	ErrSlugExists   = errors.New("a seminar with this slug already exists")
)

type (
	Service interface {
		Create(ctx context.Context, actor user.User, ns NewSeminar) (Seminar, error)
		Get(ctx context.Context, actor user.User, id string) (Seminar, error)
		// GetOpen returns an active, non-deleted seminar by ID or slug; the
		// student-facing path, no policy involved.
		GetOpen(ctx context.Context, idOrSlug string) (Seminar, error)
		Query(ctx context.Context, actor user.User, filter *QueryFilter, ordering []core.DBOrdering) ([]Seminar, error)
		Update(ctx context.Context, actor user.User, id string, us UpdateSeminar) (Seminar, error)
		Delete(ctx context.Context, actor user.User, id string) error
		Restore(ctx context.Context, actor user.User, id string) (Seminar, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// uniqueSlug derives a URL-safe slug from name, suffixing a counter until
// it is free.
func (svc *service) uniqueSlug(ctx context.Context, name string, excluded ...Seminar) (string, error) {
	base := slug.Make(name)
	candidate := base
	for i := 2; ; i++ {
		err := svc.repo.CheckSlugUniqueness(ctx, candidate, excluded...)
		if err == nil {
			return candidate, nil
		}
		if errors.Cause(err) != ErrSlugExists {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (svc *service) Create(ctx context.Context, actor user.User, ns NewSeminar) (Seminar, error) {
	if !CanAccess(actor, Seminar{}, ActionCreate) {
		return Seminar{}, ErrAccessDenied
	}

	sl, err := svc.uniqueSlug(ctx, ns.Name)
	if err != nil {
		return Seminar{}, errors.Wrap(err, "deriving slug")
	}

	now := time.Now().UTC()
	sem := Seminar{
		Name:        ns.Name,
		Slug:        sl,
		Description: ns.Description,
		ScheduledAt: ns.ScheduledAt.UTC(),
		Room:        ns.Room,
		CreatedBy:   actor.ID,
		LocationID:  ns.LocationID,
		SubjectID:   ns.SubjectID,
		WorkshopID:  ns.WorkshopID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	sem.SetActive(true)
	return svc.repo.CreateSeminar(ctx, sem)
}

func (svc *service) Get(ctx context.Context, actor user.User, id string) (Seminar, error) {
	sem, err := svc.repo.GetSeminar(ctx, GetFilter{ID: id, IncludeDeleted: actor.IsAdmin()})
	if err != nil {
		return Seminar{}, err
	}
	// an existing but non-owned seminar is reported as denied, not hidden
	if !CanAccess(actor, sem, ActionView) {
		return Seminar{}, ErrAccessDenied
	}
	return sem, nil
}

func (svc *service) GetOpen(ctx context.Context, idOrSlug string) (Seminar, error) {
	filter := GetFilter{ID: idOrSlug}
	if _, err := uuid.Parse(idOrSlug); err != nil {
		filter = GetFilter{Slug: idOrSlug}
	}
	sem, err := svc.repo.GetSeminar(ctx, filter)
	if err != nil {
		return Seminar{}, err
	}
	if !sem.Open() {
		return Seminar{}, ErrNotFound
	}
	return sem, nil
}

func (svc *service) Query(ctx context.Context, actor user.User, filter *QueryFilter, ordering []core.DBOrdering) ([]Seminar, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	switch {
	case actor.IsAdmin():
		// unfiltered
	case actor.IsTeacher():
		filter.CreatedBy = actor.ID
	default:
		// students only browse open seminars
		active := true
		filter.IsActive = &active
		filter.IncludeDeleted = false
	}
	return svc.repo.QuerySeminars(ctx, filter, ordering)
}

func (svc *service) Update(ctx context.Context, actor user.User, id string, us UpdateSeminar) (Seminar, error) {
	sem, err := svc.repo.GetSeminar(ctx, GetFilter{ID: id})
	if err != nil {
		return Seminar{}, err
	}
	if !CanAccess(actor, sem, ActionUpdate) {
		return Seminar{}, ErrAccessDenied
	}

	// the slug follows the name
	if us.Name != sem.Name {
		if sem.Slug, err = svc.uniqueSlug(ctx, us.Name, sem); err != nil {
			return Seminar{}, errors.Wrap(err, "deriving slug")
		}
	}

	sem.Name = us.Name
	if us.Description != nil {
		sem.Description = core.CleanString(*us.Description)
	}
	sem.ScheduledAt = us.ScheduledAt.UTC()
	if us.Room != nil {
		sem.Room = core.CleanString(*us.Room)
	}
	if us.IsActive != nil {
		sem.IsActive = us.IsActive
	}
	sem.LocationID = us.LocationID
	if us.SubjectID != nil {
		sem.SubjectID = us.SubjectID
	}
	if us.WorkshopID != nil {
		sem.WorkshopID = us.WorkshopID
	}
	sem.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateSeminar(ctx, sem)
}

func (svc *service) Delete(ctx context.Context, actor user.User, id string) error {
	sem, err := svc.repo.GetSeminar(ctx, GetFilter{ID: id})
	if err != nil {
		return err
	}
	if !CanAccess(actor, sem, ActionDelete) {
		return ErrAccessDenied
	}
	now := time.Now().UTC()
	_, err = svc.repo.SetSeminarDeleted(ctx, id, &now)
	return err
}

func (svc *service) Restore(ctx context.Context, actor user.User, id string) (Seminar, error) {
	sem, err := svc.repo.GetSeminar(ctx, GetFilter{ID: id, IncludeDeleted: true})
	if err != nil {
		return Seminar{}, err
	}
	if !CanAccess(actor, sem, ActionDelete) {
		return Seminar{}, ErrAccessDenied
	}
	return svc.repo.SetSeminarDeleted(ctx, id, nil)
}
