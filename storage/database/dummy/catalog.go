package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/eic-cefet/seminarios-v2-sub001/core"
	"github.com/eic-cefet/seminarios-v2-sub001/core/catalog"
)

type catalogRepository struct {
	location *locationTable
	subject  *subjectTable
	workshop *workshopTable
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *DB) catalog.Repository {
	return &catalogRepository{location: db.location, subject: db.subject, workshop: db.workshop}
}

func (repo *catalogRepository) CreateLocation(ctx context.Context, loc catalog.Location) (catalog.Location, error) {
	repo.location.Lock()
	defer repo.location.Unlock()

	loc.ID = uuid.New().String()
	repo.location.table[loc.ID] = &loc
	return loc, nil
}

func (repo *catalogRepository) QueryLocations(ctx context.Context, ordering []core.DBOrdering) ([]catalog.Location, error) {
	repo.location.RLock()
	defer repo.location.RUnlock()

	locs := make([]catalog.Location, 0, len(repo.location.table))
	for _, l := range repo.location.table {
		locs = append(locs, *l)
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i].Name < locs[j].Name })
	return locs, nil
}

func (repo *catalogRepository) GetLocation(ctx context.Context, id string) (catalog.Location, error) {
	repo.location.RLock()
	defer repo.location.RUnlock()

	if loc, ok := repo.location.table[id]; ok {
		return *loc, nil
	}
	return catalog.Location{}, catalog.ErrNotFound
}

func (repo *catalogRepository) UpdateLocation(ctx context.Context, loc catalog.Location) (catalog.Location, error) {
	repo.location.Lock()
	defer repo.location.Unlock()

	origLoc, ok := repo.location.table[loc.ID]
	if !ok {
		return catalog.Location{}, catalog.ErrNotFound
	}
	origLoc.Name = loc.Name
	origLoc.Address = loc.Address
	origLoc.Capacity = loc.Capacity
	origLoc.UpdatedAt = loc.UpdatedAt

	repo.location.table[loc.ID] = origLoc
	return *origLoc, nil
}

func (repo *catalogRepository) DeleteLocation(ctx context.Context, id string) error {
	repo.location.Lock()
	defer repo.location.Unlock()

	if _, ok := repo.location.table[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(repo.location.table, id)
	return nil
}

func (repo *catalogRepository) CreateSubject(ctx context.Context, sub catalog.Subject) (catalog.Subject, error) {
	repo.subject.Lock()
	defer repo.subject.Unlock()

	sub.ID = uuid.New().String()
	repo.subject.table[sub.ID] = &sub
	return sub, nil
}

func (repo *catalogRepository) QuerySubjects(ctx context.Context, ordering []core.DBOrdering) ([]catalog.Subject, error) {
	repo.subject.RLock()
	defer repo.subject.RUnlock()

	subs := make([]catalog.Subject, 0, len(repo.subject.table))
	for _, s := range repo.subject.table {
		subs = append(subs, *s)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Name < subs[j].Name })
	return subs, nil
}

func (repo *catalogRepository) GetSubject(ctx context.Context, id string) (catalog.Subject, error) {
	repo.subject.RLock()
	defer repo.subject.RUnlock()

	if sub, ok := repo.subject.table[id]; ok {
		return *sub, nil
	}
	return catalog.Subject{}, catalog.ErrNotFound
}

func (repo *catalogRepository) UpdateSubject(ctx context.Context, sub catalog.Subject) (catalog.Subject, error) {
	repo.subject.Lock()
	defer repo.subject.Unlock()

	origSub, ok := repo.subject.table[sub.ID]
	if !ok {
		return catalog.Subject{}, catalog.ErrNotFound
	}
	origSub.Name = sub.Name
	origSub.UpdatedAt = sub.UpdatedAt

	repo.subject.table[sub.ID] = origSub
	return *origSub, nil
}

func (repo *catalogRepository) DeleteSubject(ctx context.Context, id string) error {
	repo.subject.Lock()
	defer repo.subject.Unlock()

	if _, ok := repo.subject.table[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(repo.subject.table, id)
	return nil
}

func (repo *catalogRepository) CreateWorkshop(ctx context.Context, ws catalog.Workshop) (catalog.Workshop, error) {
	repo.workshop.Lock()
	defer repo.workshop.Unlock()

	ws.ID = uuid.New().String()
	repo.workshop.table[ws.ID] = &ws
	return ws, nil
}

func (repo *catalogRepository) QueryWorkshops(ctx context.Context, ordering []core.DBOrdering) ([]catalog.Workshop, error) {
	repo.workshop.RLock()
	defer repo.workshop.RUnlock()

	wss := make([]catalog.Workshop, 0, len(repo.workshop.table))
	for _, w := range repo.workshop.table {
		wss = append(wss, *w)
	}
	sort.Slice(wss, func(i, j int) bool { return wss[i].Name < wss[j].Name })
	return wss, nil
}

func (repo *catalogRepository) GetWorkshop(ctx context.Context, id string) (catalog.Workshop, error) {
	repo.workshop.RLock()
	defer repo.workshop.RUnlock()

	if ws, ok := repo.workshop.table[id]; ok {
		return *ws, nil
	}
	return catalog.Workshop{}, catalog.ErrNotFound
}

func (repo *catalogRepository) UpdateWorkshop(ctx context.Context, ws catalog.Workshop) (catalog.Workshop, error) {
	repo.workshop.Lock()
	defer repo.workshop.Unlock()

	origWs, ok := repo.workshop.table[ws.ID]
	if !ok {
		return catalog.Workshop{}, catalog.ErrNotFound
	}
	origWs.Name = ws.Name
	origWs.Description = ws.Description
	origWs.UpdatedAt = ws.UpdatedAt

	repo.workshop.table[ws.ID] = origWs
	return *origWs, nil
}

func (repo *catalogRepository) DeleteWorkshop(ctx context.Context, id string) error {
	repo.workshop.Lock()
	defer repo.workshop.Unlock()

	if _, ok := repo.workshop.table[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(repo.workshop.table, id)
	return nil
}
