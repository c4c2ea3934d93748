package dummydb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eic-cefet/seminarios-v2-sub001/core"
	"github.com/eic-cefet/seminarios-v2-sub001/core/seminar"
)

type seminarRepository struct {
	db *seminarTable
}

var _ seminar.Repository = (*seminarRepository)(nil) // interface compliance check

func NewSeminarRepository(db *DB) seminar.Repository {
	return &seminarRepository{db: db.seminar}
}

func (repo *seminarRepository) query() []seminar.Seminar {
	sems := make([]seminar.Seminar, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		sems = append(sems, *s)
	}
	return sems
}

func (repo *seminarRepository) CheckSlugUniqueness(ctx context.Context, slug string, excludedSeminars ...seminar.Seminar) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]struct{}, len(excludedSeminars))
	for _, s := range excludedSeminars {
		excluded[s.ID] = struct{}{}
	}

	for _, sem := range repo.query() {
		if _, skip := excluded[sem.ID]; skip {
			continue
		}
		if sem.Slug == slug {
			return seminar.ErrSlugExists
		}
	}
	return nil
}

func (repo *seminarRepository) CreateSeminar(ctx context.Context, sem seminar.Seminar) (seminar.Seminar, error) {
	if err := repo.CheckSlugUniqueness(ctx, sem.Slug); err != nil {
		return seminar.Seminar{}, err
	}

	repo.db.Lock()
	defer repo.db.Unlock()

	sem.ID = uuid.New().String()
	repo.db.table[sem.ID] = &sem
	return sem, nil
}

func (repo *seminarRepository) GetSeminar(ctx context.Context, filter seminar.GetFilter) (seminar.Seminar, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	match := func(sem seminar.Seminar) bool {
		if sem.IsDeleted() && !filter.IncludeDeleted {
			return false
		}
		switch {
		case filter.ID != "":
			return sem.ID == filter.ID
		case filter.Slug != "":
			return sem.Slug == filter.Slug
		}
		return false
	}

	for _, sem := range repo.query() {
		if match(sem) {
			return sem, nil
		}
	}
	return seminar.Seminar{}, seminar.ErrNotFound
}

func (repo *seminarRepository) QuerySeminars(ctx context.Context, filter *seminar.QueryFilter, ordering []core.DBOrdering) ([]seminar.Seminar, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sems := repo.query()

	includeDeleted := filter != nil && filter.IncludeDeleted
	if !includeDeleted {
		var filtered []seminar.Seminar
		for _, s := range sems {
			if !s.IsDeleted() {
				filtered = append(filtered, s)
			}
		}
		sems = filtered
	}

	if filter != nil {
		if filter.Search != "" {
			var filtered []seminar.Seminar
			search := strings.ToLower(filter.Search)
			for _, s := range sems {
				if strings.Contains(strings.ToLower(s.Name), search) ||
					strings.Contains(strings.ToLower(s.Description), search) {
					filtered = append(filtered, s)
				}
			}
			sems = filtered
		}
		if filter.LocationID != "" {
			var filtered []seminar.Seminar
			for _, s := range sems {
				if s.LocationID == filter.LocationID {
					filtered = append(filtered, s)
				}
			}
			sems = filtered
		}
		if filter.SubjectID != "" {
			var filtered []seminar.Seminar
			for _, s := range sems {
				if s.SubjectID != nil && *s.SubjectID == filter.SubjectID {
					filtered = append(filtered, s)
				}
			}
			sems = filtered
		}
		if filter.WorkshopID != "" {
			var filtered []seminar.Seminar
			for _, s := range sems {
				if s.WorkshopID != nil && *s.WorkshopID == filter.WorkshopID {
					filtered = append(filtered, s)
				}
			}
			sems = filtered
		}
		if filter.IsActive != nil {
			var filtered []seminar.Seminar
			for _, s := range sems {
				if s.Active() == *filter.IsActive {
					filtered = append(filtered, s)
				}
			}
			sems = filtered
		}
		if !filter.ScheduledFrom.IsZero() {
			var filtered []seminar.Seminar
			fromUTC := filter.ScheduledFrom.UTC()
			for _, s := range sems {
				if !s.ScheduledAt.Before(fromUTC) {
					filtered = append(filtered, s)
				}
			}
			sems = filtered
		}
		if !filter.ScheduledTo.IsZero() {
			var filtered []seminar.Seminar
			toUTC := filter.ScheduledTo.UTC()
			for _, s := range sems {
				if !s.ScheduledAt.After(toUTC) {
					filtered = append(filtered, s)
				}
			}
			sems = filtered
		}
		if filter.CreatedBy != "" {
			var filtered []seminar.Seminar
			for _, s := range sems {
				if s.CreatedBy == filter.CreatedBy {
					filtered = append(filtered, s)
				}
			}
			sems = filtered
		}
	}

	sort.Slice(sems, func(i, j int) bool { return sems[i].ScheduledAt.After(sems[j].ScheduledAt) })
	return sems, nil
}

func (repo *seminarRepository) UpdateSeminar(ctx context.Context, sem seminar.Seminar) (seminar.Seminar, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origSem, ok := repo.db.table[sem.ID]
	if !ok {
		return seminar.Seminar{}, seminar.ErrNotFound
	}
	if sem.Name != "" {
		origSem.Name = sem.Name
	}
	if sem.Slug != "" {
		origSem.Slug = sem.Slug
	}
	if sem.Description != "" {
		origSem.Description = sem.Description
	}
	if !sem.ScheduledAt.IsZero() {
		origSem.ScheduledAt = sem.ScheduledAt
	}
	if sem.Room != "" {
		origSem.Room = sem.Room
	}
	if sem.IsActive != nil {
		origSem.IsActive = sem.IsActive
	}
	if sem.LocationID != "" {
		origSem.LocationID = sem.LocationID
	}
	origSem.SubjectID = sem.SubjectID
	origSem.WorkshopID = sem.WorkshopID
	if !sem.UpdatedAt.IsZero() {
		origSem.UpdatedAt = sem.UpdatedAt
	}

	repo.db.table[sem.ID] = origSem
	return *origSem, nil
}

func (repo *seminarRepository) SetSeminarDeleted(ctx context.Context, id string, deletedAt *time.Time) (seminar.Seminar, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sem, ok := repo.db.table[id]
	if !ok {
		return seminar.Seminar{}, seminar.ErrNotFound
	}
	sem.DeletedAt = deletedAt
	return *sem, nil
}

func (repo *seminarRepository) ReassignSubject(ctx context.Context, fromSubjectID, toSubjectID string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, sem := range repo.db.table {
		if sem.SubjectID != nil && *sem.SubjectID == fromSubjectID {
			to := toSubjectID
			sem.SubjectID = &to
			n++
		}
	}
	return n, nil
}
