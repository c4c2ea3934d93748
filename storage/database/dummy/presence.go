package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/eic-cefet/seminarios-v2-sub001/core/presence"
)

type presenceLinkRepository struct {
	db *presenceLinkTable
}

var _ presence.Repository = (*presenceLinkRepository)(nil) // interface compliance check

func NewPresenceLinkRepository(db *DB) presence.Repository {
	return &presenceLinkRepository{db: db.presence}
}

func (repo *presenceLinkRepository) CreatePresenceLink(ctx context.Context, pl presence.PresenceLink) (presence.PresenceLink, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.table {
		if existing.SeminarID == pl.SeminarID {
			return presence.PresenceLink{}, presence.ErrAlreadyExists
		}
	}

	pl.ID = uuid.New().String()
	repo.db.table[pl.ID] = &pl
	return pl, nil
}

func (repo *presenceLinkRepository) GetPresenceLink(ctx context.Context, filter presence.GetFilter) (presence.PresenceLink, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if pl, ok := repo.db.table[filter.ID]; ok {
			return *pl, nil
		}
		return presence.PresenceLink{}, presence.ErrNotFound
	}
	for _, pl := range repo.db.table {
		switch {
		case filter.SeminarID != "" && pl.SeminarID == filter.SeminarID:
			return *pl, nil
		case filter.UUID != "" && pl.UUID == filter.UUID:
			return *pl, nil
		}
	}
	return presence.PresenceLink{}, presence.ErrNotFound
}

func (repo *presenceLinkRepository) UpdatePresenceLink(ctx context.Context, pl presence.PresenceLink) (presence.PresenceLink, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origPl, ok := repo.db.table[pl.ID]
	if !ok {
		return presence.PresenceLink{}, presence.ErrNotFound
	}
	origPl.Active = pl.Active
	origPl.ExpiresAt = pl.ExpiresAt
	origPl.UpdatedAt = pl.UpdatedAt

	repo.db.table[pl.ID] = origPl
	return *origPl, nil
}
