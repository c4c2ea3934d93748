package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/eic-cefet/seminarios-v2-sub001/core/registration"
)

type registrationRepository struct {
	db    *registrationTable
	certs *certificateTable
}

var _ registration.Repository = (*registrationRepository)(nil) // interface compliance check

func NewRegistrationRepository(db *DB) registration.Repository {
	return &registrationRepository{db: db.registration, certs: db.certificate}
}

func (repo *registrationRepository) CreateRegistration(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.table {
		if existing.SeminarID == reg.SeminarID && existing.UserID == reg.UserID {
			return registration.Registration{}, registration.ErrAlreadyRegistered
		}
	}

	reg.ID = uuid.New().String()
	repo.db.table[reg.ID] = &reg
	return reg, nil
}

func (repo *registrationRepository) GetRegistration(ctx context.Context, filter registration.GetFilter) (registration.Registration, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if reg, ok := repo.db.table[filter.ID]; ok {
			return *reg, nil
		}
		return registration.Registration{}, registration.ErrNotFound
	}
	if filter.SeminarID != "" && filter.UserID != "" {
		for _, reg := range repo.db.table {
			if reg.SeminarID == filter.SeminarID && reg.UserID == filter.UserID {
				return *reg, nil
			}
		}
	}
	return registration.Registration{}, registration.ErrNotFound
}

func (repo *registrationRepository) QueryRegistrations(ctx context.Context, filter *registration.QueryFilter) ([]registration.Registration, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	regs := make([]registration.Registration, 0, len(repo.db.table))
	for _, reg := range repo.db.table {
		if filter != nil {
			if filter.SeminarID != "" && reg.SeminarID != filter.SeminarID {
				continue
			}
			if filter.UserID != "" && reg.UserID != filter.UserID {
				continue
			}
			if filter.AttendedOnly && !reg.Attended() {
				continue
			}
		}
		regs = append(regs, *reg)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].CreatedAt.Before(regs[j].CreatedAt) })
	return regs, nil
}

func (repo *registrationRepository) UpdateRegistration(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origReg, ok := repo.db.table[reg.ID]
	if !ok {
		return registration.Registration{}, registration.ErrNotFound
	}
	origReg.AttendedAt = reg.AttendedAt
	origReg.UpdatedAt = reg.UpdatedAt

	repo.db.table[reg.ID] = origReg
	return *origReg, nil
}

func (repo *registrationRepository) DeleteRegistration(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return registration.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func (repo *registrationRepository) CreateCertificate(ctx context.Context, cert registration.Certificate) (registration.Certificate, error) {
	repo.certs.Lock()
	defer repo.certs.Unlock()

	cert.ID = uuid.New().String()
	repo.certs.table[cert.ID] = &cert
	return cert, nil
}

func (repo *registrationRepository) GetCertificate(ctx context.Context, filter registration.CertificateGetFilter) (registration.Certificate, error) {
	repo.certs.RLock()
	defer repo.certs.RUnlock()

	for _, cert := range repo.certs.table {
		switch {
		case filter.RegistrationID != "" && cert.RegistrationID == filter.RegistrationID:
			return *cert, nil
		case filter.Serial != "" && cert.Serial == filter.Serial:
			return *cert, nil
		}
	}
	return registration.Certificate{}, registration.ErrCertificateNotFound
}
