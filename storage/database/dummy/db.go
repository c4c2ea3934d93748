// Package dummydb is an in-memory database used in tests and DEV mode.
package dummydb

import (
	"sync"

	"github.com/eic-cefet/seminarios-v2-sub001/core/catalog"
	"github.com/eic-cefet/seminarios-v2-sub001/core/presence"
	"github.com/eic-cefet/seminarios-v2-sub001/core/registration"
	"github.com/eic-cefet/seminarios-v2-sub001/core/seminar"
	"github.com/eic-cefet/seminarios-v2-sub001/core/user"
)

type (
	DB struct {
		user         *userTable
		seminar      *seminarTable
		presence     *presenceLinkTable
		location     *locationTable
		subject      *subjectTable
		workshop     *workshopTable
		registration *registrationTable
		certificate  *certificateTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	seminarTable struct {
		sync.RWMutex
		table map[string]*seminar.Seminar
	}

	presenceLinkTable struct {
		sync.RWMutex
		table map[string]*presence.PresenceLink
	}

	locationTable struct {
		sync.RWMutex
		table map[string]*catalog.Location
	}

	subjectTable struct {
		sync.RWMutex
		table map[string]*catalog.Subject
	}

	workshopTable struct {
		sync.RWMutex
		table map[string]*catalog.Workshop
	}

	registrationTable struct {
		sync.RWMutex
		table map[string]*registration.Registration
	}

	certificateTable struct {
		sync.RWMutex
		table map[string]*registration.Certificate
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:         &userTable{table: make(map[string]*user.User)},
		seminar:      &seminarTable{table: make(map[string]*seminar.Seminar)},
		presence:     &presenceLinkTable{table: make(map[string]*presence.PresenceLink)},
		location:     &locationTable{table: make(map[string]*catalog.Location)},
		subject:      &subjectTable{table: make(map[string]*catalog.Subject)},
		workshop:     &workshopTable{table: make(map[string]*catalog.Workshop)},
		registration: &registrationTable{table: make(map[string]*registration.Registration)},
		certificate:  &certificateTable{table: make(map[string]*registration.Certificate)},
	}
	return db, nil
}
