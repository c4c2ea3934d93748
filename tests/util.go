package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/eic-cefet/seminarios-v2-sub001/core/catalog"
	"github.com/eic-cefet/seminarios-v2-sub001/core/registration"
	"github.com/eic-cefet/seminarios-v2-sub001/core/seminar"
	"github.com/eic-cefet/seminarios-v2-sub001/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateLocation(t *testing.T, repo catalog.Repository, name string) catalog.Location {
	now := time.Now().UTC()
	loc, err := repo.CreateLocation(context.Background(), catalog.Location{
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateLocation() failed: %v", err)
	}
	return loc
}

func CreateSubject(t *testing.T, repo catalog.Repository, name string) catalog.Subject {
	now := time.Now().UTC()
	sub, err := repo.CreateSubject(context.Background(), catalog.Subject{
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return sub
}

func CreateWorkshop(t *testing.T, repo catalog.Repository, name string) catalog.Workshop {
	now := time.Now().UTC()
	ws, err := repo.CreateWorkshop(context.Background(), catalog.Workshop{
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateWorkshop() failed: %v", err)
	}
	return ws
}

func CreateSeminar(
	t *testing.T,
	repo seminar.Repository,
	name, slug, createdBy, locationID string,
	scheduledAt time.Time,
	isActive bool,
) seminar.Seminar {
	now := time.Now().UTC()
	sem := seminar.Seminar{
		Name:        name,
		Slug:        slug,
		ScheduledAt: scheduledAt.UTC(),
		CreatedBy:   createdBy,
		LocationID:  locationID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	sem.SetActive(isActive)
	sem, err := repo.CreateSeminar(context.Background(), sem)
	if err != nil {
		t.Fatalf("CreateSeminar() failed: %v", err)
	}
	return sem
}

func CreateRegistration(t *testing.T, repo registration.Repository, seminarID, userID string) registration.Registration {
	now := time.Now().UTC()
	reg, err := repo.CreateRegistration(context.Background(), registration.Registration{
		SeminarID: seminarID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateRegistration() failed: %v", err)
	}
	return reg
}
