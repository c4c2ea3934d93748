package catalog

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/eic-cefet/seminarios-v2-sub001/core"
)

// The catalog holds the reference data seminars point at: where they happen
// (locations), what they are about (subjects) and the workshop series they
// may belong to.

type Location struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Capacity  int       `json:"capacity,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type Subject struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type Workshop struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type NewLocation struct {
	Name     string `json:"name" validate:"required"`
	Address  string `json:"address"`
	Capacity int    `json:"capacity" validate:"omitempty,gte=0"`
}

func (nl *NewLocation) Validate(validate *validator.Validate) error {
	nl.Name = core.CleanString(nl.Name)
	nl.Address = core.CleanString(nl.Address)
	return validate.Struct(nl)
}

type NewSubject struct {
	Name string `json:"name" validate:"required"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

type NewWorkshop struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (nw *NewWorkshop) Validate(validate *validator.Validate) error {
	nw.Name = core.CleanString(nw.Name)
	nw.Description = core.CleanString(nw.Description)
	return validate.Struct(nw)
}

// MergeSubjects re-points seminars from a duplicate subject to a canonical
// one, then removes the duplicate.
type MergeSubjects struct {
	IntoID string `json:"into_id" validate:"required,uuid4"`
}

func (ms *MergeSubjects) Validate(validate *validator.Validate) error {
	return validate.Struct(ms)
}

type Repository interface {
	CreateLocation(ctx context.Context, loc Location) (Location, error)
	QueryLocations(ctx context.Context, ordering []core.DBOrdering) ([]Location, error)
	GetLocation(ctx context.Context, id string) (Location, error)
	UpdateLocation(ctx context.Context, loc Location) (Location, error)
	DeleteLocation(ctx context.Context, id string) error

	CreateSubject(ctx context.Context, sub Subject) (Subject, error)
	QuerySubjects(ctx context.Context, ordering []core.DBOrdering) ([]Subject, error)
	GetSubject(ctx context.Context, id string) (Subject, error)
	UpdateSubject(ctx context.Context, sub Subject) (Subject, error)
	DeleteSubject(ctx context.Context, id string) error

	CreateWorkshop(ctx context.Context, ws Workshop) (Workshop, error)
	QueryWorkshops(ctx context.Context, ordering []core.DBOrdering) ([]Workshop, error)
	GetWorkshop(ctx context.Context, id string) (Workshop, error)
	UpdateWorkshop(ctx context.Context, ws Workshop) (Workshop, error)
	DeleteWorkshop(ctx context.Context, id string) error
}
