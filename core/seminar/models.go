package seminar

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/eic-cefet/seminarios-v2-sub001/core"
)

type Seminar struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	ScheduledAt time.Time  `json:"scheduled_at"` // UTC
	Room        string     `json:"room,omitempty"` // room number or meeting link
	IsActive    *bool      `json:"is_active"`
	CreatedBy   string     `json:"created_by"`
	LocationID  string     `json:"location_id"`
	SubjectID   *string    `json:"subject_id,omitempty"`
	WorkshopID  *string    `json:"workshop_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"` // UTC
	UpdatedAt   time.Time  `json:"updated_at"` // UTC
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

func (s *Seminar) SetActive(active bool) {
	s.IsActive = &active
}

func (s *Seminar) Active() bool {
	return s.IsActive != nil && *s.IsActive
}

func (s *Seminar) IsDeleted() bool {
	return s.DeletedAt != nil
}

// Open reports whether students may still register.
func (s *Seminar) Open() bool {
	return s.Active() && !s.IsDeleted()
}

// NewSeminar contains information needed to create a new Seminar.
type NewSeminar struct {
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Room        string    `json:"room"`
	LocationID  string    `json:"location_id" validate:"required,uuid4"`
	SubjectID   *string   `json:"subject_id" validate:"omitempty,uuid4"`
	WorkshopID  *string   `json:"workshop_id" validate:"omitempty,uuid4"`
}

func (ns *NewSeminar) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Description = core.CleanString(ns.Description)
	ns.Room = core.CleanString(ns.Room)
	return validate.Struct(ns)
}

// UpdateSeminar defines what information may be provided to modify an
// existing Seminar. Zero values leave the original field untouched.
type UpdateSeminar struct {
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Room        *string   `json:"room"`
	IsActive    *bool     `json:"is_active"`
	LocationID  string    `json:"location_id" validate:"omitempty,uuid4"`
	SubjectID   *string   `json:"subject_id" validate:"omitempty,uuid4"`
	WorkshopID  *string   `json:"workshop_id" validate:"omitempty,uuid4"`
}

func (us *UpdateSeminar) Validate(validate *validator.Validate, orig Seminar) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if us.ScheduledAt.IsZero() {
		us.ScheduledAt = orig.ScheduledAt
	}
	if us.LocationID == "" {
		us.LocationID = orig.LocationID
	}
	return validate.Struct(us)
}

type QueryFilter struct {
	Search         string    `query:"search"`
	LocationID     string    `query:"location"`
	SubjectID      string    `query:"subject"`
	WorkshopID     string    `query:"workshop"`
	IsActive       *bool     `query:"is_active"`
	ScheduledFrom  time.Time `query:"scheduled_from"`
	ScheduledTo    time.Time `query:"scheduled_to"`
	IncludeDeleted bool      `query:"include_deleted"`

	// CreatedBy scopes results to a creator; set by the service, not bindable.
	CreatedBy string `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// GetFilter selects a single Seminar; the first non-empty field wins.
// Soft-deleted rows are excluded unless IncludeDeleted is set.
type GetFilter struct {
	ID             string
	Slug           string
	IncludeDeleted bool
}

type Repository interface {
	CheckSlugUniqueness(ctx context.Context, slug string, excludedSeminars ...Seminar) error
	CreateSeminar(ctx context.Context, sem Seminar) (Seminar, error)
	GetSeminar(ctx context.Context, filter GetFilter) (Seminar, error)
	// QuerySeminars applies AND on available QueryFilter fields.
	// QueryFilter.Search does a case-insensitive match on Name or Description.
	QuerySeminars(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Seminar, error)
	UpdateSeminar(ctx context.Context, sem Seminar) (Seminar, error)
	// SetSeminarDeleted stamps (or clears, when nil) the soft-delete marker.
	SetSeminarDeleted(ctx context.Context, id string, deletedAt *time.Time) (Seminar, error)
	// ReassignSubject re-points every seminar referencing fromSubjectID to
	// toSubjectID and returns the number of seminars moved.
	ReassignSubject(ctx context.Context, fromSubjectID, toSubjectID string) (int, error)
}
