package registration

import (
	"context"
	"time"
)

// Registration ties a student to a seminar; AttendedAt is stamped when
// their scan of the seminar's presence link validates.
type Registration struct {
	ID         string     `json:"id"`
	SeminarID  string     `json:"seminar_id"`
	UserID     string     `json:"user_id"`
	AttendedAt *time.Time `json:"attended_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"` // UTC
	UpdatedAt  time.Time  `json:"updated_at"` // UTC
}

func (r *Registration) Attended() bool {
	return r.AttendedAt != nil
}

// Certificate is issued once per attended registration.
type Certificate struct {
	ID             string    `json:"id"`
	RegistrationID string    `json:"registration_id"`
	Serial         string    `json:"serial"`
	IssuedAt       time.Time `json:"issued_at"` // UTC
}

type QueryFilter struct {
	SeminarID    string
	UserID       string
	AttendedOnly bool
}

// GetFilter selects a single Registration: by ID, or by the
// (SeminarID, UserID) pair.
type GetFilter struct {
	ID        string
	SeminarID string
	UserID    string
}

// CertificateGetFilter selects a single Certificate; the first non-empty
// field wins.
type CertificateGetFilter struct {
	RegistrationID string
	Serial         string
}

type Repository interface {
	// CreateRegistration fails with ErrAlreadyRegistered when the
	// (seminar, user) pair already exists.
	CreateRegistration(ctx context.Context, reg Registration) (Registration, error)
	GetRegistration(ctx context.Context, filter GetFilter) (Registration, error)
	QueryRegistrations(ctx context.Context, filter *QueryFilter) ([]Registration, error)
	UpdateRegistration(ctx context.Context, reg Registration) (Registration, error)
	DeleteRegistration(ctx context.Context, id string) error

	CreateCertificate(ctx context.Context, cert Certificate) (Certificate, error)
	GetCertificate(ctx context.Context, filter CertificateGetFilter) (Certificate, error)
}
