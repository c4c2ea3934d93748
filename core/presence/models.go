package presence

import (
	"context"
	"time"
)

// PresenceLink is the QR-code check-in token of a single seminar. There is
// at most one per seminar; it starts inactive and only validates scans while
// active and unexpired.
type PresenceLink struct {
	ID        string    `json:"id"`
	SeminarID string    `json:"-"`
	UUID      string    `json:"uuid"`
	Active    bool      `json:"active"`
	ExpiresAt time.Time `json:"expires_at"` // UTC
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// derived, filled by the service
	IsExpired bool   `json:"is_expired"`
	IsValid   bool   `json:"is_valid"`
	URL       string `json:"url"`
	PNGURL    string `json:"png_url"`
	QRCode    string `json:"qr_code"`
}

func (pl *PresenceLink) Expired(now time.Time) bool {
	return !pl.ExpiresAt.After(now)
}

// Valid reports whether a scan of this link should be accepted.
func (pl *PresenceLink) Valid(now time.Time) bool {
	return pl.Active && pl.ExpiresAt.After(now)
}

// GetFilter selects a single PresenceLink; the first non-empty field wins.
type GetFilter struct {
	ID        string
	SeminarID string
	UUID      string
}

type Repository interface {
	// CreatePresenceLink fails with ErrAlreadyExists when the seminar
	// already has a link; the seminar reference carries a uniqueness
	// constraint so concurrent creators lose cleanly.
	CreatePresenceLink(ctx context.Context, pl PresenceLink) (PresenceLink, error)
	GetPresenceLink(ctx context.Context, filter GetFilter) (PresenceLink, error)
	UpdatePresenceLink(ctx context.Context, pl PresenceLink) (PresenceLink, error)
}
