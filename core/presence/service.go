package presence

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/eic-cefet/seminarios-v2-sub001/core"
	"github.com/eic-cefet/seminarios-v2-sub001/core/seminar"
	"github.com/eic-cefet/seminarios-v2-sub001/core/user"
)

var (
	// errors
	ErrNotFound      = errors.New("presence link not found")
	ErrAlreadyExists = errors.New("a presence link already exists for this seminar")
	ErrLinkInactive  = errors.New("presence link is not active")
	ErrLinkExpired   = errors.New("presence link has expired")
)

const (
	// links expire this long after the seminar's scheduled time
	validityDelta = 4 * time.Hour
	// activating a link always leaves at least this much validity,
	// so check-in works for seminars whose scheduled time already passed
	minValidityWindow = time.Hour

	qrSize = 256
)

var nowFunc = time.Now // mockable

type (
	Service interface {
		// GetForSeminar returns the seminar's link, or nil when none was
		// ever created; absence is a normal state.
		GetForSeminar(ctx context.Context, actor user.User, sem seminar.Seminar) (*PresenceLink, error)
		Create(ctx context.Context, actor user.User, sem seminar.Seminar) (PresenceLink, error)
		Toggle(ctx context.Context, actor user.User, sem seminar.Seminar) (PresenceLink, error)
		// ValidateScan is the public check-in path; no principal involved.
		ValidateScan(ctx context.Context, token string) (PresenceLink, error)
		// QRPNG renders the link's QR code as a PNG image.
		QRPNG(pl PresenceLink) ([]byte, error)
	}

	service struct {
		repo Repository
		conf *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, conf *core.Config) Service {
	return &service{repo: repo, conf: conf}
}

func (svc *service) GetForSeminar(ctx context.Context, actor user.User, sem seminar.Seminar) (*PresenceLink, error) {
	if !seminar.CanAccess(actor, sem, seminar.ActionView) {
		return nil, seminar.ErrAccessDenied
	}

	pl, err := svc.repo.GetPresenceLink(ctx, GetFilter{SeminarID: sem.ID})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	svc.decorate(&pl)
	return &pl, nil
}

func (svc *service) Create(ctx context.Context, actor user.User, sem seminar.Seminar) (PresenceLink, error) {
	if !seminar.CanAccess(actor, sem, seminar.ActionManagePresenceLink) {
		return PresenceLink{}, seminar.ErrAccessDenied
	}

	now := nowFunc().UTC()
	pl := PresenceLink{
		SeminarID: sem.ID,
		UUID:      uuid.New().String(),
		Active:    false,
		// nominal expiry only; the minimum-validity floor is applied when
		// the link is toggled active, not here
		ExpiresAt: sem.ScheduledAt.UTC().Add(validityDelta),
		CreatedAt: now,
		UpdatedAt: now,
	}
	pl, err := svc.repo.CreatePresenceLink(ctx, pl)
	if err != nil {
		return PresenceLink{}, err
	}
	svc.decorate(&pl)
	return pl, nil
}

func (svc *service) Toggle(ctx context.Context, actor user.User, sem seminar.Seminar) (PresenceLink, error) {
	if !seminar.CanAccess(actor, sem, seminar.ActionManagePresenceLink) {
		return PresenceLink{}, seminar.ErrAccessDenied
	}

	pl, err := svc.repo.GetPresenceLink(ctx, GetFilter{SeminarID: sem.ID})
	if err != nil {
		return PresenceLink{}, err
	}

	pl.Active = !pl.Active
	if pl.Active {
		// guarantee a minimum validity window for past seminars
		expiresAt := sem.ScheduledAt.UTC().Add(validityDelta)
		if floor := nowFunc().UTC().Add(minValidityWindow); expiresAt.Before(floor) {
			expiresAt = floor
		}
		pl.ExpiresAt = expiresAt
	}
	pl.UpdatedAt = nowFunc().UTC()

	pl, err = svc.repo.UpdatePresenceLink(ctx, pl)
	if err != nil {
		return PresenceLink{}, err
	}
	svc.decorate(&pl)
	return pl, nil
}

func (svc *service) ValidateScan(ctx context.Context, token string) (PresenceLink, error) {
	pl, err := svc.repo.GetPresenceLink(ctx, GetFilter{UUID: token})
	if err != nil {
		return PresenceLink{}, err
	}

	// inactive and expired are distinct outcomes: the client tells users
	// "not turned on yet" vs "expired"
	if !pl.Active {
		return PresenceLink{}, ErrLinkInactive
	}
	if pl.Expired(nowFunc()) {
		return PresenceLink{}, ErrLinkExpired
	}

	svc.decorate(&pl)
	return pl, nil
}

func (svc *service) QRPNG(pl PresenceLink) ([]byte, error) {
	png, err := qrcode.Encode(svc.scanURL(pl), qrcode.Medium, qrSize)
	return png, errors.Wrap(err, "encoding QR code")
}

func (svc *service) scanURL(pl PresenceLink) string {
	return fmt.Sprintf("%s/presence/%s", svc.conf.FrontendBaseURL, pl.UUID)
}

func (svc *service) decorate(pl *PresenceLink) {
	now := nowFunc()
	pl.IsExpired = pl.Expired(now)
	pl.IsValid = pl.Valid(now)
	pl.URL = svc.scanURL(*pl)
	pl.PNGURL = fmt.Sprintf("%s/api/presence/%s/qr.png", svc.conf.FrontendBaseURL, pl.UUID)
	if png, err := svc.QRPNG(*pl); err == nil {
		pl.QRCode = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	}
}
