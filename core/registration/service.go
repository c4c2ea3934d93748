package registration

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/eic-cefet/seminarios-v2-sub001/core"
	"github.com/eic-cefet/seminarios-v2-sub001/core/presence"
	"github.com/eic-cefet/seminarios-v2-sub001/core/seminar"
	"github.com/eic-cefet/seminarios-v2-sub001/core/user"
)

var (
	// errors
	ErrNotFound            = errors.New("registration not found")
	ErrAlreadyRegistered   = errors.New("already registered for this seminar")
	ErrNotRegistered       = errors.New("not registered for this seminar")
	ErrSeminarClosed       = errors.New("this seminar is not open for registration")
	ErrCertificateNotFound = errors.New("certificate not found")
)

type (
	Service interface {
		Register(ctx context.Context, usr user.User, seminarID string) (Registration, error)
		Cancel(ctx context.Context, usr user.User, seminarID string) error
		// MarkPresent validates the scanned presence token and stamps
		// attendance; re-scans are idempotent. A certificate is issued and
		// mailed on first attendance.
		MarkPresent(ctx context.Context, usr user.User, token string) (Registration, error)
		QueryBySeminar(ctx context.Context, actor user.User, sem seminar.Seminar) ([]Registration, error)
		QueryByUser(ctx context.Context, usr user.User) ([]Registration, error)
		CertificateBySerial(ctx context.Context, serial string) (Certificate, error)
	}

	service struct {
		repo        Repository
		seminarRepo seminar.Repository
		presenceSvc presence.Service
		mailSvc     core.EmailService
		conf        *core.Config
		syncMail    bool // tests flip this to send emails inline
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, seminarRepo seminar.Repository, presenceSvc presence.Service, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:        repo,
		seminarRepo: seminarRepo,
		presenceSvc: presenceSvc,
		mailSvc:     mailSvc,
		conf:        conf,
	}
}

func (svc *service) Register(ctx context.Context, usr user.User, seminarID string) (Registration, error) {
	sem, err := svc.seminarRepo.GetSeminar(ctx, seminar.GetFilter{ID: seminarID})
	if err != nil {
		return Registration{}, err
	}
	if !sem.Open() {
		return Registration{}, ErrSeminarClosed
	}

	now := time.Now().UTC()
	reg, err := svc.repo.CreateRegistration(ctx, Registration{
		SeminarID: sem.ID,
		UserID:    usr.ID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Registration{}, err
	}

	svc.dispatch(func() { svc.sendConfirmationMail(usr, sem) })
	return reg, nil
}

func (svc *service) dispatch(send func()) {
	if svc.syncMail {
		send()
		return
	}
	go send()
}

func (svc *service) Cancel(ctx context.Context, usr user.User, seminarID string) error {
	reg, err := svc.repo.GetRegistration(ctx, GetFilter{SeminarID: seminarID, UserID: usr.ID})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return ErrNotRegistered
		}
		return err
	}
	return svc.repo.DeleteRegistration(ctx, reg.ID)
}

func (svc *service) MarkPresent(ctx context.Context, usr user.User, token string) (Registration, error) {
	pl, err := svc.presenceSvc.ValidateScan(ctx, token)
	if err != nil {
		return Registration{}, err
	}

	reg, err := svc.repo.GetRegistration(ctx, GetFilter{SeminarID: pl.SeminarID, UserID: usr.ID})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Registration{}, ErrNotRegistered
		}
		return Registration{}, err
	}
	if reg.Attended() {
		// re-scanning is fine; nothing changes
		return reg, nil
	}

	now := time.Now().UTC()
	reg.AttendedAt = &now
	reg.UpdatedAt = now
	if reg, err = svc.repo.UpdateRegistration(ctx, reg); err != nil {
		return Registration{}, err
	}

	cert, err := svc.issueCertificate(ctx, reg)
	if err != nil {
		return Registration{}, errors.Wrap(err, "issuing certificate")
	}

	sem, err := svc.seminarRepo.GetSeminar(ctx, seminar.GetFilter{ID: reg.SeminarID, IncludeDeleted: true})
	if err != nil {
		return Registration{}, err
	}
	svc.dispatch(func() { svc.sendCertificateMail(usr, sem, cert) })

	return reg, nil
}

func (svc *service) QueryBySeminar(ctx context.Context, actor user.User, sem seminar.Seminar) ([]Registration, error) {
	if !seminar.CanAccess(actor, sem, seminar.ActionView) {
		return nil, seminar.ErrAccessDenied
	}
	return svc.repo.QueryRegistrations(ctx, &QueryFilter{SeminarID: sem.ID})
}

func (svc *service) QueryByUser(ctx context.Context, usr user.User) ([]Registration, error) {
	return svc.repo.QueryRegistrations(ctx, &QueryFilter{UserID: usr.ID})
}

func (svc *service) CertificateBySerial(ctx context.Context, serial string) (Certificate, error) {
	return svc.repo.GetCertificate(ctx, CertificateGetFilter{Serial: strings.ToUpper(core.CleanString(serial))})
}

func (svc *service) issueCertificate(ctx context.Context, reg Registration) (Certificate, error) {
	return svc.repo.CreateCertificate(ctx, Certificate{
		RegistrationID: reg.ID,
		Serial:         newSerial(),
		IssuedAt:       time.Now().UTC(),
	})
}

// newSerial builds a short human-readable certificate serial.
func newSerial() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("CERT-%s-%s", strings.ToUpper(raw[:4]), strings.ToUpper(raw[4:12]))
}

func (svc *service) sendConfirmationMail(usr user.User, sem seminar.Seminar) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Registration confirmed: " + sem.Name,
		TemplateName: "registration-confirmation",
		TemplateData: struct {
			Name        string
			SeminarName string
			ScheduledAt string
			Room        string
		}{usr.Name, sem.Name, sem.ScheduledAt.Format(time.RFC1123), sem.Room},
	})
}

func (svc *service) sendCertificateMail(usr user.User, sem seminar.Seminar, cert Certificate) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Your certificate: " + sem.Name,
		TemplateName: "certificate",
		TemplateData: struct {
			Name        string
			SeminarName string
			Serial      string
		}{usr.Name, sem.Name, cert.Serial},
	})
}
