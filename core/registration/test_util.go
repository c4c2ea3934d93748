package registration

import (
	"github.com/eic-cefet/seminarios-v2-sub001/core"
	"github.com/eic-cefet/seminarios-v2-sub001/core/presence"
	"github.com/eic-cefet/seminarios-v2-sub001/core/seminar"
)

// NewServiceMock returns a Service whose emails are sent synchronously.
func NewServiceMock(repo Repository, seminarRepo seminar.Repository, presenceSvc presence.Service, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:        repo,
		seminarRepo: seminarRepo,
		presenceSvc: presenceSvc,
		mailSvc:     mailSvc,
		conf:        conf,
		syncMail:    true,
	}
}
