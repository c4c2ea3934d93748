package core

import (
	"bytes"
	"embed"
	htmltmpl "html/template"
	"io/fs"
	"net/mail"
	"path/filepath"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

//go:embed templates/email
var emailTemplatesFS embed.FS

var (
	textTemplates *texttmpl.Template
	htmlTemplates *htmltmpl.Template
	tmplInit      sync.Once
)

type (
	Attachment struct {
		Content     *bytes.Buffer
		ContentType string
		Filename    string
	}

	EmailMessage struct {
		To          []mail.Address
		Cc          []mail.Address
		Bcc         []mail.Address
		Subject     string
		BodyStr     string // simple text/plain, non-templated content
		Attachments []Attachment

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	// ContextData is the root object available to every email template.
	ContextData struct {
		AppName         string
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// ParseEmailTemplates parses all embedded email templates once.
func ParseEmailTemplates(logger Logger) {
	tmplInit.Do(func() {
		var err error
		if textTemplates, err = texttmpl.ParseFS(emailTemplatesFS, "templates/email/*.txt"); err != nil {
			logger.Fatal("parsing text email templates", err)
		}
		if htmlTemplates, err = htmltmpl.ParseFS(emailTemplatesFS, "templates/email/*.html"); err != nil {
			logger.Fatal("parsing HTML email templates", err)
		}
	})
}

// EmailTemplateNames lists the embedded template basenames; admin sanity checks use it.
func EmailTemplateNames() []string {
	var names []string
	_ = fs.WalkDir(emailTemplatesFS, "templates/email", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		name := filepath.Base(path)
		names = append(names, strings.TrimSuffix(name, filepath.Ext(name)))
		return nil
	})
	return names
}

func (m *EmailMessage) contextData(conf *Config) ContextData {
	return ContextData{
		AppName:         conf.AppName,
		FrontendBaseURL: conf.FrontendBaseURL,
		Data:            m.TemplateData,
	}
}

// Render resolves TextContent and HTMLContent from either BodyStr or the
// named pair of templates.
func (m *EmailMessage) Render(conf *Config) error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	}
	if m.TemplateName == "" {
		return nil
	}

	data := m.contextData(conf)

	var txt bytes.Buffer
	if tmpl := textTemplates.Lookup(m.TemplateName + ".txt"); tmpl != nil {
		if err := tmpl.Execute(&txt, data); err != nil {
			return errors.Wrapf(err, "rendering %s.txt", m.TemplateName)
		}
		m.TextContent = txt.String()
	}

	var html bytes.Buffer
	if tmpl := htmlTemplates.Lookup(m.TemplateName + ".html"); tmpl != nil {
		if err := tmpl.Execute(&html, data); err != nil {
			return errors.Wrapf(err, "rendering %s.html", m.TemplateName)
		}
		m.HTMLContent = html.String()
	}

	return nil
}

func (m *EmailMessage) HasRecipients() bool {
	return len(m.To) > 0 || len(m.Cc) > 0 || len(m.Bcc) > 0
}

func (m *EmailMessage) HasContent() bool {
	return m.TextContent != "" || m.HTMLContent != ""
}

func (m *EmailMessage) HasAttachments() bool {
	return len(m.Attachments) > 0
}
