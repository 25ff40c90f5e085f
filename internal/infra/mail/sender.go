package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/dsx-leads/internal/entity"
	"github.com/xavierca1/dsx-leads/internal/wizard"
)

//go:embed templates/*.html
var templatesFS embed.FS

var newLeadTmpl = template.Must(template.ParseFS(templatesFS, "templates/new_lead.html"))

type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// NewEmailSender avisa o time comercial (to) sobre cada lead concluído.
func NewEmailSender(host string, port int, user, password, from, to string) *EmailSender {
	return NewEmailSenderWithDialer(gomail.NewDialer(host, port, user, password), from, to)
}

func NewEmailSenderWithDialer(d Dialer, from, to string) *EmailSender {
	return &EmailSender{From: from, To: to, dialer: d}
}

func (s *EmailSender) SendNewLead(lead *entity.Lead) error {
	data := NewLeadEmailData{
		LeadID:   lead.ID,
		Name:     lead.Name,
		Email:    lead.Email,
		WhatsApp: wizard.Mask(lead.WhatsApp),
		Profile:  string(lead.ProfileCategory),
		Company:  lead.Company,
		Revenue:  string(lead.RevenueBracket),
	}

	var body bytes.Buffer
	if err := newLeadTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", fmt.Sprintf("Novo lead: %s (%s) 🚀", lead.Name, lead.ProfileCategory))
	if lead.Email != "" {
		m.SetHeader("Reply-To", lead.Email)
	}
	m.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	return nil
}
