// Package notify renders and delivers HTML notification email and publishes
// email events to the broker for asynchronous sending.
package notify

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strings"

	"github.com/ritualplanner/ritualplanner/internal/config"
	"github.com/ritualplanner/ritualplanner/internal/queue"
)

//go:embed templates/*.html
var templateFS embed.FS

// subjects maps email kinds to their subject lines.
var subjects = map[string]string{
	queue.EmailWelcome: "Welcome to RitualPlanner",
	queue.EmailOTP:     "Your RitualPlanner one-time code",
	queue.EmailInvite:  "You have been added as a co-worker on RitualPlanner",
	queue.EmailContact: "New contact-form message",
}

// Mailer renders kind-specific templates and sends them over SMTP. With no
// SMTP host configured it logs the rendered mail instead of sending, which
// keeps development environments working without a mail server.
type Mailer struct {
	host string
	port string
	user string
	pass string
	from string
	tmpl *template.Template
}

// NewMailer parses the embedded templates and captures SMTP settings.
func NewMailer(cfg config.Config) (*Mailer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &Mailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.SMTPFrom,
		tmpl: t,
	}, nil
}

// Render produces the subject and HTML body for an event.
func (m *Mailer) Render(ev queue.EmailRequestedEvent) (subject, body string, err error) {
	subject, ok := subjects[ev.Kind]
	if !ok {
		return "", "", fmt.Errorf("unknown email kind %q", ev.Kind)
	}
	var sb strings.Builder
	if err := m.tmpl.ExecuteTemplate(&sb, ev.Kind+".html", ev.Data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", ev.Kind, err)
	}
	return subject, sb.String(), nil
}

// SendEmail renders and delivers the mail for an event. Satisfies
// queue.EmailSender.
func (m *Mailer) SendEmail(ev queue.EmailRequestedEvent) error {
	subject, body, err := m.Render(ev)
	if err != nil {
		return err
	}
	if m.host == "" {
		log.Printf("mailer: smtp disabled, would send %q to %s", subject, ev.To)
		return nil
	}
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + ev.To,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	addr := m.host + ":" + m.port
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}
	return smtp.SendMail(addr, auth, m.from, []string{ev.To}, []byte(msg))
}
