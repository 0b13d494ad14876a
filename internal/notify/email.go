package notify

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/portfolio/internal/domain/contact"
)

// Email is one outgoing plain-text message.
type Email struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// Sender delivers an email.
type Sender interface {
	Send(ctx context.Context, e Email) error
}

// SMTPConfig configures SMTPSender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers mail through an SMTP relay with PLAIN auth.
type SMTPSender struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates an SMTP sender.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, send: smtp.SendMail}
}

// Send delivers e. smtp.SendMail has no context support, so ctx is only
// checked before dialing.
func (s *SMTPSender) Send(ctx context.Context, e Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	if err := s.send(addr, auth, s.cfg.From, []string{e.To}, buildMessage(s.cfg.From, e)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", e.To, err)
	}
	return nil
}

func buildMessage(from string, e Email) []byte {
	var b strings.Builder
	header := func(k, v string) {
		b.WriteString(k + ": " + stripNewlines(v) + "\r\n")
	}
	header("From", from)
	header("To", e.To)
	if e.ReplyTo != "" {
		header("Reply-To", e.ReplyTo)
	}
	header("Subject", e.Subject)
	header("Date", time.Now().UTC().Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(e.Body, "\n", "\r\n"))
	return []byte(b.String())
}

func stripNewlines(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// LogSender logs emails instead of sending them. Used when SMTP is disabled.
type LogSender struct {
	Logger *zap.Logger
}

// Send logs e.
func (l LogSender) Send(_ context.Context, e Email) error {
	l.Logger.Info("email not sent, SMTP disabled",
		zap.String("to", e.To),
		zap.String("subject", e.Subject))
	return nil
}

var (
	notificationTmpl = template.Must(template.New("notification").Parse(
		`You have received a new message through your portfolio contact form.

Name:    {{.Name}}
Email:   {{.Email}}
{{- if .Phone}}
Phone:   {{.Phone}}{{end}}
{{- if .Company}}
Company: {{.Company}}{{end}}
Subject: {{.Subject}}

{{.Message}}

Submitted at {{.DateSubmitted.Format "2006-01-02 15:04:05 MST"}} from {{or .IPAddress "unknown"}}
`))

	autoReplyTmpl = template.Must(template.New("autoreply").Parse(
		`Hi {{.Name}},

Thank you for your message. I have received your inquiry and will get back to
you as soon as possible, usually within 24 hours.

Your message summary:
Subject: {{.Subject}}
Message: {{.Excerpt}}

Best regards,
{{.Signature}}
`))
)

// ContactNotification builds the admin notification for m.
func ContactNotification(m contact.Message, adminEmail string) (Email, error) {
	var body bytes.Buffer
	if err := notificationTmpl.Execute(&body, m); err != nil {
		return Email{}, fmt.Errorf("render notification: %w", err)
	}
	return Email{
		To:      adminEmail,
		ReplyTo: m.Email,
		Subject: "New Contact Form Submission: " + m.Subject,
		Body:    body.String(),
	}, nil
}

// AutoReply builds the acknowledgement sent to the visitor.
func AutoReply(m contact.Message, signature string) (Email, error) {
	excerpt := m.Message
	if r := []rune(excerpt); len(r) > 200 {
		excerpt = string(r[:200]) + "..."
	}
	var body bytes.Buffer
	err := autoReplyTmpl.Execute(&body, struct {
		contact.Message
		Excerpt   string
		Signature string
	}{m, excerpt, signature})
	if err != nil {
		return Email{}, fmt.Errorf("render auto-reply: %w", err)
	}
	return Email{
		To:      m.Email,
		Subject: "Thank you for contacting me",
		Body:    body.String(),
	}, nil
}
