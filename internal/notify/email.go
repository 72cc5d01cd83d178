package notify

import (
	"context"
	"fmt"
	"net/smtp"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// EmailSink mails each event to the configured operations address.
type EmailSink struct {
	cfg SMTPConfig
}

func NewEmailSink(cfg SMTPConfig) *EmailSink {
	return &EmailSink{cfg: cfg}
}

func (s *EmailSink) Publish(ctx context.Context, event Event) error {
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	subject := fmt.Sprintf("[partner-crm] %s", event.Type)
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.cfg.To, subject, event.Message))

	return smtp.SendMail(addr, auth, s.cfg.From, []string{s.cfg.To}, msg)
}
