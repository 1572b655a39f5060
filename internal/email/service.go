package email

import (
	"context"
	"errors"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/clinic-scheduler/config"
)

var ErrDisabled = errors.New("email delivery is disabled")

type Service interface {
	Send(ctx context.Context, to string, subject string, body string) error
}

// Dialer is the part of gomail.Dialer the sender needs.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	dialer Dialer
	from   string
}

// NewService returns an SMTP sender, or one that refuses every message when
// SMTP is disabled.
func NewService(cfg config.SMTPConfig) Service {
	if !cfg.Enabled {
		return disabled{}
	}
	return NewSMTPService(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From)
}

func NewSMTPService(dialer Dialer, from string) Service {
	return &smtpService{dialer: dialer, from: from}
}

func (s *smtpService) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.dialer.DialAndSend(newMessage(s.from, to, subject, body))
}

func newMessage(from, to, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}

type disabled struct{}

func (disabled) Send(context.Context, string, string, string) error {
	return ErrDisabled
}
