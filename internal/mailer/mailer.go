// Package mailer delivers notification emails over SMTP.
package mailer

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

const sendTimeout = 30 * time.Second

// Message is one plain-text email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer, or a log-only mailer when no host is configured.
func New(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		logger.Info("SMTP_HOST not provided; emails will be logged only")
		return &logMailer{logger: logger}
	}
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	dialer.SSL = cfg.SMTPSSL
	return &smtpMailer{from: cfg.From, dialer: dialer}
}

type smtpMailer struct {
	from   string
	dialer *gomail.Dialer
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	gm, err := buildMessage(m.from, msg)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(gm)
	}()

	wait := sendTimeout
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < wait {
			wait = d
		}
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return context.DeadlineExceeded
	}
}

type logMailer struct {
	logger *zap.Logger
}

func (m *logMailer) Send(_ context.Context, msg Message) error {
	if _, err := buildMessage("log@localhost", msg); err != nil {
		return err
	}
	m.logger.Info("email",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

func buildMessage(from string, msg Message) (*gomail.Message, error) {
	to := make([]string, 0, len(msg.To))
	for _, addr := range msg.To {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	if len(to) == 0 {
		return nil, errors.New("mailer: no recipients")
	}
	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		return nil, errors.New("mailer: subject is required")
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", strings.TrimSpace(from))
	gm.SetHeader("To", to...)
	gm.SetHeader("Subject", subject)
	gm.SetBody("text/plain", msg.Body)
	return gm, nil
}
