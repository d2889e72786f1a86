package notifier

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/AlibekovAA/gym-api/internal/common/config"
)

type SMTPSender struct {
	addr string
	host string
	auth smtp.Auth
	from string
}

// NewSMTPSender authenticates with PLAIN only when a username is configured.
func NewSMTPSender(cfg config.SMTPConfig, from string) *SMTPSender {
	s := &SMTPSender{
		addr: net.JoinHostPort(cfg.Host, cfg.Port),
		host: cfg.Host,
		from: from,
	}
	if cfg.Username != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return s
}

// Send does not honour ctx cancellation mid-transfer; net/smtp has no context API.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return fmt.Errorf("header values must not contain line breaks")
	}

	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body,
	)
	return smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg))
}
