package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/AlibekovAA/gym-api/internal/common/config"
	"github.com/AlibekovAA/gym-api/internal/common/constants"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
	"github.com/AlibekovAA/gym-api/internal/observability/metrics"
)

// Notifier delivers a plain-text email. Callers treat failures as non-fatal.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New selects the sender for cfg.Provider and wraps it with delivery metrics,
// logging and a per-send timeout.
func New(cfg config.EmailConfig, log *logger.Logger) (Notifier, error) {
	var (
		sender Notifier
		name   = cfg.Provider
	)

	switch cfg.Provider {
	case "", "log":
		name = "log"
		sender = NewLogSender(log)
	case "sendgrid":
		sender = NewSendGridSender(cfg.SendGrid.Key, cfg.From)
	case "mailgun":
		sender = NewMailgunSender(cfg.Mailgun.Domain, cfg.Mailgun.Key, cfg.From)
	case "smtp":
		sender = NewSMTPSender(cfg.SMTP, cfg.From)
	default:
		return nil, fmt.Errorf("unsupported email provider %q", cfg.Provider)
	}

	return &instrumented{
		provider: name,
		next:     sender,
		timeout:  constants.EmailSendTimeout,
		log:      log,
	}, nil
}

type instrumented struct {
	provider string
	next     Notifier
	timeout  time.Duration
	log      *logger.Logger
}

func (n *instrumented) Send(ctx context.Context, to, subject, body string) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	start := time.Now()
	err := n.next.Send(ctx, to, subject, body)
	metrics.NotifierDeliveryDurationSeconds.WithLabelValues(n.provider).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.NotifierDeliveries.WithLabelValues(n.provider, "failure").Inc()
		n.log.WithFields(ctx, logger.Fields{
			"provider": n.provider,
			"to":       to,
			"action":   "email_send_failed",
		}).Warnf("email delivery failed: %v", err)
		return fmt.Errorf("%s: %w", n.provider, err)
	}

	metrics.NotifierDeliveries.WithLabelValues(n.provider, "success").Inc()
	n.log.WithFields(ctx, logger.Fields{
		"provider": n.provider,
		"to":       to,
		"action":   "email_sent",
	}).Debug("email delivered")
	return nil
}

// LogSender writes the message to the log instead of delivering it. It is the
// default for local runs.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.log.WithFields(ctx, logger.Fields{
		"to":      to,
		"subject": subject,
		"action":  "email_logged",
	}).Info(body)
	return nil
}
