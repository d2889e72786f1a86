package notifier

import (
	"context"

	"github.com/mailgun/mailgun-go/v4"
)

type MailgunSender struct {
	mg   *mailgun.MailgunImpl
	from string
}

func NewMailgunSender(domain, key, from string) *MailgunSender {
	return &MailgunSender{mg: mailgun.NewMailgun(domain, key), from: from}
}

func (s *MailgunSender) Send(ctx context.Context, to, subject, body string) error {
	message := s.mg.NewMessage(s.from, subject, body, to)
	_, _, err := s.mg.Send(ctx, message)
	return err
}
