package notifier

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailNotifier sends plain-text mail through an authenticated SMTP session.
type EmailNotifier struct {
	dialer *gomail.Dialer
	From   string
	To     string
}

// NewEmailNotifier creates a notifier that logs in as user and mails to.
func NewEmailNotifier(host string, port int, user, password, to string) *EmailNotifier {
	return &EmailNotifier{
		dialer: gomail.NewDialer(host, port, user, password),
		From:   user,
		To:     to,
	}
}

func (e *EmailNotifier) message(subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", e.From)
	m.SetHeader("To", e.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}

// Send dials, authenticates and delivers one message. The SMTP client has no
// context support, so cancellation abandons the send rather than interrupting it.
func (e *EmailNotifier) Send(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := e.message(subject, body)

	done := make(chan error, 1)
	go func() { done <- e.dialer.DialAndSend(m) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send email to %s: %w", e.To, err)
		}
		return nil
	}
}
