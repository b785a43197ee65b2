package notifier

import (
	"context"
	"errors"
)

// Notifier delivers a plain-text message to a configured recipient.
type Notifier interface {
	Send(ctx context.Context, subject, body string) error
}

// Multi fans a message out to several channels.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, subject, body string) error {
	var errs []error
	for _, n := range m {
		if err := n.Send(ctx, subject, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Noop drops every message; used when no channel is configured.
type Noop struct{}

func (Noop) Send(context.Context, string, string) error { return nil }
