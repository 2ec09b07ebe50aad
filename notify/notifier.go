// Package notify delivers the confirmation sent when a team's payment is approved.
package notify

import (
	"context"
	"errors"

	"event-registration/models"
)

type Notifier interface {
	NotifyApproval(ctx context.Context, a models.Approval) error
	Channel() string
}

// Multi sends through every notifier and joins their failures.
type Multi []Notifier

func (m Multi) NotifyApproval(ctx context.Context, a models.Approval) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyApproval(ctx, a); err != nil {
			errs = append(errs, &ChannelError{Channel: n.Channel(), Err: err})
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Channel() string { return "multi" }

type ChannelError struct {
	Channel string
	Err     error
}

func (e *ChannelError) Error() string { return e.Channel + ": " + e.Err.Error() }

func (e *ChannelError) Unwrap() error { return e.Err }

// Nop is used when no delivery channel is configured.
type Nop struct{}

func (Nop) NotifyApproval(context.Context, models.Approval) error { return nil }

func (Nop) Channel() string { return "none" }
