package notify

import "context"

// Notifier delivers a human-facing alert about a health run.
type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Multi fans a notification out to several channels; the first error wins
// but every notifier is attempted.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var firstErr error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, title, text); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
