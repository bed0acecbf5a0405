// Package notify delivers contact form submissions to the site owner.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ErrNotConfigured means the notifier lacks the settings it needs.
var ErrNotConfigured = errors.New("notifier not configured")

// Message is what gets delivered; it mirrors the contact form.
type Message struct {
	Reference string
	Name      string
	Email     string
	Subject   string
	Body      string
}

type Notifier interface {
	Notify(ctx context.Context, m Message) error
}

// Simulated waits a fixed delay and reports success without contacting
// anything.
type Simulated struct {
	Delay time.Duration
}

func (s Simulated) Notify(ctx context.Context, _ Message) error {
	if s.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Retry describes how often and how patiently a delivery is retried.
type Retry struct {
	Attempts int           // total tries, at least 1
	Backoff  time.Duration // wait before the second try, doubled after each failure
}

// Do runs fn until it succeeds, the attempts run out, fn returns a permanent
// error or ctx ends.
func (r Retry) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval: r.Backoff,
		Multiplier:      2,
		MaxInterval:     backoff.DefaultMaxInterval,
	}

	calls := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		calls++
		err := fn(ctx)
		if errors.Is(err, ErrNotConfigured) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithMaxElapsedTime(0),
	)
	if err != nil && calls == attempts && ctx.Err() == nil && !errors.Is(err, ErrNotConfigured) {
		return fmt.Errorf("after %d attempts: %w", attempts, err)
	}
	return err
}
