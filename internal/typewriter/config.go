// Package typewriter drives the hero's typing-text effect: it cycles through a
// fixed list of phrases, revealing and then deleting each one character at a
// time.
//
// The state machine (Machine) is pure and advances one tick per call; the
// Animator owns the timer loop and delivers frames to a host sink until the
// host stops it.
package typewriter

import (
	"errors"
	"fmt"
	"time"
)

// ErrNegativeDelay is returned by Config.Validate when any delay is below zero.
var ErrNegativeDelay = errors.New("typewriter: delay must not be negative")

// Config holds the phrase playlist and the animation timing.
type Config struct {
	Phrases []string

	TypeDelay   time.Duration // per character while typing
	DeleteDelay time.Duration // per character while deleting
	PauseFull   time.Duration // hold once the whole phrase is shown
	PauseEmpty  time.Duration // hold between phrases
	StartDelay  time.Duration // wait before the first tick
}

// DefaultConfig returns the timing used on the hero section.
func DefaultConfig(phrases []string) Config {
	return Config{
		Phrases:     phrases,
		TypeDelay:   80 * time.Millisecond,
		DeleteDelay: 40 * time.Millisecond,
		PauseFull:   1800 * time.Millisecond,
		PauseEmpty:  500 * time.Millisecond,
		StartDelay:  time.Second,
	}
}

// Validate reports whether all delays are usable.
func (c Config) Validate() error {
	delays := []struct {
		name string
		d    time.Duration
	}{
		{"type", c.TypeDelay},
		{"delete", c.DeleteDelay},
		{"pause-full", c.PauseFull},
		{"pause-empty", c.PauseEmpty},
		{"start", c.StartDelay},
	}
	for _, d := range delays {
		if d.d < 0 {
			return fmt.Errorf("%w: %s delay is %s", ErrNegativeDelay, d.name, d.d)
		}
	}
	return nil
}
