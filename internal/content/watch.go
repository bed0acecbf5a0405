package content

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Source hands out the current portfolio. Handlers read it on every request,
// so a reload swaps the pointer and never mutates a published Portfolio.
type Source struct {
	path string
	cur  atomic.Pointer[Portfolio]
}

// NewSource loads path (or the built-in content) and returns a Source for it.
func NewSource(path string) (*Source, error) {
	p, err := Load(path)
	if err != nil {
		return nil, err
	}
	s := &Source{path: path}
	s.cur.Store(p)
	return s, nil
}

// Static wraps an already loaded portfolio.
func Static(p *Portfolio) *Source {
	s := &Source{}
	s.cur.Store(p)
	return s
}

// Get returns the live portfolio.
func (s *Source) Get() *Portfolio { return s.cur.Load() }

// Reload re-reads the file. On error the previous content stays live.
func (s *Source) Reload() error {
	p, err := Load(s.path)
	if err != nil {
		return err
	}
	s.cur.Store(p)
	return nil
}

// Watch reloads the content file whenever it changes until ctx is done.
// Editors often replace files instead of writing them, so the parent
// directory is watched and events are filtered by name. Bursts of events are
// coalesced with a short debounce.
func (s *Source) Watch(ctx context.Context, log *slog.Logger) error {
	if s.path == "" {
		return fmt.Errorf("watch content: no file configured")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch content: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(s.path)
	if err != nil {
		return fmt.Errorf("watch content: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch content: %w", err)
	}
	log.Info("content.watch", "path", abs)

	const debounce = 100 * time.Millisecond
	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			if err := s.Reload(); err != nil {
				log.Warn("content.reload_failed", "path", abs, "error", err)
				continue
			}
			log.Info("content.reloaded", "path", abs)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("content.watch_error", "error", err)
		}
	}
}
