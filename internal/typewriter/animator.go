package typewriter

import (
	"context"
	"sync"
	"time"
)

// Sink receives every frame, in order, from the animator's goroutine.
// A sink must not call Stop on the animator that feeds it; it should return
// promptly or watch its host's context instead.
type Sink func(Frame)

// Animator runs a Machine on a timer and pushes each frame to a Sink until it
// is stopped. Create one per host view.
type Animator struct {
	cfg  Config
	sink Sink

	mu      sync.Mutex
	machine *Machine
	frame   Frame
	cancel  context.CancelFunc
	started bool
	stopped bool
	done    chan struct{}
	once    sync.Once
}

// New returns an idle animator. A nil sink discards frames; the latest frame
// stays available through Frame.
func New(cfg Config, sink Sink) *Animator {
	if sink == nil {
		sink = func(Frame) {}
	}
	return &Animator{
		cfg:     cfg,
		sink:    sink,
		machine: NewMachine(cfg.Phrases),
		done:    make(chan struct{}),
	}
}

// Start launches the loop in its own goroutine. Calling Start twice, or after
// Stop, does nothing.
func (a *Animator) Start(ctx context.Context) {
	ctx, ok := a.begin(ctx)
	if !ok {
		return
	}
	go a.loop(ctx)
}

// Run is the blocking form of Start: it returns once the loop has ended,
// either because ctx was cancelled or Stop was called.
func (a *Animator) Run(ctx context.Context) {
	ctx, ok := a.begin(ctx)
	if !ok {
		<-a.done
		return
	}
	a.loop(ctx)
}

func (a *Animator) begin(ctx context.Context) (context.Context, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started || a.stopped {
		return nil, false
	}
	a.started = true
	ctx, a.cancel = context.WithCancel(ctx)
	return ctx, true
}

// Stop cancels the loop and waits for it to exit. When Stop returns the sink
// will not be called again. Stop is idempotent and safe to call before Start.
func (a *Animator) Stop() {
	a.mu.Lock()
	a.stopped = true
	cancel := a.cancel
	started := a.started
	a.mu.Unlock()

	if !started {
		a.finish()
		return
	}
	cancel()
	<-a.done
}

// Done is closed once the animator has stopped for good.
func (a *Animator) Done() <-chan struct{} { return a.done }

// Frame returns the most recently delivered frame.
func (a *Animator) Frame() Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frame
}

func (a *Animator) loop(ctx context.Context) {
	defer a.finish()

	// Nothing to type: stay idle until the host goes away.
	if a.machine.Len() == 0 {
		<-ctx.Done()
		return
	}

	timer := time.NewTimer(a.cfg.StartDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if ctx.Err() != nil {
			return
		}

		a.mu.Lock()
		f, d := a.machine.Next(a.cfg)
		a.frame = f
		a.mu.Unlock()

		a.sink(f)
		timer.Reset(d)
	}
}

func (a *Animator) finish() {
	a.once.Do(func() {
		a.mu.Lock()
		a.machine.Cancel()
		a.frame.Phase = Cancelled
		a.mu.Unlock()
		close(a.done)
	})
}
