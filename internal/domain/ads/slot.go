package ads

import (
	"context"
	"sync"
	"time"

	"github.com/optica/admin/internal/domain/shared"
)

// LoadState is the load state of a slot
type LoadState int

const (
	StateIdle LoadState = iota
	StateLoading
	StateLoaded
	StateError
)

func (s LoadState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// LoadWait is the shared outcome of one load request. Every caller that asks
// for a load while it is in flight receives the same LoadWait.
type LoadWait struct {
	done chan struct{}
	err  error
}

func newLoadWait() *LoadWait {
	return &LoadWait{done: make(chan struct{})}
}

func resolvedWait(err error) *LoadWait {
	w := newLoadWait()
	w.resolve(err)
	return w
}

// resolve must be called at most once, with the slot lock held
func (w *LoadWait) resolve(err error) {
	w.err = err
	close(w.done)
}

// Done is closed once the load has succeeded, failed or timed out
func (w *LoadWait) Done() <-chan struct{} {
	return w.done
}

// Wait blocks until the load resolves or ctx is done
func (w *LoadWait) Wait(ctx context.Context) error {
	select {
	case <-w.done:
		return w.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Slot is the load state machine of one ad instance:
//
//	Idle/Error --BeginLoad--> Loading --Loaded--> Loaded --Consume--> Idle
//	                          Loading --Failed--> Error
//	                          Loading --timeout-> Idle
//
// A slot never terminates; it cycles for the life of the process.
type Slot struct {
	kind        Kind
	loadTimeout time.Duration

	mu      sync.Mutex
	state   LoadState
	pending *LoadWait
	timer   *time.Timer
	lastErr error
}

// NewSlot creates an idle slot. Pending loads are abandoned with
// ErrAdLoadTimeout after loadTimeout.
func NewSlot(kind Kind, loadTimeout time.Duration) *Slot {
	return &Slot{
		kind:        kind,
		loadTimeout: loadTimeout,
	}
}

// Kind returns the slot kind
func (s *Slot) Kind() Kind {
	return s.kind
}

// State returns the current load state
func (s *Slot) State() LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsLoaded reports whether an ad is ready to show
func (s *Slot) IsLoaded() bool {
	return s.State() == StateLoaded
}

// LastError returns the error of the most recent failed load, if any
func (s *Slot) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// BeginLoad returns the wait for the current load. issue is true only for the
// caller that moved the slot into Loading; that caller must send the load
// command to the SDK. A loaded slot returns an already-resolved wait.
func (s *Slot) BeginLoad() (w *LoadWait, issue bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateLoaded {
		return resolvedWait(nil), false
	}
	if s.pending != nil {
		return s.pending, false
	}

	w = newLoadWait()
	s.pending = w
	s.state = StateLoading
	if s.loadTimeout > 0 {
		s.timer = time.AfterFunc(s.loadTimeout, func() {
			s.abandon(w, shared.ErrAdLoadTimeout)
		})
	}
	return w, true
}

// MarkLoaded applies the SDK Loaded event
func (s *Slot) MarkLoaded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateLoaded
	s.lastErr = nil
	s.settle(nil)
}

// MarkFailed applies the SDK Error event, or a synchronous load failure
func (s *Slot) MarkFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateError
	s.lastErr = err
	s.settle(err)
}

// Consume moves a shown ad out of Loaded
func (s *Slot) Consume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateLoaded {
		s.state = StateIdle
	}
}

// MarkClosed applies the SDK Closed event
func (s *Slot) MarkClosed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoading {
		s.state = StateIdle
	}
}

// abandon resolves w with err if it is still the pending load
func (s *Slot) abandon(w *LoadWait, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != w {
		return
	}
	s.state = StateIdle
	s.pending = nil
	s.timer = nil
	w.resolve(err)
}

// settle resolves the pending load, with the lock held
func (s *Slot) settle(err error) {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.pending != nil {
		s.pending.resolve(err)
		s.pending = nil
	}
}
