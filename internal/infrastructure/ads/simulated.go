// Package ads provides an in-process stand-in for the native ad SDK, used by
// development hosts that run with test ad units.
package ads

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/optica/admin/internal/domain/ads"
	"go.uber.org/zap"
)

// ErrNotLoaded is returned by Show when no ad is ready
var ErrNotLoaded = errors.New("simulated ad: show called before load")

// SimulatedConfig scripts the behaviour of a simulated ad instance
type SimulatedConfig struct {
	UnitID      string
	Kind        ads.Kind
	LoadLatency time.Duration
	// FailEvery makes every n-th load fail with a no-fill error; 0 never fails.
	FailEvery int
	// DisplayTime is how long the ad stays on screen before Closed fires.
	DisplayTime time.Duration
	// Reward is granted before close on rewarded kinds; nil grants nothing.
	Reward *ads.Reward
}

// SimulatedAd implements ads.Ad with timers instead of a native view
type SimulatedAd struct {
	cfg    SimulatedConfig
	logger *zap.Logger

	mu        sync.Mutex
	listeners map[int]ads.Listener
	nextID    int
	loading   bool
	loaded    bool
	loadCount int
	timers    map[int]*time.Timer
	nextTimer int
	closed    bool
}

// NewSimulatedAd creates a simulated ad instance
func NewSimulatedAd(cfg SimulatedConfig, logger *zap.Logger) *SimulatedAd {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulatedAd{
		cfg:       cfg,
		logger:    logger.Named("simulated_ad").With(zap.String("unit_id", cfg.UnitID)),
		listeners: make(map[int]ads.Listener),
		timers:    make(map[int]*time.Timer),
	}
}

// UnitID returns the configured unit id
func (a *SimulatedAd) UnitID() string {
	return a.cfg.UnitID
}

// Load starts a simulated network fetch. A load already in flight or an ad
// already loaded makes this a no-op, like the native SDK.
func (a *SimulatedAd) Load() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return errors.New("simulated ad: closed")
	}
	if a.loading || a.loaded {
		return nil
	}
	a.loading = true
	a.loadCount++
	fail := a.cfg.FailEvery > 0 && a.loadCount%a.cfg.FailEvery == 0

	a.after(a.cfg.LoadLatency, func() {
		a.mu.Lock()
		a.loading = false
		a.loaded = !fail
		a.mu.Unlock()

		if fail {
			a.logger.Debug("load failed")
			a.emit(ads.Event{Type: ads.EventError, Err: fmt.Errorf("no fill for %s", a.cfg.UnitID)})
			return
		}
		a.logger.Debug("loaded")
		a.emit(ads.Event{Type: ads.EventLoaded})
	})
	return nil
}

// Show displays the loaded ad. Closed fires after DisplayTime, preceded by
// EarnedReward when a reward is configured.
func (a *SimulatedAd) Show() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		return ErrNotLoaded
	}
	a.loaded = false

	reward := a.cfg.Reward
	a.after(a.cfg.DisplayTime, func() {
		if reward != nil && a.cfg.Kind == ads.RewardedInterstitial {
			r := *reward
			a.emit(ads.Event{Type: ads.EventEarnedReward, Reward: &r})
		}
		a.logger.Debug("closed")
		a.emit(ads.Event{Type: ads.EventClosed})
	})
	return nil
}

// AddListener registers l and returns its removal function
func (a *SimulatedAd) AddListener(l ads.Listener) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = l
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.listeners, id)
	}
}

// Close stops pending timers; no further events are emitted
func (a *SimulatedAd) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	for id, t := range a.timers {
		t.Stop()
		delete(a.timers, id)
	}
}

// after schedules fn, with a.mu held. A fired timer removes itself.
func (a *SimulatedAd) after(d time.Duration, fn func()) {
	id := a.nextTimer
	a.nextTimer++
	a.timers[id] = time.AfterFunc(d, func() {
		a.mu.Lock()
		delete(a.timers, id)
		closed := a.closed
		a.mu.Unlock()
		if !closed {
			fn()
		}
	})
}

func (a *SimulatedAd) pendingTimers() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.timers)
}

func (a *SimulatedAd) emit(ev ads.Event) {
	a.mu.Lock()
	ls := make([]ads.Listener, 0, len(a.listeners))
	for _, l := range a.listeners {
		ls = append(ls, l)
	}
	a.mu.Unlock()
	for _, l := range ls {
		l(ev)
	}
}

var _ ads.Ad = (*SimulatedAd)(nil)
