// Package ads coordinates the app-open and rewarded-interstitial slots: load
// de-duplication, the show rate limit, the rewarded show session and the
// foreground trigger.
package ads

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/optica/admin/internal/domain/ads"
	"github.com/optica/admin/internal/domain/shared"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrClosed is returned to callers still waiting when the coordinator shuts down
var ErrClosed = errors.New("ad coordinator closed")

// AppState is the host lifecycle state
type AppState string

const (
	AppStateActive     AppState = "active"
	AppStateInactive   AppState = "inactive"
	AppStateBackground AppState = "background"
)

// Config holds the coordinator timings
type Config struct {
	LoadTimeout             time.Duration
	MinShowInterval         time.Duration
	RewardedSafetyTimeout   time.Duration
	ErrorRetryDelay         time.Duration
	ShowAppOpenOnForeground bool
}

// DefaultConfig returns the production timings
func DefaultConfig() Config {
	return Config{
		LoadTimeout:             6 * time.Second,
		MinShowInterval:         90 * time.Second,
		RewardedSafetyTimeout:   15 * time.Second,
		ErrorRetryDelay:         2 * time.Second,
		ShowAppOpenOnForeground: true,
	}
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock sets the clock used by the show rate limit
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// WithMeter sets the meter used for ad counters
func WithMeter(meter metric.Meter) Option {
	return func(c *Coordinator) {
		c.meter = meter
	}
}

type unit struct {
	ad     ads.Ad
	slot   *ads.Slot
	remove func()
	retry  *time.Timer
}

type rewardOutcome struct {
	result ads.RewardResult
	err    error
}

// rewardedSession tracks one rewarded show from Show until its terminal event
type rewardedSession struct {
	id      string
	earned  bool
	reward  *ads.Reward
	timer   *time.Timer
	done    chan rewardOutcome
	started time.Time
}

// Coordinator is the single owner of both ad slots. All methods are safe for
// concurrent use; SDK listeners may run on any goroutine.
type Coordinator struct {
	cfg          Config
	logger       *zap.Logger
	now          func() time.Time
	meter        metric.Meter
	metrics      *metrics
	entitlements *Entitlements
	limiter      *ads.ShowLimiter

	appOpen  *unit
	rewarded *unit

	// appOpenShowMu serialises the limit check with the app-open show
	appOpenShowMu sync.Mutex

	mu           sync.Mutex
	appState     AppState
	rewardedBusy bool
	session      *rewardedSession
	closed       bool

	wg sync.WaitGroup
}

// NewCoordinator wires both ad instances to a coordinator. Call Start to load
// the persisted flag and issue the initial loads.
func NewCoordinator(appOpen, rewarded ads.Ad, entitlements *Entitlements, cfg Config, opts ...Option) *Coordinator {
	c := &Coordinator{
		cfg:          cfg,
		logger:       zap.NewNop(),
		now:          time.Now,
		entitlements: entitlements,
		appState:     AppStateActive,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.metrics = newMetrics(c.meter)
	c.limiter = ads.NewShowLimiter(cfg.MinShowInterval, c.now)
	c.logger = c.logger.Named("ads")

	c.appOpen = &unit{ad: appOpen, slot: ads.NewSlot(ads.AppOpen, cfg.LoadTimeout)}
	c.rewarded = &unit{ad: rewarded, slot: ads.NewSlot(ads.RewardedInterstitial, cfg.LoadTimeout)}
	c.appOpen.remove = appOpen.AddListener(c.onAppOpenEvent)
	c.rewarded.remove = rewarded.AddListener(c.onRewardedEvent)
	return c
}

// Start reads the ads-removed flag and issues the initial load for both slots.
// A flag read failure is logged and ads stay enabled.
func (c *Coordinator) Start(ctx context.Context) {
	if err := c.entitlements.Load(ctx); err != nil {
		c.logger.Warn("starting with ads enabled", zap.Error(err))
	}
	c.requestLoad(c.appOpen)
	c.requestLoad(c.rewarded)
	c.logger.Info("ad coordinator started",
		zap.String("app_open_unit", c.appOpen.ad.UnitID()),
		zap.String("rewarded_unit", c.rewarded.ad.UnitID()),
		zap.Bool("ads_removed", c.entitlements.AdsRemoved()),
	)
}

// Close detaches the SDK listeners, stops pending retries and fails any
// rewarded show still in progress with ErrClosed.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	sess := c.session
	for _, u := range []*unit{c.appOpen, c.rewarded} {
		if u.retry != nil {
			u.retry.Stop()
			u.retry = nil
		}
	}
	c.mu.Unlock()

	if sess != nil {
		c.finishSession(sess, ads.RewardResult{}, ErrClosed, "closed")
	}
	c.appOpen.remove()
	c.rewarded.remove()
	c.wg.Wait()
}

// AdsRemoved reports whether ads are disabled by purchase
func (c *Coordinator) AdsRemoved() bool {
	return c.entitlements.AdsRemoved()
}

// Entitlements exposes the monetization flag holder
func (c *Coordinator) Entitlements() *Entitlements {
	return c.entitlements
}

// IsAppOpenLoaded reports whether an app-open ad is ready
func (c *Coordinator) IsAppOpenLoaded() bool {
	return c.appOpen.slot.IsLoaded()
}

// IsRewardedLoaded reports whether a rewarded ad is ready
func (c *Coordinator) IsRewardedLoaded() bool {
	return c.rewarded.slot.IsLoaded()
}

// IsRewardedShowing reports whether a rewarded show request is in progress
func (c *Coordinator) IsRewardedShowing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rewardedBusy
}

// LastAppOpenShownAt returns when an app-open ad was last shown
func (c *Coordinator) LastAppOpenShownAt() time.Time {
	return c.limiter.LastShownAt()
}

// RequestAppOpenShow shows an app-open ad if ads are enabled, the minimum
// interval has elapsed and a load succeeds. It never returns an error; every
// failure is logged and reported as false.
func (c *Coordinator) RequestAppOpenShow(ctx context.Context) bool {
	log := c.logger.With(zap.String("slot", string(ads.AppOpen)))

	if c.entitlements.AdsRemoved() {
		log.Debug("app-open skipped, ads removed")
		c.metrics.show(ads.AppOpen, OutcomeAdsRemoved)
		return false
	}
	if !c.limiter.Allow() {
		log.Debug("app-open skipped, shown recently",
			zap.Time("last_shown_at", c.limiter.LastShownAt()))
		c.metrics.show(ads.AppOpen, OutcomeRateLimited)
		return false
	}

	if err := c.waitLoaded(ctx, c.appOpen); err != nil {
		log.Warn("app-open load failed", zap.Error(err))
		c.metrics.show(ads.AppOpen, OutcomeLoadFailed)
		return false
	}

	c.appOpenShowMu.Lock()
	defer c.appOpenShowMu.Unlock()

	// another caller may have shown while this one waited for the load
	if !c.limiter.Allow() {
		c.metrics.show(ads.AppOpen, OutcomeRateLimited)
		return false
	}
	if err := c.appOpen.ad.Show(); err != nil {
		log.Warn("app-open show failed", zap.Error(err))
		c.metrics.show(ads.AppOpen, OutcomeShowFailed)
		return false
	}
	c.appOpen.slot.Consume()
	c.limiter.Record()
	c.metrics.show(ads.AppOpen, OutcomeShown)
	log.Info("app-open shown")
	return true
}

// RequestRewardedShow runs one rewarded show session. With ads removed it
// returns a not-earned result immediately. A second call while a session is
// in progress fails with ErrAdAlreadyShowing. The result is delivered exactly
// once: on close, on SDK error, or after the safety timeout.
func (c *Coordinator) RequestRewardedShow(ctx context.Context) (ads.RewardResult, error) {
	if c.entitlements.AdsRemoved() {
		c.metrics.show(ads.RewardedInterstitial, OutcomeAdsRemoved)
		return ads.RewardResult{}, nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ads.RewardResult{}, ErrClosed
	}
	if c.rewardedBusy {
		c.mu.Unlock()
		c.metrics.show(ads.RewardedInterstitial, OutcomeBusy)
		return ads.RewardResult{}, shared.ErrAdAlreadyShowing
	}
	c.rewardedBusy = true
	c.mu.Unlock()

	if err := c.waitLoaded(ctx, c.rewarded); err != nil {
		c.mu.Lock()
		c.rewardedBusy = false
		c.mu.Unlock()
		c.logger.Warn("rewarded load failed", zap.Error(err))
		c.metrics.show(ads.RewardedInterstitial, OutcomeLoadFailed)
		return ads.RewardResult{}, err
	}

	sess := &rewardedSession{
		id:      uuid.NewString(),
		done:    make(chan rewardOutcome, 1),
		started: c.now(),
	}
	c.mu.Lock()
	if c.closed {
		c.rewardedBusy = false
		c.mu.Unlock()
		return ads.RewardResult{}, ErrClosed
	}
	c.session = sess
	c.mu.Unlock()

	log := c.logger.With(zap.String("session_id", sess.id))
	log.Info("showing rewarded ad")

	if err := c.rewarded.ad.Show(); err != nil {
		c.finishSession(sess, ads.RewardResult{}, fmt.Errorf("%w: %w", shared.ErrAdLoadError, err), OutcomeShowFailed)
		out := <-sess.done
		return out.result, out.err
	}
	c.rewarded.slot.Consume()

	c.mu.Lock()
	if c.session == sess && c.cfg.RewardedSafetyTimeout > 0 {
		sess.timer = time.AfterFunc(c.cfg.RewardedSafetyTimeout, func() {
			log.Warn("rewarded ad never closed, resolving as not earned")
			c.finishSession(sess, ads.RewardResult{}, nil, OutcomeTimeout)
		})
	}
	c.mu.Unlock()

	select {
	case out := <-sess.done:
		return out.result, out.err
	case <-ctx.Done():
		c.finishSession(sess, ads.RewardResult{}, ctx.Err(), "canceled")
		out := <-sess.done
		return out.result, out.err
	}
}

// HandleAppStateChange records a lifecycle transition. Returning to active
// from background or inactive triggers an app-open show attempt.
func (c *Coordinator) HandleAppStateChange(next AppState) {
	c.mu.Lock()
	prev := c.appState
	c.appState = next
	closed := c.closed
	c.mu.Unlock()

	if closed || !c.cfg.ShowAppOpenOnForeground {
		return
	}
	if next != AppStateActive || (prev != AppStateBackground && prev != AppStateInactive) {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		shown := c.RequestAppOpenShow(context.Background())
		c.logger.Debug("foreground app-open attempt", zap.Bool("shown", shown))
	}()
}

// AppState returns the last recorded lifecycle state
func (c *Coordinator) AppState() AppState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.appState
}

// waitLoaded returns once the slot holds a loaded ad
func (c *Coordinator) waitLoaded(ctx context.Context, u *unit) error {
	if u.slot.IsLoaded() {
		return nil
	}
	err := c.requestLoad(u).Wait(ctx)
	if err == nil || ctx.Err() != nil ||
		errors.Is(err, shared.ErrAdLoadTimeout) || errors.Is(err, shared.ErrAdLoadError) {
		return err
	}
	return fmt.Errorf("%w: %w", shared.ErrAdLoadError, err)
}

// requestLoad joins the in-flight load or issues a new one
func (c *Coordinator) requestLoad(u *unit) *ads.LoadWait {
	w, issue := u.slot.BeginLoad()
	if !issue {
		return w
	}
	c.metrics.load(u.slot.Kind())
	c.logger.Debug("loading ad", zap.String("slot", string(u.slot.Kind())))
	if err := u.ad.Load(); err != nil {
		c.logger.Warn("ad load command failed",
			zap.String("slot", string(u.slot.Kind())), zap.Error(err))
		u.slot.MarkFailed(err)
	}
	return w
}

// scheduleReload retries a failed load after the configured delay
func (c *Coordinator) scheduleReload(u *unit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if u.retry != nil {
		u.retry.Stop()
	}
	u.retry = time.AfterFunc(c.cfg.ErrorRetryDelay, func() {
		c.mu.Lock()
		closed := c.closed
		u.retry = nil
		c.mu.Unlock()
		if !closed {
			c.requestLoad(u)
		}
	})
}

func (c *Coordinator) reload(u *unit) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if !closed {
		c.requestLoad(u)
	}
}

func (c *Coordinator) onAppOpenEvent(ev ads.Event) {
	switch ev.Type {
	case ads.EventLoaded:
		c.appOpen.slot.MarkLoaded()
	case ads.EventClosed:
		c.appOpen.slot.MarkClosed()
		c.reload(c.appOpen)
	case ads.EventError:
		c.logger.Warn("app-open ad error", zap.Error(ev.Err))
		c.appOpen.slot.MarkFailed(ev.Err)
		c.scheduleReload(c.appOpen)
	}
}

func (c *Coordinator) onRewardedEvent(ev ads.Event) {
	switch ev.Type {
	case ads.EventLoaded:
		c.rewarded.slot.MarkLoaded()

	case ads.EventEarnedReward:
		c.mu.Lock()
		if c.session != nil {
			c.session.earned = true
			c.session.reward = ev.Reward
		}
		c.mu.Unlock()

	case ads.EventClosed:
		c.mu.Lock()
		sess := c.session
		var res ads.RewardResult
		if sess != nil {
			res = ads.RewardResult{Earned: sess.earned, Reward: sess.reward}
		}
		c.mu.Unlock()
		if sess != nil {
			outcome := OutcomeNotEarned
			if res.Earned {
				outcome = OutcomeEarned
			}
			c.finishSession(sess, res, nil, outcome)
		}
		c.rewarded.slot.MarkClosed()
		c.reload(c.rewarded)

	case ads.EventError:
		c.logger.Warn("rewarded ad error", zap.Error(ev.Err))
		c.mu.Lock()
		sess := c.session
		c.mu.Unlock()
		if sess != nil {
			c.finishSession(sess, ads.RewardResult{}, fmt.Errorf("%w: %w", shared.ErrAdLoadError, ev.Err), OutcomeShowFailed)
		}
		c.rewarded.slot.MarkFailed(ev.Err)
		c.scheduleReload(c.rewarded)
	}
}

// finishSession delivers the session outcome if sess is still the active
// session. Later terminal events for the same session are dropped.
func (c *Coordinator) finishSession(sess *rewardedSession, res ads.RewardResult, err error, outcome string) {
	c.mu.Lock()
	if c.session != sess {
		c.mu.Unlock()
		return
	}
	c.session = nil
	c.rewardedBusy = false
	if sess.timer != nil {
		sess.timer.Stop()
	}
	c.mu.Unlock()

	sess.done <- rewardOutcome{result: res, err: err}
	c.metrics.show(ads.RewardedInterstitial, outcome)
	c.logger.Info("rewarded session finished",
		zap.String("session_id", sess.id),
		zap.String("outcome", outcome),
		zap.Bool("earned", res.Earned),
		zap.Duration("elapsed", c.now().Sub(sess.started)),
		zap.Error(err),
	)
}
