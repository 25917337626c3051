package utils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
)

// Observable field names passed to subscribers
const (
	FieldActive     = "active"
	FieldNextFireAt = "nextFireAt"
)

// PollingCallback is invoked on every fire. Errors and panics are logged and
// never stop the scheduler.
type PollingCallback func(ctx context.Context) error

// -----------------------------------------------------------------------------

// PollingScheduler re-invokes a callback at a fixed interval and keeps a
// self-correcting countdown to the next fire. Idle -> Active -> Idle;
// starting while active restarts cleanly.
type PollingScheduler struct {
	Logger            *logger.Logger
	countdownInterval time.Duration
	now               func() time.Time

	mu         sync.RWMutex
	active     bool
	interval   time.Duration
	nextFireAt time.Time
	generation uint64
	cancel     context.CancelFunc
	parent     context.Context
	wg         sync.WaitGroup
	notifier   helpers.Notifier[string]
}

// SchedulerOption configures a PollingScheduler.
type SchedulerOption func(*PollingScheduler)

// WithCountdownInterval sets the drift check cadence.
func WithCountdownInterval(d time.Duration) SchedulerOption {
	return func(s *PollingScheduler) {
		s.countdownInterval = d
	}
}

// WithClock replaces time.Now for countdown arithmetic.
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *PollingScheduler) {
		s.now = now
	}
}

// -----------------------------------------------------------------------------

func NewPollingScheduler(l *logger.Logger, opts ...SchedulerOption) *PollingScheduler {
	s := &PollingScheduler{
		Logger:            l,
		countdownInterval: CountdownInterval,
		now:               time.Now,
		interval:          PollingInterval,
		parent:            context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Logger == nil {
		s.Logger = logger.NewLogger(nil, "PollingScheduler")
	}
	return s
}

// -----------------------------------------------------------------------------

// Start begins polling with a background parent context. An interval of 0
// selects PollingInterval.
func (s *PollingScheduler) Start(callback PollingCallback, interval time.Duration) error {
	return s.StartContext(context.Background(), callback, interval)
}

// StartContext begins polling. The scheduler stops itself when parent is done.
func (s *PollingScheduler) StartContext(parent context.Context, callback PollingCallback, interval time.Duration) error {
	if callback == nil {
		return helpers.InvalidArgument("polling callback must be a function")
	}
	if interval < 0 {
		return helpers.InvalidArgument("polling interval must be positive, got %v", interval)
	}
	if interval == 0 {
		interval = PollingInterval
	}
	if parent == nil {
		parent = context.Background()
	}

	s.Stop()

	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.active = true
	s.interval = interval
	s.parent = parent
	s.cancel = cancel
	s.nextFireAt = s.now().Add(interval)
	countdown := s.countdownInterval
	s.mu.Unlock()

	s.wg.Add(2)
	go s.fireLoop(ctx, gen, callback, interval)
	go s.countdownLoop(ctx, gen, interval, countdown)

	s.Logger.Debug("Polling started every %v", interval)
	s.notifier.Notify(FieldActive)
	s.notifier.Notify(FieldNextFireAt)
	return nil
}

// -----------------------------------------------------------------------------

func (s *PollingScheduler) fireLoop(ctx context.Context, gen uint64, callback PollingCallback, interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.expire(gen)
			return
		case <-ticker.C:
			s.invoke(ctx, callback)
			s.rearm(gen, interval)
		}
	}
}

func (s *PollingScheduler) countdownLoop(ctx context.Context, gen uint64, interval, cadence time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(cadence)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.RLock()
			due := s.generation == gen && !s.nextFireAt.IsZero() && !s.now().Before(s.nextFireAt)
			s.mu.RUnlock()
			if due {
				s.rearm(gen, interval)
			}
		}
	}
}

func (s *PollingScheduler) invoke(ctx context.Context, callback PollingCallback) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("Polling callback panic: %v", r)
		}
	}()

	if err := callback(ctx); err != nil {
		s.Logger.Error("Polling callback error: %v", err)
	}
}

// rearm pushes nextFireAt forward unless the run that owns gen was stopped
func (s *PollingScheduler) rearm(gen uint64, interval time.Duration) {
	s.mu.Lock()
	if s.generation != gen || !s.active {
		s.mu.Unlock()
		return
	}
	s.nextFireAt = s.now().Add(interval)
	s.mu.Unlock()
	s.notifier.Notify(FieldNextFireAt)
}

// expire goes idle when the parent context ends a still-current run
func (s *PollingScheduler) expire(gen uint64) {
	s.mu.Lock()
	if s.generation != gen || !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.nextFireAt = time.Time{}
	s.cancel = nil
	s.mu.Unlock()

	s.Logger.Debug("Polling stopped: parent context done")
	s.notifier.Notify(FieldActive)
}

// -----------------------------------------------------------------------------

// Stop cancels both timers. Safe to call when idle and from inside the
// callback; an in-flight callback is not interrupted beyond its context.
func (s *PollingScheduler) Stop() {
	s.mu.Lock()
	wasActive := s.active
	cancel := s.cancel
	s.generation++
	s.active = false
	s.nextFireAt = time.Time{}
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if wasActive {
		s.Logger.Debug("Polling stopped")
		s.notifier.Notify(FieldActive)
	}
}

// Close stops polling and waits for both loops to exit.
// Must not be called from inside the callback.
func (s *PollingScheduler) Close() {
	s.Stop()
	s.wg.Wait()
}

// -----------------------------------------------------------------------------

// UpdateInterval restarts an active scheduler with the new interval, or only
// stores it when idle.
func (s *PollingScheduler) UpdateInterval(interval time.Duration, callback PollingCallback) error {
	if interval <= 0 {
		return helpers.InvalidArgument("polling interval must be positive, got %v", interval)
	}

	s.mu.Lock()
	active := s.active
	parent := s.parent
	if !active {
		s.interval = interval
	}
	s.mu.Unlock()

	if active {
		if err := s.StartContext(parent, callback, interval); err != nil {
			return fmt.Errorf("restart polling: %w", err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// TimeRemaining returns whole seconds until the next fire, 0 when idle
func (s *PollingScheduler) TimeRemaining() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.active || s.nextFireAt.IsZero() {
		return 0
	}
	left := s.nextFireAt.Sub(s.now())
	if left <= 0 {
		return 0
	}
	return int(left / time.Second)
}

func (s *PollingScheduler) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *PollingScheduler) Interval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.interval
}

// NextFireAt returns the scheduled fire time; ok is false when idle
func (s *PollingScheduler) NextFireAt() (t time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextFireAt, !s.nextFireAt.IsZero()
}

// Subscribe registers fn, called with FieldActive or FieldNextFireAt
func (s *PollingScheduler) Subscribe(fn func(field string)) func() {
	return s.notifier.Subscribe(fn)
}
