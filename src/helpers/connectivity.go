package helpers

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"market-dashboard/src/logger"
)

// -----------------------------------------------------------------------------
// ManualProbe
// -----------------------------------------------------------------------------

// ManualProbe is a connectivity probe driven by explicit SetOnline calls.
// Used when active probing is disabled and in tests.
type ManualProbe struct {
	online   atomic.Bool
	notifier Notifier[bool]
}

func NewManualProbe(online bool) *ManualProbe {
	p := &ManualProbe{}
	p.online.Store(online)
	return p
}

func (p *ManualProbe) IsOnline() bool {
	return p.online.Load()
}

func (p *ManualProbe) Subscribe(fn func(online bool)) func() {
	return p.notifier.Subscribe(fn)
}

// SetOnline updates the state, notifying only on a transition
func (p *ManualProbe) SetOnline(online bool) {
	if p.online.Swap(online) == online {
		return
	}
	p.notifier.Notify(online)
}

// -----------------------------------------------------------------------------
// HTTPConnectivityProbe
// -----------------------------------------------------------------------------

// HTTPConnectivityProbe polls a URL with HEAD requests. Any response counts
// as online; a transport failure counts as offline.
type HTTPConnectivityProbe struct {
	ManualProbe

	URL      string
	Interval time.Duration
	Client   *http.Client
	Logger   *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewHTTPConnectivityProbe(url string, interval time.Duration, log *logger.Logger) *HTTPConnectivityProbe {
	p := &HTTPConnectivityProbe{
		URL:      url,
		Interval: interval,
		Client:   &http.Client{Timeout: 5 * time.Second},
		Logger:   log,
	}
	p.online.Store(true)
	return p
}

// -----------------------------------------------------------------------------

// Start runs one probe synchronously, then keeps probing until ctx is done
// or Stop is called.
func (p *HTTPConnectivityProbe) Start(ctx context.Context) error {
	if p.Interval <= 0 {
		return InvalidArgument("probe interval must be positive, got %v", p.Interval)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.Check(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Check(ctx)
			}
		}
	}()
	return nil
}

// Stop halts probing and waits for the loop to exit
func (p *HTTPConnectivityProbe) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		p.wg.Wait()
	}
}

// -----------------------------------------------------------------------------

// Check performs one probe and applies the result
func (p *HTTPConnectivityProbe) Check(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL, nil)
	if err != nil {
		if p.Logger != nil {
			p.Logger.Error("Invalid probe url %q: %v", p.URL, err)
		}
		return p.IsOnline()
	}

	online := true
	resp, err := p.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return p.IsOnline()
		}
		online = false
	} else {
		resp.Body.Close()
	}

	if p.IsOnline() != online && p.Logger != nil {
		if online {
			p.Logger.Info("Connectivity restored (%s)", p.URL)
		} else {
			p.Logger.Warning("Connectivity lost: %v", err)
		}
	}
	p.SetOnline(online)
	return online
}
