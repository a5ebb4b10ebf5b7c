package alerts

import (
	"context"
	"sync"
	"time"

	"kraken-console/internal/logger"
)

// Fetcher is the slice of Client the poller needs.
type Fetcher interface {
	FetchScenarios(ctx context.Context) (Snapshot, error)
}

type pollState int

const (
	stateIdle pollState = iota
	statePolling
	stateStopped
)

// PollerOptions configures a Poller.
type PollerOptions struct {
	Fetcher  Fetcher
	Interval time.Duration
	// OnNewAlert fires at most once per fetch, with the newest alert,
	// when the backend total grew. Suppressed on the initial snapshot.
	OnNewAlert func(Alert)
	// OnUpdate fires after every fetch attempt, success or failure.
	OnUpdate func(PollStatus)
}

// PollStatus is the poller's externally visible state after a fetch.
type PollStatus struct {
	Snapshot  Snapshot
	Connected bool
	Err       string
}

// Poller polls the alert backend on a fixed interval and detects new
// alerts by total-count delta. Fetches never overlap: a tick that
// arrives while one is in flight is skipped outright.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	onNew    func(Alert)
	onUpdate func(PollStatus)
	log      *logger.LogEntry

	mu        sync.Mutex
	state     pollState
	inflight  bool
	initial   bool
	prevCount int
	status    PollStatus
	stop      chan struct{}
}

func NewPoller(opts PollerOptions) *Poller {
	interval := opts.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		fetcher:  opts.Fetcher,
		interval: interval,
		onNew:    opts.OnNewAlert,
		onUpdate: opts.OnUpdate,
		log:      logger.Named("poller"),
	}
}

// Start transitions idle→polling: one immediate fetch whose result is
// never reported as a new alert, then fixed-interval ticks. Calling
// Start while already polling is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.state == statePolling {
		p.mu.Unlock()
		p.log.Warn("polling already running, start skipped")
		return
	}
	p.state = statePolling
	p.initial = true
	p.stop = make(chan struct{})
	stop := p.stop
	p.mu.Unlock()

	p.log.WithField("interval", p.interval.String()).Info("alert polling started")

	go p.fetchOnce(ctx)
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				go p.fetchOnce(ctx)
			case <-stop:
				return
			case <-ctx.Done():
				p.Stop()
				return
			}
		}
	}()
}

// Stop halts the ticker. Safe to call twice; a stopped poller can be
// started again.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != statePolling {
		return
	}
	p.state = stateStopped
	close(p.stop)
	p.stop = nil
	p.log.Info("alert polling stopped")
}

// Status returns the last fetch outcome.
func (p *Poller) Status() PollStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) fetchOnce(ctx context.Context) {
	p.mu.Lock()
	if p.inflight {
		p.mu.Unlock()
		p.log.Info("fetch already in flight, skipping")
		return
	}
	p.inflight = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.inflight = false
		p.mu.Unlock()
	}()

	snap, err := p.fetcher.FetchScenarios(ctx)

	p.mu.Lock()
	if err != nil {
		// Keep the last good snapshot and keep polling.
		p.status.Connected = false
		p.status.Err = err.Error()
		status := p.status
		p.mu.Unlock()

		p.log.WithField("error", err.Error()).Warn("alert fetch failed")
		if p.onUpdate != nil {
			p.onUpdate(status)
		}
		return
	}

	hadNew := snap.TotalCount > p.prevCount
	initial := p.initial
	p.prevCount = snap.TotalCount
	p.initial = false
	p.status = PollStatus{Snapshot: snap, Connected: true}
	status := p.status
	p.mu.Unlock()

	if hadNew && !initial {
		if newest, ok := Newest(snap.Alerts); ok && p.onNew != nil {
			p.log.WithFields(logger.Fields{"alert": newest.ID, "title": newest.Title}).Info("new alert detected")
			p.onNew(newest)
		}
	}
	if p.onUpdate != nil {
		p.onUpdate(status)
	}
}
