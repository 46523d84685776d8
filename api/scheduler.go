/*
scheduler.go - Automated due-soon reminder scan

PURPOSE:
  Periodically scans every owner's debts for payments that are due within
  three days or up to seven days overdue with nothing recorded this month,
  and reports them. The notification channel lives downstream; this
  scheduler produces the structured log records it consumes.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on Start, then on every tick
  - Per-owner failures are logged and skipped; the run continues
  - The last run's outcome is kept for display

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewDueSoonScheduler(svc, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - debt/duesoon.go: The window rules
  - handlers.go: GetDueSoon endpoint (per-user, on demand)
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/warp/debt-engine/debt"
	"github.com/warp/debt-engine/logging"
)

// DueSoonRun is the outcome of one scan.
type DueSoonRun struct {
	StartedAt time.Time
	Owners    int
	Due       int
	Failed    int
}

// DueSoonScheduler runs debt.Service.DueSoon for every owner on a ticker.
type DueSoonScheduler struct {
	Service       *debt.Service
	Logger        *logging.Logger
	CheckInterval time.Duration
	Enabled       bool

	ticker  *time.Ticker
	stop    chan bool
	wg      sync.WaitGroup
	mu      sync.Mutex
	lastMu  sync.Mutex
	lastRun *DueSoonRun
}

// NewDueSoonScheduler creates a new scheduler.
func NewDueSoonScheduler(svc *debt.Service, logger *logging.Logger) *DueSoonScheduler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &DueSoonScheduler{
		Service:       svc,
		Logger:        logger.WithComponent(logging.ComponentScheduler),
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (s *DueSoonScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Logger.Info("scheduler disabled, not starting")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.stop = make(chan bool)
	s.wg.Add(1)

	go s.run()

	s.Logger.Info("scheduler started", "interval", s.CheckInterval.String())
}

// Stop stops the scheduler and waits for an in-flight scan to finish.
func (s *DueSoonScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.Logger.Info("scheduler stopped")
	}
}

func (s *DueSoonScheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.check(context.Background())

	for {
		select {
		case <-s.ticker.C:
			s.check(context.Background())
		case <-s.stop:
			return
		}
	}
}

func (s *DueSoonScheduler) check(ctx context.Context) DueSoonRun {
	run := DueSoonRun{StartedAt: time.Now()}

	owners, err := s.Service.Debts.ListOwners(ctx)
	if err != nil {
		s.Logger.ErrorContext(ctx, "failed to list owners",
			logging.FieldOperation, logging.OpDueSoon,
			logging.FieldError, err,
		)
		run.Failed++
		s.record(run)
		return run
	}

	for _, owner := range owners {
		run.Owners++
		due, err := s.Service.DueSoon(ctx, owner)
		if err != nil {
			run.Failed++
			s.Logger.ErrorContext(ctx, "due-soon scan failed",
				logging.FieldOperation, logging.OpDueSoon,
				logging.FieldOwnerID, owner,
				logging.FieldError, err,
			)
			continue
		}
		for _, d := range due {
			run.Due++
			s.Logger.InfoContext(ctx, "payment due soon",
				logging.FieldOperation, logging.OpDueSoon,
				logging.FieldOwnerID, owner,
				logging.FieldDebtID, d.ID,
				"name", d.Name,
				"days_until_due", d.DaysUntilDue,
				"minimum_payment", d.MinimumPayment.StringFixed(debt.Cents),
			)
		}
	}

	if run.Due > 0 || run.Failed > 0 {
		s.Logger.InfoContext(ctx, "due-soon scan completed",
			"owners", run.Owners,
			"due", run.Due,
			"failed", run.Failed,
			logging.FieldDuration, time.Since(run.StartedAt).Milliseconds(),
		)
	}
	s.record(run)
	return run
}

func (s *DueSoonScheduler) record(run DueSoonRun) {
	s.lastMu.Lock()
	defer s.lastMu.Unlock()
	s.lastRun = &run
}

// RunNow triggers an immediate scan (for testing/admin).
func (s *DueSoonScheduler) RunNow(ctx context.Context) DueSoonRun {
	return s.check(ctx)
}

// LastRun returns the most recent scan outcome, or nil before the first.
func (s *DueSoonScheduler) LastRun() *DueSoonRun {
	s.lastMu.Lock()
	defer s.lastMu.Unlock()
	if s.lastRun == nil {
		return nil
	}
	run := *s.lastRun
	return &run
}
