package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"bookxe/internal/domain"
	"bookxe/internal/modules/approval"
)

// DefaultSweepInterval matches how often the dashboard used to trigger auto-cancel.
const DefaultSweepInterval = 30 * time.Minute

type SweepResult struct {
	CancelledCount int     `json:"cancelled_count"`
	Skipped        int     `json:"skipped"`
	Errors         []error `json:"-"`
}

// Sweeper cancels pending bookings left undecided past the expiry grace.
type Sweeper struct {
	svc        *Service
	interval   time.Duration
	initialRun bool
}

func NewSweeper(svc *Service, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{svc: svc, interval: interval, initialRun: true}
}

// WithInitialRun controls whether Start sweeps before the first tick.
func (s *Sweeper) WithInitialRun(enabled bool) *Sweeper {
	s.initialRun = enabled
	return s
}

// RunSweep expires every eligible booking. Bookings another writer resolved
// first are skipped; other failures, including rows whose stored status
// contradicts their stage flags, are collected and the batch continues.
func (s *Sweeper) RunSweep(ctx context.Context) SweepResult {
	start := time.Now()
	var res SweepResult

	cutoff := approval.ExpiryCutoff(s.svc.now())
	candidates, err := s.svc.store.ListExpired(ctx, domain.PendingStatuses, cutoff)
	if err != nil {
		res.Errors = append(res.Errors, storeError("list expired", err))
		log.Printf("sweep_failed cutoff=%s err=%v", cutoff.Format(time.RFC3339), err)
		return res
	}

	for _, b := range candidates {
		if err := ctx.Err(); err != nil {
			res.Errors = append(res.Errors, err)
			break
		}

		_, err := s.svc.Expire(ctx, b.ID)
		switch {
		case err == nil:
			res.CancelledCount++
		case errors.Is(err, ErrConflict), errors.Is(err, ErrNotFound):
			res.Skipped++
		case errors.Is(err, ErrInvalidTransition) && s.resolvedElsewhere(ctx, b.ID):
			res.Skipped++
		default:
			res.Errors = append(res.Errors, fmt.Errorf("expire %s: %w", b.ID, err))
		}
	}

	log.Printf("sweep_completed candidates=%d cancelled=%d skipped=%d errors=%d duration=%s",
		len(candidates), res.CancelledCount, res.Skipped, len(res.Errors), time.Since(start))
	return res
}

// resolvedElsewhere reports whether id reached a terminal status after it
// was listed.
func (s *Sweeper) resolvedElsewhere(ctx context.Context, id string) bool {
	cur, err := s.svc.store.GetByID(ctx, id)
	if err != nil {
		return false
	}
	return cur.Status.IsTerminal()
}

// Start runs a sweep immediately (unless disabled with WithInitialRun) and
// then on every interval until stop is called or ctx is done.
func (s *Sweeper) Start(ctx context.Context) (stop func()) {
	stopCh := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		if s.initialRun {
			s.RunSweep(ctx)
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.RunSweep(ctx)
			case <-stopCh:
				log.Println("expiry sweeper stopped")
				return
			case <-ctx.Done():
				log.Println("expiry sweeper stopped (context done)")
				return
			}
		}
	}()

	log.Printf("expiry sweeper started interval=%s initial_run=%t", s.interval, s.initialRun)

	var once sync.Once
	return func() {
		once.Do(func() { close(stopCh) })
		<-done
	}
}
