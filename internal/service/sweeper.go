package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/event-seat-booking/internal/clock"
	"github.com/iliyamo/event-seat-booking/internal/repository"
)

// Sweeper proactively flips overdue PENDING holds to EXPIRED and
// returns their seats to AVAILABLE.  It exists purely for inventory
// accuracy and observability: every reader already applies lazy expiry,
// so correctness never depends on the sweeper having run.  Each flip
// uses the same conditional write as the other transitions, so the
// sweeper can never shorten a still-valid window or clobber a
// concurrent confirmation.
type Sweeper struct {
	holds    HoldStore
	clk      clock.Clock
	interval time.Duration
	batch    int
}

// NewSweeper constructs a Sweeper that scans every interval, voiding at
// most batch holds per pass.
func NewSweeper(holds HoldStore, clk clock.Clock, interval time.Duration, batch int) *Sweeper {
	if holds == nil || clk == nil {
		panic("nil dependency passed to NewSweeper")
	}
	if batch <= 0 {
		batch = 100
	}
	return &Sweeper{holds: holds, clk: clk, interval: interval, batch: batch}
}

// Run blocks, sweeping on a ticker until ctx is cancelled.  Intended to
// be started in its own goroutine from main.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	log.Printf("sweeper: started, interval=%s batch=%d", s.interval, s.batch)
	for {
		select {
		case <-ctx.Done():
			log.Println("sweeper: stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs a single pass.  Conflicts are skipped silently: they
// mean a confirmation or a lazy-expiry path resolved the hold first,
// which is exactly the discipline that keeps the sweeper safe.
func (s *Sweeper) Sweep(ctx context.Context) {
	overdue, err := s.holds.ListExpiredPending(ctx, s.clk.Now(), s.batch)
	if err != nil {
		log.Printf("sweeper: list overdue holds failed: %v", err)
		return
	}
	if len(overdue) == 0 {
		return
	}
	voided := 0
	for _, h := range overdue {
		if err := s.holds.MarkExpired(ctx, h.ID); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				continue
			}
			log.Printf("sweeper: expire hold %s failed: %v", h.ID, err)
			continue
		}
		voided++
	}
	if voided > 0 {
		log.Printf("sweeper: voided %d overdue holds", voided)
	}
}
