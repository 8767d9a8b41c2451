package jobs

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"lottery/services"

	"golang.org/x/sync/errgroup"
)

const depositBatchSize = 200

// DepositWatcher re-runs deposit confirmation for unused intents so players who never
// press "check" still get credited. Crediting is idempotent, so overlapping with a
// manual check is harmless.
type DepositWatcher struct {
	Deposits    *services.DepositService
	Interval    time.Duration
	Window      time.Duration
	Concurrency int
	// BatchSize caps the intents checked per run; zero means depositBatchSize.
	BatchSize int

	mu     sync.Mutex
	cursor uint
}

// Start runs the watcher every Interval until ctx is done. A zero Interval disables it.
func (w *DepositWatcher) Start(ctx context.Context) {
	if w.Interval <= 0 {
		log.Println("🟡 Deposit watcher disabled")
		return
	}

	ticker := time.NewTicker(w.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				credited, err := w.RunOnce(ctx)
				if err != nil {
					log.Printf("❌ error watching deposits: %v", err)
				}
				if credited > 0 {
					log.Printf("✅ Credited %d deposits", credited)
				}
			}
		}
	}()
}

// RunOnce checks the next batch of pending intents and reports how many were credited.
// Batches resume after the last intent of the previous run and wrap around at the end.
// so every intent in the window gets its turn. A failing intent does not stop the
// others; the first failure is returned.
func (w *DepositWatcher) RunOnce(ctx context.Context) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	batch := w.BatchSize
	if batch <= 0 {
		batch = depositBatchSize
	}
	since := time.Now().Add(-w.Window)

	intents, err := w.Deposits.PendingIntents(ctx, since, w.cursor, batch)
	if err != nil {
		return 0, err
	}
	if len(intents) == 0 && w.cursor > 0 {
		w.cursor = 0
		if intents, err = w.Deposits.PendingIntents(ctx, since, 0, batch); err != nil {
			return 0, err
		}
	}
	if len(intents) < batch {
		w.cursor = 0
	} else {
		w.cursor = intents[len(intents)-1].ID
	}

	var credited atomic.Int64
	var g errgroup.Group
	g.SetLimit(max(w.Concurrency, 1))
	for i := range intents {
		intent := &intents[i]
		g.Go(func() error {
			res, err := w.Deposits.ConfirmIntent(ctx, intent)
			if err != nil {
				return err
			}
			if res.Credited.IsPositive() {
				credited.Add(1)
			}
			return nil
		})
	}
	err = g.Wait()
	return int(credited.Load()), err
}
