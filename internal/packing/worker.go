package packing

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ministore/ministore/internal/orders"
	"github.com/ministore/ministore/pkg/types"
)

// PackFunc does the physical packing of one basket: picking the goods,
// boxing them, printing the docket. It runs outside the tracker's lock.
type PackFunc func(basket *types.Basket) error

// DefaultPollInterval is how long an idle worker sleeps between looks
// at the order queue.
const DefaultPollInterval = 100 * time.Millisecond

// Worker drains the order tracker: it claims the oldest waiting order,
// packs it, and reports it packed.
type Worker struct {
	tracker *orders.Tracker
	pack    PackFunc
	poll    time.Duration
}

// NewWorker creates a packing worker. A nil pack function packs
// instantly.
func NewWorker(tracker *orders.Tracker, pack PackFunc) *Worker {
	if pack == nil {
		pack = func(*types.Basket) error { return nil }
	}
	return &Worker{tracker: tracker, pack: pack, poll: DefaultPollInterval}
}

// SetPollInterval overrides the idle polling interval.
func (w *Worker) SetPollInterval(d time.Duration) {
	w.poll = d
}

// PackOne claims and packs a single waiting order. Returns false when
// nothing was waiting.
func (w *Worker) PackOne(ctx context.Context) (bool, error) {
	basket, ok := w.tracker.OrderToPack()
	if !ok {
		return false, nil
	}

	num := basket.OrderNum()
	if err := w.pack(basket); err != nil {
		return false, fmt.Errorf("pack order %d: %w", num, err)
	}
	// The order can only be in BeingPacked here, and this worker is the
	// only one holding it, so the transition cannot lose a race.
	if !w.tracker.InformOrderPacked(num) {
		return false, fmt.Errorf("pack order %d: unexpected state", num)
	}
	return true, nil
}

// Run polls the tracker until the context is cancelled, packing orders
// as they arrive.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		// Drain everything currently waiting before going idle.
		for {
			packed, err := w.PackOne(ctx)
			if err != nil {
				return err
			}
			if !packed {
				break
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunPool runs n workers sharing one tracker until the context is
// cancelled or a worker fails.
func RunPool(ctx context.Context, tracker *orders.Tracker, pack PackFunc, n int) error {
	if n < 1 {
		n = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		w := NewWorker(tracker, pack)
		g.Go(func() error {
			return w.Run(gctx)
		})
	}
	return g.Wait()
}
