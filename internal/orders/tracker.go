package orders

import (
	"errors"
	"sync"

	"github.com/ministore/ministore/pkg/types"
)

// State is the lifecycle stage of an open order. States only advance
// forward; a collected order leaves the tracker entirely.
type State int

const (
	// Waiting orders have been submitted and not yet picked up.
	Waiting State = iota
	// BeingPacked orders are with a packer.
	BeingPacked
	// ToBeCollected orders are packed and await the customer.
	ToBeCollected
)

// String returns the state name used in snapshots.
func (s State) String() string {
	switch s {
	case Waiting:
		return "Waiting"
	case BeingPacked:
		return "BeingPacked"
	case ToBeCollected:
		return "ToBeCollected"
	default:
		return "Unknown"
	}
}

var (
	// ErrNoOrderNum is returned when a basket is submitted without an
	// assigned order number.
	ErrNoOrderNum = errors.New("basket has no order number")
	// ErrDuplicateOrder is returned when an order number is submitted twice.
	ErrDuplicateOrder = errors.New("order number already tracked")
)

// folder pairs one submitted basket with its lifecycle state.
type folder struct {
	basket *types.Basket
	state  State
}

// Tracker is the in-memory registry of open orders. One mutex guards
// the whole table; every operation holds it for its full duration, so
// the six operations are linearizable with respect to one another.
type Tracker struct {
	mu       sync.Mutex
	folders  []*folder
	nextNum  int
	notifier *notifier
}

// NewTracker creates an empty order tracker. Order numbers start at 1
// and are scoped to the tracker's lifetime; they reset on restart.
func NewTracker() *Tracker {
	return &Tracker{nextNum: 1, notifier: newNotifier()}
}

// UniqueNumber allocates the next order number. No two calls ever
// return the same value, regardless of timing.
func (t *Tracker) UniqueNumber() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.nextNum
	t.nextNum++
	return n
}

// NewOrder registers the basket as a Waiting order. The basket must
// already carry its order number, assigned via UniqueNumber by the
// caller. The tracker never mutates a submitted basket.
func (t *Tracker) NewOrder(basket *types.Basket) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	num := basket.OrderNum()
	if num <= 0 {
		return ErrNoOrderNum
	}
	for _, f := range t.folders {
		if f.basket.OrderNum() == num {
			return ErrDuplicateOrder
		}
	}
	t.folders = append(t.folders, &folder{basket: basket, state: Waiting})
	t.notifier.publish(num, Waiting)
	return nil
}

// OrderToPack hands out the longest-waiting order, moving it to
// BeingPacked. Selection and transition happen under one lock
// acquisition, so two packers can never receive the same order. The
// second return is false when nothing is waiting.
func (t *Tracker) OrderToPack() (*types.Basket, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, f := range t.folders {
		if f.state == Waiting {
			f.state = BeingPacked
			t.notifier.publish(f.basket.OrderNum(), BeingPacked)
			return f.basket, true
		}
	}
	return nil, false
}

// InformOrderPacked moves the order from BeingPacked to ToBeCollected.
// Returns false, without mutation, if the order is absent or not
// currently BeingPacked; a lost race is a routine outcome, not an
// error.
func (t *Tracker) InformOrderPacked(orderNum int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, f := range t.folders {
		if f.basket.OrderNum() == orderNum && f.state == BeingPacked {
			f.state = ToBeCollected
			t.notifier.publish(orderNum, ToBeCollected)
			return true
		}
	}
	return false
}

// InformOrderCollected removes the order if it is ToBeCollected.
// Returns false otherwise.
func (t *Tracker) InformOrderCollected(orderNum int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, f := range t.folders {
		if f.basket.OrderNum() == orderNum && f.state == ToBeCollected {
			t.folders = append(t.folders[:i], t.folders[i+1:]...)
			t.notifier.publishCollected(orderNum)
			return true
		}
	}
	return false
}

// OrderState returns a point-in-time snapshot mapping state names to
// order numbers in submission order. The snapshot reflects one
// consistent instant.
func (t *Tracker) OrderState() map[string][]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := make(map[string][]int)
	for _, f := range t.folders {
		name := f.state.String()
		snapshot[name] = append(snapshot[name], f.basket.OrderNum())
	}
	return snapshot
}
