package orders

import (
	"time"

	"github.com/google/uuid"
)

// Event records one lifecycle transition of an order. Collected orders
// are reported with Collected=true and no state.
type Event struct {
	ID        string // unique per event
	OrderNum  int
	State     State
	Collected bool
	At        time.Time
}

// eventBuffer bounds the feed; a consumer that falls this far behind
// starts losing events rather than stalling the tracker.
const eventBuffer = 64

// notifier fans lifecycle transitions out to the event feed. Publishing
// never blocks: the tracker's critical sections must stay short, so a
// full buffer drops the event.
type notifier struct {
	events chan Event
}

func newNotifier() *notifier {
	return &notifier{events: make(chan Event, eventBuffer)}
}

func (n *notifier) publish(orderNum int, state State) {
	n.send(Event{
		ID:       uuid.New().String(),
		OrderNum: orderNum,
		State:    state,
		At:       time.Now(),
	})
}

func (n *notifier) publishCollected(orderNum int) {
	n.send(Event{
		ID:        uuid.New().String(),
		OrderNum:  orderNum,
		Collected: true,
		At:        time.Now(),
	})
}

func (n *notifier) send(e Event) {
	select {
	case n.events <- e:
	default:
		// Slow consumer; drop rather than block order processing.
	}
}

// Events exposes the tracker's lifecycle feed. The view layer (or any
// other observer) ranges over this channel instead of the tracker
// pushing into it; the tracker itself only returns results.
func (t *Tracker) Events() <-chan Event {
	return t.notifier.events
}
