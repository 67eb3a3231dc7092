package pipeline

// EventType identifies a progress notification.
type EventType string

const (
	EventItemSucceeded EventType = "item_succeeded"
	EventItemFailed    EventType = "item_failed"
	EventItemCancelled EventType = "item_cancelled"
	EventRunFinished   EventType = "run_finished"
)

// Counters are the aggregate per-run tallies carried on every event.
type Counters struct {
	Total     int
	Succeeded int
	Failed    int
	Cancelled int
}

// Remaining returns the number of items without a terminal outcome yet.
func (c Counters) Remaining() int {
	return c.Total - c.Succeeded - c.Failed - c.Cancelled
}

// Event is one progress notification. Item events are emitted after every
// terminal item transition; the run event once the run reaches a terminal
// state. This is the only channel through which the UI layer observes
// progress.
type Event struct {
	Type     EventType
	RunID    string
	ItemID   string
	Filename string
	Attempts int
	Err      string // error reason for failed items
	Counters Counters
}

// Observer receives progress events. Notify may be called concurrently from
// worker goroutines; implementations must be safe for concurrent use.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Notify implements Observer.
func (f ObserverFunc) Notify(ev Event) {
	f(ev)
}
