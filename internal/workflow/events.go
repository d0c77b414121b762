package workflow

import "time"

// Event is emitted after every node completes, plus a final end event.
// Emission is synchronous and unacknowledged; event order is node order.
type Event struct {
	Node  Node      `json:"node"`
	At    time.Time `json:"at"`
	State Snapshot  `json:"state"`
}

// Sink receives progress events. The HTTP API adapts it to SSE, the CLI
// prints it, tests record it.
type Sink interface {
	Emit(event Event)
}

type SinkFunc func(Event)

func (f SinkFunc) Emit(event Event) { f(event) }
