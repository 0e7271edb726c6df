// Package pubsub fans typed events out to subscribers. It carries log entries
// to live viewers and catalog reload notices to the serve command.
package pubsub

import "time"

// EventType names what happened.
type EventType string

const (
	CreatedEvent  EventType = "created"
	ReloadedEvent EventType = "reloaded"
	FailedEvent   EventType = "failed"
)

// Event is one published payload. Seq increases by one per Publish on the
// same broker, starting at 1, so it can serve as an SSE event id.
type Event[T any] struct {
	Seq       uint64
	Type      EventType
	Payload   T
	Timestamp time.Time
}
