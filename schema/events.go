package schema

import "time"

// RelayEventType identifies a relay lifecycle event.
type RelayEventType string

const (
	// EventForwarded indicates a candidate was accepted and sent to the backend.
	EventForwarded RelayEventType = "forwarded"
	// EventReply indicates a backend answer was assembled.
	EventReply RelayEventType = "reply"
	// EventInjected indicates the reply was written and the send control activated.
	EventInjected RelayEventType = "injected"
	// EventThrottled indicates an injection attempt was dropped by the throttle.
	EventThrottled RelayEventType = "throttled"
	// EventExpired indicates the poll budget ran out without an answer.
	EventExpired RelayEventType = "expired"
	// EventDiscarded indicates a reply was discarded because the foreground
	// conversation changed while the cycle was in flight.
	EventDiscarded RelayEventType = "discarded"
	// EventFailed indicates a transport or injection failure ended the cycle.
	EventFailed RelayEventType = "failed"
)

// RelayEvent describes one step of a relay cycle for observers. Events are
// immutable values; the engine never hands out shared state.
type RelayEvent struct {
	Type       RelayEventType
	At         time.Time
	Group      string
	Sender     string
	Content    string
	Text       string
	References []string
	Detail     string
}
