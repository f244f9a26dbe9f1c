package connection

import (
	"fmt"
	"time"
)

// State is the connection lifecycle state.
type State int32

// Connection states.
const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// StatusKind identifies a human-facing status event.
type StatusKind int

// Status event kinds.
const (
	StatusConnected StatusKind = iota + 1
	StatusConnectionFailed
	StatusConnectionLost
)

// String returns the event name used in logs and on the wire.
func (k StatusKind) String() string {
	switch k {
	case StatusConnected:
		return "connected"
	case StatusConnectionFailed:
		return "connection_failed"
	case StatusConnectionLost:
		return "connection_lost"
	default:
		return fmt.Sprintf("status(%d)", int(k))
	}
}

// Status is a status event emitted by the Manager.
type Status struct {
	Kind    StatusKind
	Address string
	// Err is the transport error behind a failed or lost event, if any.
	Err error
	At  time.Time
}

// Message returns the human-facing text for the event.
func (s Status) Message() string {
	switch s.Kind {
	case StatusConnected:
		return "Connected to the server"
	case StatusConnectionFailed:
		return "Unable to connect to the server"
	case StatusConnectionLost:
		return "Connection to the server lost"
	default:
		return ""
	}
}

// StatusNotifier receives status events. Notify is called synchronously on
// the goroutine that observed the transition and must not block.
type StatusNotifier interface {
	Notify(status Status)
}

// NotifierFunc adapts a function to StatusNotifier.
type NotifierFunc func(status Status)

// Notify calls f(status).
func (f NotifierFunc) Notify(status Status) {
	f(status)
}

// Notifiers fans one event out to several notifiers in order.
type Notifiers []StatusNotifier

// Notify forwards status to every non-nil notifier.
func (n Notifiers) Notify(status Status) {
	for _, notifier := range n {
		if notifier != nil {
			notifier.Notify(status)
		}
	}
}
