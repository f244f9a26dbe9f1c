// Package connection owns the persistent WebSocket connection to the remote
// feedback source.
//
// The Manager moves between three states:
//
//	Disconnected --Connect--> Connecting --ok--> Connected
//	                              |                  |
//	                              +--fail--> Disconnected <--Disconnect/drop
//
// There is no automatic reconnection. FailedAttempts exposes the number of
// consecutive failed connects (reset on success) for a caller that wants to
// implement its own retry policy.
//
// # Data flow
//
// One read pump per connection decodes every inbound frame with the protocol
// codec and applies it to the feedback sink, strictly in arrival order. It is
// the only writer into the store. Frames from a connection that has since
// been closed or replaced are discarded, and Disconnect does not return
// while such a frame is being applied.
//
// SendCommand encodes and writes one command when connected and returns
// false otherwise. Nothing is queued while offline.
//
// # Status events
//
// A StatusNotifier receives the three human-facing events: connected,
// connection failed (dial error) and connection lost (a live session ended,
// including a non-silent Disconnect). Disconnect(true) suppresses the lost
// event; Connect closes any previous connection silently.
//
// Thread Safety: All methods are safe for concurrent use. Store callbacks
// and notifiers must not call Connect or Disconnect synchronously.
package connection
