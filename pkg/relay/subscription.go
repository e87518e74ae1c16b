package relay

// Subscription is a cancellable handle onto a session's push stream. The
// transport (SSE or websocket) consumes Events until the channel closes,
// which happens on supersession, session expiry or Detach. A Subscription
// owns no goroutine; closing it is cheap, so rapid attach/detach cycles do
// not leak connection state.
type Subscription struct {
	sessionID string
	events    chan Event
	closed    bool
}

func (s *Subscription) SessionID() string {
	return s.sessionID
}

// Events delivers content events in enqueue order. The channel is closed
// when the subscription is no longer the session's live subscriber.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// closeLocked must only be called while holding the owning room's lock, so
// it can never race a send on the events channel.
func (s *Subscription) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}
