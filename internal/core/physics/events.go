package physics

// CollisionHappened is spec.md §6's event: delivered synchronously during
// step, between detect and solve, carrying a snapshot of both colliders at
// the moment of contact.
type CollisionHappened struct {
	A, B    Collider
	Contact Contact
}

// EventSink receives physics events. Handlers must be read-only with
// respect to the physics world — the driver does not guard against a
// handler mutating World concurrently, per spec.md §4.8's fire-and-forget
// contract.
type EventSink interface {
	Publish(event CollisionHappened)
}

// NoopSink discards every event, for callers that don't need gameplay
// notification (tests, headless simulation).
type NoopSink struct{}

// Publish implements EventSink.
func (NoopSink) Publish(CollisionHappened) {}

// ChannelSink publishes onto a buffered channel, for a gameplay loop that
// wants to drain collision events on its own schedule after step returns.
// Publish drops the event rather than blocking if the channel is full,
// matching the fire-and-forget contract.
type ChannelSink struct {
	Events chan CollisionHappened
}

// NewChannelSink creates a sink with the given channel buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{Events: make(chan CollisionHappened, buffer)}
}

// Publish implements EventSink.
func (s *ChannelSink) Publish(event CollisionHappened) {
	select {
	case s.Events <- event:
	default:
	}
}
