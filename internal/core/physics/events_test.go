package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ChannelSink_PublishDeliversEvent(t *testing.T) {
	sink := NewChannelSink(1)
	event := CollisionHappened{A: Collider{Handle: Handle{Index: 1, Generation: 1}}}

	sink.Publish(event)

	select {
	case got := <-sink.Events:
		assert.Equal(t, event.A.Handle, got.A.Handle)
	default:
		t.Fatal("expected buffered event")
	}
}

func Test_ChannelSink_PublishDropsWhenFull(t *testing.T) {
	sink := NewChannelSink(1)
	sink.Publish(CollisionHappened{})
	sink.Publish(CollisionHappened{}) // dropped, not blocked

	assert.NotPanics(t, func() {
		sink.Publish(CollisionHappened{})
	})
}

func Test_NoopSink_DoesNothing(t *testing.T) {
	assert.NotPanics(t, func() {
		NoopSink{}.Publish(CollisionHappened{})
	})
}
