package relay

import (
	"fmt"
	"testing"

	"github.com/beamdrop/beamdrop/pkg/domain/content"
	"github.com/beamdrop/beamdrop/pkg/infra/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(queueDepth int) *Hub {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewHub(logger, queueDepth)
}

func collectEvents(sub *Subscription, n int) []Event {
	events := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, <-sub.Events())
	}
	return events
}

func TestHubBuffersUntilAttach(t *testing.T) {
	hub := newTestHub(16)

	for i := 0; i < 5; i++ {
		item := content.NewItem("s1", fmt.Sprintf("item-%d", i))
		require.NoError(t, hub.Enqueue(item))
	}

	sub := hub.Attach("s1")
	events := collectEvents(sub, 5)

	for i, ev := range events {
		assert.Equal(t, EventTypeContent, ev.Type)
		assert.Equal(t, fmt.Sprintf("item-%d", i), ev.Content)
	}

	// Exactly once: nothing left pending.
	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected extra event: %+v", ev)
	default:
	}
}

func TestHubLivePushWhileAttached(t *testing.T) {
	hub := newTestHub(16)
	sub := hub.Attach("s1")

	require.NoError(t, hub.Enqueue(content.NewItem("s1", "https://a.co")))
	require.NoError(t, hub.Enqueue(content.NewItem("s1", "notes")))

	events := collectEvents(sub, 2)
	assert.Equal(t, content.KindLink, events[0].ContentType)
	assert.Equal(t, "https://a.co", events[0].Content)
	assert.Equal(t, content.KindText, events[1].ContentType)
	assert.Equal(t, "notes", events[1].Content)
}

func TestHubLastAttacherWins(t *testing.T) {
	hub := newTestHub(16)

	subA := hub.Attach("s1")
	subB := hub.Attach("s1")

	// A's channel closes without receiving items submitted after B attached.
	_, ok := <-subA.Events()
	assert.False(t, ok, "superseded subscription must be closed")

	require.NoError(t, hub.Enqueue(content.NewItem("s1", "for-b")))
	ev := <-subB.Events()
	assert.Equal(t, "for-b", ev.Content)
}

func TestHubDetachKeepsLaterItemsQueued(t *testing.T) {
	hub := newTestHub(16)

	sub := hub.Attach("s1")
	hub.Detach(sub)
	_, ok := <-sub.Events()
	assert.False(t, ok)

	// Detach is idempotent, including after supersession.
	hub.Detach(sub)

	require.NoError(t, hub.Enqueue(content.NewItem("s1", "queued")))
	next := hub.Attach("s1")
	ev := <-next.Events()
	assert.Equal(t, "queued", ev.Content)
}

func TestHubQueueDepthCap(t *testing.T) {
	hub := newTestHub(2)

	require.NoError(t, hub.Enqueue(content.NewItem("s1", "one")))
	require.NoError(t, hub.Enqueue(content.NewItem("s1", "two")))

	err := hub.Enqueue(content.NewItem("s1", "three"))
	assert.ErrorIs(t, err, ErrQueueFull)

	// Other sessions are unaffected.
	assert.NoError(t, hub.Enqueue(content.NewItem("s2", "fine")))
}

func TestHubSlowSubscriberIsClosed(t *testing.T) {
	hub := newTestHub(1)
	sub := hub.Attach("s1")

	// Fill the subscription buffer without consuming.
	for i := 0; i < 1+subscriptionSlack; i++ {
		require.NoError(t, hub.Enqueue(content.NewItem("s1", "fill")))
	}

	// The next push cannot be delivered: the stream is closed and the item
	// stays queued for the next attach.
	require.NoError(t, hub.Enqueue(content.NewItem("s1", "retained")))

	drained := collectEvents(sub, 1+subscriptionSlack)
	assert.Len(t, drained, 1+subscriptionSlack)
	_, ok := <-sub.Events()
	assert.False(t, ok, "saturated subscription must be closed")

	next := hub.Attach("s1")
	ev := <-next.Events()
	assert.Equal(t, "retained", ev.Content)
}

func TestHubCountsItemsNotStreamEvents(t *testing.T) {
	hub := newTestHub(16)

	itemsBefore := testutil.ToFloat64(prometheus.ItemsRelayedTotal.WithLabelValues("text"))
	eventsBefore := testutil.ToFloat64(prometheus.StreamEventsTotal.WithLabelValues("content"))

	require.NoError(t, hub.Enqueue(content.NewItem("s1", "buffered")))
	sub := hub.Attach("s1")
	require.NoError(t, hub.Enqueue(content.NewItem("s1", "live")))
	collectEvents(sub, 2)

	// Each item counts once regardless of the delivery path; stream events
	// are counted by the transports at write time, not here.
	assert.Equal(t, itemsBefore+2,
		testutil.ToFloat64(prometheus.ItemsRelayedTotal.WithLabelValues("text")))
	assert.Equal(t, eventsBefore,
		testutil.ToFloat64(prometheus.StreamEventsTotal.WithLabelValues("content")))
}

func TestHubDropSession(t *testing.T) {
	hub := newTestHub(16)

	sub := hub.Attach("s1")
	require.NoError(t, hub.Enqueue(content.NewItem("s2", "orphan")))

	assert.ElementsMatch(t, []string{"s1", "s2"}, hub.Sessions())

	hub.DropSession("s1")
	hub.DropSession("s2")
	hub.DropSession("never-existed")

	_, ok := <-sub.Events()
	assert.False(t, ok, "dropping a session closes its subscriber")
	assert.Empty(t, hub.Sessions())

	// Queue is discarded with the room.
	next := hub.Attach("s2")
	select {
	case ev := <-next.Events():
		t.Fatalf("unexpected event after drop: %+v", ev)
	default:
	}
}
