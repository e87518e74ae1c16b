package relay

import (
	"errors"
	"sync"

	"github.com/beamdrop/beamdrop/pkg/domain/content"
	"github.com/beamdrop/beamdrop/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

var ErrQueueFull = errors.New("relay queue is full")

// subscriptionSlack is extra capacity on top of the queue depth so a freshly
// attached subscriber can absorb the drained backlog plus live pushes.
const subscriptionSlack = 16

// room holds the per-session relay state: the ordered buffer of undelivered
// items and the at-most-one live subscriber slot. Each room has its own lock
// so unrelated sessions never serialize on each other.
type room struct {
	mu    sync.Mutex
	queue []*content.Item
	sub   *Subscription
}

// Hub is the relay core shared by all sessions. Submissions are
// fire-and-forget with respect to delivery: Enqueue never blocks on a
// subscriber stream.
type Hub struct {
	logger     *logrus.Logger
	queueDepth int

	mu    sync.RWMutex
	rooms map[string]*room
}

func NewHub(logger *logrus.Logger, queueDepth int) *Hub {
	return &Hub{
		logger:     logger,
		queueDepth: queueDepth,
		rooms:      make(map[string]*room),
	}
}

func (h *Hub) room(sessionID string, create bool) *room {
	h.mu.RLock()
	r, ok := h.rooms[sessionID]
	h.mu.RUnlock()
	if ok || !create {
		return r
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[sessionID]; ok {
		return r
	}
	r = &room{}
	h.rooms[sessionID] = r
	return r
}

// Enqueue appends an item to the session's queue and immediately pushes it
// to the live subscriber, if any. A subscriber that cannot keep up is
// treated as a failed transport: its stream is closed and the item stays
// queued for the next attach.
func (h *Hub) Enqueue(item *content.Item) error {
	r := h.room(item.SessionID, true)
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sub != nil {
		select {
		case r.sub.events <- contentEvent(item):
			prometheus.ItemsRelayedTotal.WithLabelValues(string(item.Kind)).Inc()
			return nil
		default:
			h.logger.WithField("session_id", item.SessionID).
				Warn("subscriber stream saturated, closing it")
			h.closeSubscriberLocked(r)
		}
	}

	if len(r.queue) >= h.queueDepth {
		return ErrQueueFull
	}
	r.queue = append(r.queue, item)
	prometheus.ItemsRelayedTotal.WithLabelValues(string(item.Kind)).Inc()
	return nil
}

// Attach registers a new subscriber for the session, superseding any prior
// one (last attacher wins). Items buffered since the last subscriber
// detached are drained into the new subscription in enqueue order before
// live forwarding resumes.
func (h *Hub) Attach(sessionID string) *Subscription {
	r := h.room(sessionID, true)
	r.mu.Lock()
	defer r.mu.Unlock()

	h.closeSubscriberLocked(r)

	sub := &Subscription{
		sessionID: sessionID,
		events:    make(chan Event, h.queueDepth+subscriptionSlack),
	}
	for _, item := range r.queue {
		sub.events <- contentEvent(item)
	}
	r.queue = nil
	r.sub = sub
	prometheus.StreamsOpen.Inc()
	return sub
}

// Detach releases the subscriber slot if sub is still the session's live
// subscriber. It is idempotent and safe to call after supersession.
func (h *Hub) Detach(sub *Subscription) {
	r := h.room(sub.SessionID(), false)
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sub == sub {
		h.closeSubscriberLocked(r)
	}
}

// DropSession closes any live subscriber, discards the queue and removes
// the room. Called on session expiry.
func (h *Hub) DropSession(sessionID string) {
	h.mu.Lock()
	r, ok := h.rooms[sessionID]
	if ok {
		delete(h.rooms, sessionID)
	}
	h.mu.Unlock()
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	h.closeSubscriberLocked(r)
	r.queue = nil
}

// Sessions returns the ids of every session with relay state, for the
// lifecycle sweeper.
func (h *Hub) Sessions() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.rooms))
	for id := range h.rooms {
		ids = append(ids, id)
	}
	return ids
}

func (h *Hub) closeSubscriberLocked(r *room) {
	if r.sub == nil {
		return
	}
	r.sub.closeLocked()
	r.sub = nil
	prometheus.StreamsOpen.Dec()
}
