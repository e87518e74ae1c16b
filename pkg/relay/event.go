package relay

import (
	"github.com/beamdrop/beamdrop/pkg/domain/content"
)

type EventType string

const (
	EventTypeContent   EventType = "content"
	EventTypeHeartbeat EventType = "heartbeat"
)

// Event is the wire shape pushed to a subscriber stream, both over SSE and
// over websocket. Heartbeat events carry only the type.
type Event struct {
	Type        EventType    `json:"type"`
	ContentType content.Kind `json:"contentType,omitempty"`
	Content     string       `json:"content,omitempty"`
}

func HeartbeatEvent() Event {
	return Event{Type: EventTypeHeartbeat}
}

func contentEvent(item *content.Item) Event {
	return Event{
		Type:        EventTypeContent,
		ContentType: item.Kind,
		Content:     item.Payload,
	}
}
