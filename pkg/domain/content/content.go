package content

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindText Kind = "text"
	KindLink Kind = "link"
)

// Item is a single piece of relayed content. The kind is computed once at
// creation and never changes. Items do not outlive their session.
type Item struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Payload    string    `json:"payload"`
	Kind       Kind      `json:"kind"`
	ReceivedAt time.Time `json:"received_at"`
}

func NewItem(sessionID, payload string) *Item {
	return &Item{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Payload:    payload,
		Kind:       Classify(payload),
		ReceivedAt: time.Now(),
	}
}
