package entity

import (
	"time"

	"github.com/google/uuid"
)

// MaxMessageLength bounds Message.Text in characters.
const MaxMessageLength = 140

// Message is a short post owned by exactly one user.
type Message struct {
	ID        uuid.UUID
	Text      string
	Timestamp time.Time // Creation time, used for most-recent-first ordering.
	UserID    uuid.UUID // Owning user. Required.
}
