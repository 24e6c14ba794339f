package entity

import "github.com/google/uuid"

// Like records that UserID endorsed MessageID. A like never outlives its message.
type Like struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	MessageID uuid.UUID
}
