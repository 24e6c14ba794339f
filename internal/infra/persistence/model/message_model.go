package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageModel mirrors the 'messages' table.
// Text and UserID are pointers so an absent value reaches the database as NULL and trips NOT NULL.
type MessageModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Text      *string    `gorm:"type:varchar(140);not null"`
	Timestamp time.Time  `gorm:"not null;index;autoCreateTime"`
	UserID    *uuid.UUID `gorm:"type:uuid;not null;index"`

	User *UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
}

// TableName explicitly sets the table name for GORM.
func (MessageModel) TableName() string {
	return "messages"
}

// BeforeCreate assigns the primary key.
func (m *MessageModel) BeforeCreate(*gorm.DB) error {
	return ensureID(&m.ID)
}
