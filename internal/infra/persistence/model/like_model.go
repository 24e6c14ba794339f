package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LikeModel mirrors the 'likes' table. Rows go away with their message (ON DELETE CASCADE),
// and the message repository also deletes them explicitly inside its delete transaction.
type LikeModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_message"`
	MessageID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_message;index"`
	CreatedAt time.Time

	User    *UserModel    `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	Message *MessageModel `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (LikeModel) TableName() string {
	return "likes"
}

// BeforeCreate assigns the primary key.
func (m *LikeModel) BeforeCreate(*gorm.DB) error {
	return ensureID(&m.ID)
}
