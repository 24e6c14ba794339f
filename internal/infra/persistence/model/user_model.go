package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel mirrors the 'users' table.
type UserModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Username       string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	Password       string    `gorm:"type:text;not null"`
	ImageURL       string    `gorm:"type:text"`
	HeaderImageURL string    `gorm:"type:text"`
	Bio            string    `gorm:"type:text"`
	Location       string    `gorm:"type:varchar(100)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// BeforeCreate assigns the primary key.
func (m *UserModel) BeforeCreate(*gorm.DB) error {
	return ensureID(&m.ID)
}
