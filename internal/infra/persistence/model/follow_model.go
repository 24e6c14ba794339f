package model

import (
	"time"

	"github.com/google/uuid"
)

// FollowModel mirrors the 'follows' association table. The pair of user ids is the primary key.
type FollowModel struct {
	UserBeingFollowedID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserFollowingID     uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt           time.Time

	Followed  *UserModel `gorm:"foreignKey:UserBeingFollowedID;constraint:OnDelete:RESTRICT"`
	Following *UserModel `gorm:"foreignKey:UserFollowingID;constraint:OnDelete:RESTRICT"`
}

// TableName explicitly sets the table name for GORM.
func (FollowModel) TableName() string {
	return "follows"
}
