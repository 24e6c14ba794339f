// Package model holds the gorm persistence models. Domain entities never carry gorm tags;
// repositories map between the two.
package model

import "github.com/google/uuid"

// AllModels lists every model in dependency order for AutoMigrate.
func AllModels() []any {
	return []any{
		&UserModel{},
		&MessageModel{},
		&FollowModel{},
		&LikeModel{},
	}
}

// ensureID assigns a time-ordered UUID when the caller left id unset.
func ensureID(id *uuid.UUID) error {
	if *id != uuid.Nil {
		return nil
	}

	generated, err := uuid.NewV7()
	if err != nil {
		return err
	}
	*id = generated

	return nil
}
