// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User is an account that posts messages, follows other users and likes messages.
type User struct {
	ID             uuid.UUID // The Global Unique Identifier (GUID) for the user.
	Email          string    // Unique contact email.
	Username       string    // Unique handle used to log in.
	Password       string    // One-way hash of the user's password, never the plaintext.
	ImageURL       string    // Profile picture, a placeholder when the user never set one.
	HeaderImageURL string    // Profile header picture.
	Bio            string
	Location       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// String renders the user as "<User #id: username, email>".
func (u *User) String() string {
	return fmt.Sprintf("<User #%s: %s, %s>", u.ID, u.Username, u.Email)
}
