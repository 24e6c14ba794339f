// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher defines the interface for password hashing and verification.
// This abstracts the underlying hashing algorithm (e.g., bcrypt), keeping the domain pure.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Verify compares a plaintext password with a stored hash.
	// A mismatch is (false, nil). A hash the algorithm cannot read is (false, ErrValidationFailed).
	Verify(password, hash string) (bool, error)

	// ValidatePasswordStrength checks the password against the configured policy.
	ValidatePasswordStrength(password string) error
}
