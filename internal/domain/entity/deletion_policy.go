package entity

// DeletionPolicy decides what happens to a user's messages, follows and likes when the user is deleted.
type DeletionPolicy string

const (
	// DeletionPolicyCascade removes every dependent row together with the user.
	DeletionPolicyCascade DeletionPolicy = "cascade"
	// DeletionPolicyRestrict refuses to delete a user that still has dependent rows.
	DeletionPolicyRestrict DeletionPolicy = "restrict"
)

// IsValid reports whether p is a known policy.
func (p DeletionPolicy) IsValid() bool {
	switch p {
	case DeletionPolicyCascade, DeletionPolicyRestrict:
		return true
	default:
		return false
	}
}
