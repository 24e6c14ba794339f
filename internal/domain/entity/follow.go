package entity

import "github.com/google/uuid"

// Follow is a directed edge: FollowingID follows FollowedID.
// The pair is the identity of the edge; there is no separate id.
type Follow struct {
	FollowedID  uuid.UUID // user_being_followed_id
	FollowingID uuid.UUID // user_following_id
}
