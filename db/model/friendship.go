package model

import "time"

// Friendship rows are stored in both directions: accepting a request inserts
// (a,b) and (b,a) in one transaction, so "friends of u" is a single scan on
// user_id and the symmetry invariant is a row-pair invariant.
type Friendship struct {
	UserID    uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	FriendID  uint      `json:"friend_id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `json:"created_at"`
}
