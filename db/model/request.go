package model

import "time"

// FriendRequest is a directed pending edge: SenderID asked RecipientID.
// At most one row may exist for an unordered pair, in either direction;
// the request service enforces that under its pair lock.
type FriendRequest struct {
	SenderID    uint      `json:"sender_id" gorm:"primaryKey;autoIncrement:false"`
	RecipientID uint      `json:"recipient_id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt   time.Time `json:"created_at"`
}
