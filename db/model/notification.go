package model

const (
	NotificationFriendRequest   = "friend_request"
	NotificationRequestAccepted = "friend_request_accepted"
)

// Notification is owned by its recipient. Sender display fields are resolved
// by preload at read time, never copied into the row.
type Notification struct {
	Base
	RecipientID uint   `json:"recipient_id" gorm:"index"`
	SenderID    uint   `json:"sender_id"`
	Sender      *User  `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Type        string `json:"type"`
	Message     string `json:"message"`
	RelatedID   uint   `json:"related_id"`
	Read        bool   `json:"read"`
}
