package friends

import (
	friendsvc "github.com/chatbook/chatbook-backend/friends"
)

// OutSuggestion strips sensitive account fields from a suggestion candidate.
type OutSuggestion struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Displayname string `json:"displayname"`
	AvatarURL   string `json:"avatar_url"`
	RequestSent bool   `json:"request_sent"`
}

func NewOutSuggestion(s friendsvc.Suggestion) OutSuggestion {
	return OutSuggestion{
		ID:          s.User.ID,
		Username:    s.User.Username,
		Displayname: s.User.Displayname,
		AvatarURL:   s.User.AvatarURL,
		RequestSent: s.RequestSent,
	}
}
