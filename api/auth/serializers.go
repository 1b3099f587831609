package auth

import "github.com/chatbook/chatbook-backend/db/model"

// OutUser is the account as seen by its owner: no password hash, no sessions.
type OutUser struct {
	ID          uint   `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	Displayname string `json:"displayname"`
	AvatarURL   string `json:"avatar_url"`
}

func NewOutUser(u *model.User) *OutUser {
	return &OutUser{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		Displayname: u.Displayname,
		AvatarURL:   u.AvatarURL,
	}
}
