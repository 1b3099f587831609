package fanout

import (
	"context"

	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	"github.com/sirupsen/logrus"

	"github.com/chatbook/chatbook-backend/db"
	"github.com/chatbook/chatbook-backend/db/model"
)

// ExpoPusher sends a device push to every session of the recipient that
// registered an Expo token at signin. Every failure is logged and swallowed;
// the notification record is already durable by the time Push runs.
type ExpoPusher struct {
	client *expo.PushClient
	logger *logrus.Logger
}

func NewExpoPusher(logger *logrus.Logger) *ExpoPusher {
	return &ExpoPusher{client: expo.NewPushClient(nil), logger: logger}
}

func (p *ExpoPusher) Push(ctx context.Context, userID uint, title, body string) {
	var sessions []model.Session
	err := db.GetDB(ctx).
		Where("user_id = ? AND expo_push_token <> ''", userID).
		Find(&sessions).Error
	if err != nil {
		p.logger.WithError(err).Warn("load push sessions")
		return
	}
	for _, s := range sessions {
		token, err := expo.NewExponentPushToken(s.ExpoPushToken)
		if err != nil {
			continue
		}
		resp, err := p.client.Publish(&expo.PushMessage{
			To:       []expo.ExponentPushToken{token},
			Title:    title,
			Body:     body,
			Sound:    "default",
			Priority: expo.DefaultPriority,
		})
		if err != nil {
			p.logger.WithError(err).Warn("expo publish")
			continue
		}
		if err := resp.ValidateResponse(); err != nil {
			p.logger.WithError(err).WithField("user_id", userID).Warn("expo push rejected")
		}
	}
}
