package fanout

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/chatbook/chatbook-backend/db/model"
	"github.com/chatbook/chatbook-backend/friends"
	"github.com/chatbook/chatbook-backend/notifications"
)

// EventNewNotification is the envelope name clients listen for.
const EventNewNotification = "new-notification"

// Bus is the realtime side of the fanout. ws.Hub satisfies it for a single
// instance; mq.Bridge satisfies it when events must reach every instance.
type Bus interface {
	Publish(userID uint, message []byte)
}

// Pusher delivers a device push for recipients who may hold no live
// connection anywhere. Implementations must be best-effort and non-blocking
// on failure.
type Pusher interface {
	Push(ctx context.Context, userID uint, title, body string)
}

type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Coordinator glues protocol events to the notification log and the realtime
// bus. It owns no state. The order is fixed: persist first, publish second,
// so a client that misses the publish can always recover the event by
// listing its notifications.
type Coordinator struct {
	notifs *notifications.Service
	bus    Bus
	pusher Pusher
	logger *logrus.Logger
}

func New(notifs *notifications.Service, bus Bus, pusher Pusher, logger *logrus.Logger) *Coordinator {
	return &Coordinator{notifs: notifs, bus: bus, pusher: pusher, logger: logger}
}

// Dispatch persists the notification for ev and then pushes it to the
// recipient's channel. A persist failure aborts the chain; publish and push
// failures are swallowed.
func (c *Coordinator) Dispatch(ctx context.Context, ev *friends.Event) (*model.Notification, error) {
	n, err := c.notifs.Create(ctx, notifications.CreateParams{
		RecipientID: ev.RecipientID,
		SenderID:    ev.SenderID,
		Type:        ev.Type,
		RelatedID:   ev.SenderID,
	})
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(Envelope{Event: EventNewNotification, Data: n})
	if err != nil {
		c.logger.WithError(err).Error("encode notification event")
	} else {
		c.bus.Publish(ev.RecipientID, payload)
	}

	if c.pusher != nil {
		c.pusher.Push(ctx, ev.RecipientID, "Chatbook", n.Message)
	}
	return n, nil
}
