package mq

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/nsqio/go-nsq"
	"github.com/sirupsen/logrus"

	"github.com/chatbook/chatbook-backend/env"
	"github.com/chatbook/chatbook-backend/ws"
)

// TopicNotifications carries one message per persisted notification. Every
// server instance consumes the full stream on its own ephemeral channel and
// forwards to whatever connections it holds locally, so a publish reaches a
// user no matter which instance their socket landed on.
const TopicNotifications = "notifications"

type busEvent struct {
	ID          string          `json:"id"`
	RecipientID uint            `json:"recipient_id"`
	Payload     json.RawMessage `json:"payload"`
}

// Bridge implements the fanout bus over NSQ.
type Bridge struct {
	producer *nsq.Producer
	logger   *logrus.Logger
}

func NewBridge(logger *logrus.Logger) (*Bridge, error) {
	p, err := nsq.NewProducer(env.NSQD_TCP_ADDR, nsq.NewConfig())
	if err != nil {
		return nil, err
	}
	return &Bridge{producer: p, logger: logger}, nil
}

// Publish is best-effort: the notification record is already durable, so a
// failed publish is logged and dropped, never retried.
func (b *Bridge) Publish(userID uint, message []byte) {
	ev := busEvent{ID: uuid.NewString(), RecipientID: userID, Payload: message}
	body, err := json.Marshal(ev)
	if err != nil {
		b.logger.WithError(err).Error("encode bus event")
		return
	}
	if err := b.producer.Publish(TopicNotifications, body); err != nil {
		b.logger.WithError(err).Warn("nsq publish")
	}
}

func (b *Bridge) Stop() {
	b.producer.Stop()
}

// RunConsumer subscribes this instance to the notification stream and feeds
// the local hub. The channel is ephemeral: nothing is buffered for instances
// that are down, matching the at-most-once contract of the bus.
func RunConsumer(hub *ws.Hub, logger *logrus.Logger) (*nsq.Consumer, error) {
	consumer, err := nsq.NewConsumer(TopicNotifications, env.SERVER_ID+"#ephemeral", nsq.NewConfig())
	if err != nil {
		return nil, err
	}
	consumer.AddHandler(nsq.HandlerFunc(func(m *nsq.Message) error {
		var ev busEvent
		if err := json.Unmarshal(m.Body, &ev); err != nil {
			logger.WithError(err).Warn("decode bus event")
			return nil // malformed, never requeue
		}
		hub.Publish(ev.RecipientID, ev.Payload)
		return nil
	}))
	if err := consumer.ConnectToNSQLookupd(env.NSQLOOKUPD_ADDR); err != nil {
		consumer.Stop()
		return nil, err
	}
	return consumer, nil
}
