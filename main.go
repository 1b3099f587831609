package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	apiauth "github.com/chatbook/chatbook-backend/api/auth"
	apifriends "github.com/chatbook/chatbook-backend/api/friends"
	apinotifs "github.com/chatbook/chatbook-backend/api/notifications"
	"github.com/chatbook/chatbook-backend/api/socket"
	"github.com/chatbook/chatbook-backend/db"
	"github.com/chatbook/chatbook-backend/env"
	"github.com/chatbook/chatbook-backend/fanout"
	"github.com/chatbook/chatbook-backend/friends"
	"github.com/chatbook/chatbook-backend/mq"
	"github.com/chatbook/chatbook-backend/notifications"
	"github.com/chatbook/chatbook-backend/server"
	"github.com/chatbook/chatbook-backend/ws"
)

func main() {
	env.MustLoad()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := db.Init(env.DB_CONN); err != nil {
		logger.WithError(err).Fatal("open database")
	}

	hub := ws.NewHub()

	bridge, err := mq.NewBridge(logger)
	if err != nil {
		logger.WithError(err).Fatal("connect nsq producer")
	}
	consumer, err := mq.RunConsumer(hub, logger)
	if err != nil {
		logger.WithError(err).Fatal("connect nsq consumer")
	}

	friendStore := friends.NewGormStore()
	friendSvc := friends.NewService(friendStore, logger)

	cache := notifications.NewCache(env.REDIS_CONN)
	notifSvc := notifications.NewService(notifications.NewGormStore(), friendStore, cache, logger)

	coordinator := fanout.New(notifSvc, bridge, fanout.NewExpoPusher(logger), logger)

	r := chi.NewRouter()
	server.SetupMiddlewares(r)

	apiauth.NewHandlers(logger).SetupRoutes(r)
	apifriends.NewHandlers(logger, friendSvc, coordinator).SetupRoutes(r)
	apinotifs.NewHandlers(logger, notifSvc).SetupRoutes(r)
	socket.NewHandlers(logger, hub).SetupRoutes(r)
	r.Handle("/metrics", promhttp.Handler())

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		consumer.Stop()
		bridge.Stop()
		hub.Close()
		cache.Close()
		logger.Info("quit")
		os.Exit(0)
	}()

	srv := server.New(r)
	logger.WithField("port", env.APP_PORT).Info("listening")
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal(err)
	}
}
