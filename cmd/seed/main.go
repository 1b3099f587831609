package main

import (
	"context"
	"flag"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/chatbook/chatbook-backend/db"
	"github.com/chatbook/chatbook-backend/db/model"
	"github.com/chatbook/chatbook-backend/env"
)

// Seeds the database with fake accounts for local development. Every account
// gets the password "password".
func main() {
	count := flag.Int("n", 25, "number of accounts to create")
	flag.Parse()

	env.MustLoad()
	logger := logrus.New()

	if err := db.Init(env.DB_CONN); err != nil {
		logger.WithError(err).Fatal("open database")
	}
	pass, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal(err)
	}

	ctx := context.Background()
	for i := 0; i < *count; i++ {
		u := &model.User{
			Email:       gofakeit.Email(),
			Username:    gofakeit.Username(),
			Displayname: gofakeit.Name(),
			Pass:        string(pass),
			AvatarURL:   gofakeit.ImageURL(256, 256),
		}
		if err := db.GetDB(ctx).Create(u).Error; err != nil {
			logger.WithError(err).Warn("skip user")
			continue
		}
		logger.WithFields(logrus.Fields{"id": u.ID, "username": u.Username}).Info("seeded")
	}
}
