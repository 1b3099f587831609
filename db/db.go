package db

import (
	"context"

	"github.com/chatbook/chatbook-backend/db/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

// Init opens the postgres connection and migrates the schema. Must be called
// once from main after env.MustLoad; GetDB panics before that.
func Init(conn string) error {
	var err error
	db, err = gorm.Open(postgres.Open(conn), &gorm.Config{})
	if err != nil {
		return err
	}
	return db.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.FriendRequest{},
		&model.Friendship{},
		&model.Notification{},
	)
}

func GetDB(ctx context.Context) *gorm.DB {
	return db.WithContext(ctx)
}
