package friends

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/chatbook/chatbook-backend/db"
	"github.com/chatbook/chatbook-backend/db/model"
)

// GormStore is the postgres implementation of Store. AcceptRequest runs both
// sides of the mutation in a single transaction, so a crash never leaves an
// asymmetric friendship.
type GormStore struct{}

func NewGormStore() *GormStore {
	return &GormStore{}
}

func (s *GormStore) UserExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := db.GetDB(ctx).Model(&model.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := db.GetDB(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	var count int64
	err := db.GetDB(ctx).Model(&model.Friendship{}).
		Where("user_id = ? AND friend_id = ?", a, b).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) HasRequest(ctx context.Context, from, to uint) (bool, error) {
	var count int64
	err := db.GetDB(ctx).Model(&model.FriendRequest{}).
		Where("sender_id = ? AND recipient_id = ?", from, to).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) CreateRequest(ctx context.Context, from, to uint) error {
	return db.GetDB(ctx).Create(&model.FriendRequest{SenderID: from, RecipientID: to}).Error
}

func (s *GormStore) DeleteRequest(ctx context.Context, from, to uint) error {
	return db.GetDB(ctx).
		Where("sender_id = ? AND recipient_id = ?", from, to).
		Delete(&model.FriendRequest{}).Error
}

func (s *GormStore) AcceptRequest(ctx context.Context, from, to uint) error {
	return db.GetDB(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("sender_id = ? AND recipient_id = ?", from, to).
			Delete(&model.FriendRequest{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoSuchRequest
		}
		if err := tx.Create(&model.Friendship{UserID: from, FriendID: to}).Error; err != nil {
			return err
		}
		return tx.Create(&model.Friendship{UserID: to, FriendID: from}).Error
	})
}

func (s *GormStore) Friends(ctx context.Context, id uint) ([]uint, error) {
	var ids []uint
	err := db.GetDB(ctx).Model(&model.Friendship{}).
		Where("user_id = ?", id).
		Pluck("friend_id", &ids).Error
	return ids, err
}

func (s *GormStore) Incoming(ctx context.Context, id uint) ([]uint, error) {
	var ids []uint
	err := db.GetDB(ctx).Model(&model.FriendRequest{}).
		Where("recipient_id = ?", id).
		Pluck("sender_id", &ids).Error
	return ids, err
}

func (s *GormStore) Outgoing(ctx context.Context, id uint) ([]uint, error) {
	var ids []uint
	err := db.GetDB(ctx).Model(&model.FriendRequest{}).
		Where("sender_id = ?", id).
		Pluck("recipient_id", &ids).Error
	return ids, err
}

func (s *GormStore) Suggestions(ctx context.Context, viewer uint) ([]Suggestion, error) {
	var users []model.User
	if err := db.GetDB(ctx).Where("id <> ?", viewer).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	outgoing, err := s.Outgoing(ctx, viewer)
	if err != nil {
		return nil, err
	}
	sent := make(map[uint]bool, len(outgoing))
	for _, id := range outgoing {
		sent[id] = true
	}
	sugs := make([]Suggestion, 0, len(users))
	for _, u := range users {
		sugs = append(sugs, Suggestion{User: u, RequestSent: sent[u.ID]})
	}
	return sugs, nil
}
