package notifications

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/chatbook/chatbook-backend/db"
	"github.com/chatbook/chatbook-backend/db/model"
)

type GormStore struct{}

func NewGormStore() *GormStore {
	return &GormStore{}
}

func (s *GormStore) Create(ctx context.Context, n *model.Notification) error {
	return db.GetDB(ctx).Create(n).Error
}

func (s *GormStore) List(ctx context.Context, recipientID uint, limit int) ([]model.Notification, error) {
	ns := make([]model.Notification, 0, limit)
	err := db.GetDB(ctx).
		Preload("Sender").
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&ns).Error
	return ns, err
}

func (s *GormStore) MarkRead(ctx context.Context, id, recipientID uint) (*model.Notification, error) {
	var n model.Notification
	err := db.GetDB(ctx).
		Preload("Sender").
		Where("id = ? AND recipient_id = ?", id, recipientID).
		First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if n.Read {
		return &n, nil
	}
	if err := db.GetDB(ctx).Model(&n).Update("read", true).Error; err != nil {
		return nil, err
	}
	n.Read = true
	return &n, nil
}

func (s *GormStore) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	res := db.GetDB(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}

func (s *GormStore) Delete(ctx context.Context, id, recipientID uint) error {
	// hard delete, no soft-delete retention for notifications
	res := db.GetDB(ctx).Unscoped().
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Delete(&model.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := db.GetDB(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}
