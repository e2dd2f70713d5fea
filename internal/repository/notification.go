package repository

import (
	"context"

	"agora/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	CreateBatch(ctx context.Context, notes []models.Notification) error
	// ListForRecipient returns the recipient's notifications, newest first.
	// With onlyFollowing set, only those whose sender the recipient follows.
	ListForRecipient(ctx context.Context, recipientID uint, onlyFollowing bool, page models.PageRequest) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, recipientID, id uint) error
	MarkAllRead(ctx context.Context, recipientID uint) (int64, error)
	UnreadCount(ctx context.Context, recipientID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository returns a new NotificationRepository implementation.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

const notificationBatchSize = 500

func (r *notificationRepository) CreateBatch(ctx context.Context, notes []models.Notification) error {
	if len(notes) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Omit("Recipient", "Sender", "Post", "Comment", "Follow").
		CreateInBatches(&notes, notificationBatchSize).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *notificationRepository) ListForRecipient(ctx context.Context, recipientID uint, onlyFollowing bool, page models.PageRequest) ([]models.Notification, int64, error) {
	var notes []models.Notification
	total, err := paged(func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ?", recipientID)
		if onlyFollowing {
			q = q.Where("sender_id IN (SELECT following_id FROM follows WHERE follower_id = ?)", recipientID)
		}
		return q
	}, page, &notes, func(q *gorm.DB) *gorm.DB {
		return q.Preload("Sender").Order("created_at DESC, id DESC")
	})
	if err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

// MarkRead flips the read flag. Other users' notifications are NOT_FOUND.
func (r *notificationRepository) MarkRead(ctx context.Context, recipientID, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", true)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Notification", id)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
