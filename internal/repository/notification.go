package repository

import (
	"context"
	"time"

	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	return wrap(r.db.WithContext(ctx).Create(notifications).Error, "Notification")
}

func (r *NotificationRepository) List(ctx context.Context, userID string, unreadOnly bool, page feed.Page) ([]models.Notification, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)

	if unreadOnly {
		q = q.Where("read = ?", false)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "Notification")
	}

	var notifications []models.Notification
	if err := q.Order("created_at DESC").Scopes(paginate(page)).Find(&notifications).Error; err != nil {
		return nil, 0, wrap(err, "Notification")
	}

	return notifications, total, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error

	return count, wrap(err, "Notification")
}

// MarkRead marks one of userID's notifications read. Another user's
// notification is reported as not found.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"read": true, "read_at": time.Now()})

	if result.Error != nil {
		return wrap(result.Error, "Notification")
	}

	if result.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "Notification")
	}

	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]interface{}{"read": true, "read_at": time.Now()})

	return result.RowsAffected, wrap(result.Error, "Notification")
}

func (r *NotificationRepository) Delete(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})

	if result.Error != nil {
		return wrap(result.Error, "Notification")
	}

	if result.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "Notification")
	}

	return nil
}
