package repository

import (
	"context"
	"sort"
	"time"

	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"gorm.io/gorm"
)

const latestMessagesSQL = `SELECT DISTINCT ON (counterpart) *
FROM (
	SELECT messages.*, CASE WHEN sender_id = @user THEN receiver_id ELSE sender_id END AS counterpart
	FROM messages
	WHERE sender_id = @user OR receiver_id = @user
) AS threads
ORDER BY counterpart, created_at DESC`

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	return wrap(r.db.WithContext(ctx).Create(msg).Error, "Message")
}

// Thread pages through the messages exchanged between a and b, newest first.
func (r *MessageRepository) Thread(ctx context.Context, a, b string, page feed.Page) ([]models.Message, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "Message")
	}

	var msgs []models.Message
	if err := q.Order("created_at DESC").Scopes(paginate(page)).Find(&msgs).Error; err != nil {
		return nil, 0, wrap(err, "Message")
	}

	return msgs, total, nil
}

// MarkThreadRead marks everything from sender to receiver read.
func (r *MessageRepository) MarkThreadRead(ctx context.Context, receiverID, senderID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND read_at IS NULL", receiverID, senderID).
		Update("read_at", time.Now())

	return result.RowsAffected, wrap(result.Error, "Message")
}

// Conversations returns the latest message with every counterpart of
// userID, most recent first.
func (r *MessageRepository) Conversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	var latest []models.Message

	err := r.db.WithContext(ctx).
		Raw(latestMessagesSQL, map[string]interface{}{"user": userID}).
		Scan(&latest).Error

	if err != nil {
		return nil, wrap(err, "Message")
	}

	var unread []struct {
		SenderID string
		Count    int64
	}

	err = r.db.WithContext(ctx).
		Model(&models.Message{}).
		Select("sender_id, COUNT(*) AS count").
		Where("receiver_id = ? AND read_at IS NULL", userID).
		Group("sender_id").
		Scan(&unread).Error

	if err != nil {
		return nil, wrap(err, "Message")
	}

	counts := make(map[string]int64, len(unread))
	for _, row := range unread {
		counts[row.SenderID] = row.Count
	}

	conversations := make([]models.Conversation, 0, len(latest))
	for _, msg := range latest {
		other := msg.SenderID
		if other == userID {
			other = msg.ReceiverID
		}

		conversations = append(conversations, models.Conversation{
			UserID:      other,
			LastMessage: msg,
			UnreadCount: counts[other],
			UpdatedAt:   msg.CreatedAt,
		})
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})

	return conversations, nil
}
