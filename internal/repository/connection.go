package repository

import (
	"context"

	"github.com/projectbuddy/projectbuddy/internal/apperr"
	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"gorm.io/gorm"
)

type ConnectionDirection string

const (
	DirectionAny      ConnectionDirection = ""
	DirectionIncoming ConnectionDirection = "incoming"
	DirectionOutgoing ConnectionDirection = "outgoing"
)

type ConnectionQuery struct {
	Status    models.ConnectionStatus
	Direction ConnectionDirection
}

type ConnectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// Create inserts a connection. The unique pair key turns a concurrent
// duplicate in either direction into a Conflict.
func (r *ConnectionRepository) Create(ctx context.Context, conn *models.Connection) error {
	return wrap(r.db.WithContext(ctx).Create(conn).Error, "Connection")
}

func (r *ConnectionRepository) FindByID(ctx context.Context, id string) (*models.Connection, error) {
	var conn models.Connection

	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&conn).Error; err != nil {
		return nil, wrap(err, "Connection")
	}

	return &conn, nil
}

// FindBetween returns the connection between a and b in either direction,
// or nil when there is none.
func (r *ConnectionRepository) FindBetween(ctx context.Context, a, b string) (*models.Connection, error) {
	var conns []models.Connection

	err := r.db.WithContext(ctx).
		Where("pair_key = ?", models.PairKey(a, b)).
		Limit(1).
		Find(&conns).Error

	if err != nil {
		return nil, wrap(err, "Connection")
	}

	if len(conns) == 0 {
		return nil, nil
	}

	return &conns[0], nil
}

// Transition moves a connection out of from in a single conditional update,
// so two concurrent responses cannot both succeed.
func (r *ConnectionRepository) Transition(ctx context.Context, id string, from, to models.ConnectionStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)

	if result.Error != nil {
		return wrap(result.Error, "Connection")
	}

	if result.RowsAffected == 0 {
		return apperr.Conflict("Connection request has already been responded to")
	}

	return nil
}

func (r *ConnectionRepository) Delete(ctx context.Context, id string) error {
	return wrap(r.db.WithContext(ctx).Delete(&models.Connection{}, "id = ?", id).Error, "Connection")
}

func (r *ConnectionRepository) List(ctx context.Context, userID string, query ConnectionQuery, page feed.Page) ([]models.Connection, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Connection{})

	switch query.Direction {
	case DirectionIncoming:
		q = q.Where("receiver_id = ?", userID)
	case DirectionOutgoing:
		q = q.Where("sender_id = ?", userID)
	default:
		q = q.Where("sender_id = ? OR receiver_id = ?", userID, userID)
	}

	if query.Status != "" {
		q = q.Where("status = ?", query.Status)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "Connection")
	}

	var conns []models.Connection
	err := q.Preload("Sender").Preload("Receiver").
		Order("created_at DESC").
		Scopes(paginate(page)).
		Find(&conns).Error

	if err != nil {
		return nil, 0, wrap(err, "Connection")
	}

	return conns, total, nil
}

// RelatedUserIDs returns every user with any connection row to userID.
func (r *ConnectionRepository) RelatedUserIDs(ctx context.Context, userID string) ([]string, error) {
	var conns []models.Connection

	err := r.db.WithContext(ctx).
		Select("sender_id", "receiver_id").
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Find(&conns).Error

	if err != nil {
		return nil, wrap(err, "Connection")
	}

	ids := make([]string, 0, len(conns))
	for i := range conns {
		ids = append(ids, conns[i].Other(userID))
	}

	return ids, nil
}
