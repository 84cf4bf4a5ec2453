package repository

import (
	"context"

	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"gorm.io/gorm"
)

// GraphRepository resolves the social graph a feed is built from.
type GraphRepository struct {
	db *gorm.DB
}

func NewGraphRepository(db *gorm.DB) *GraphRepository {
	return &GraphRepository{db: db}
}

// ConnectedUserIDs returns the other party of every ACCEPTED connection,
// regardless of who sent the request.
func (r *GraphRepository) ConnectedUserIDs(ctx context.Context, userID string) ([]string, error) {
	var conns []models.Connection

	err := r.db.WithContext(ctx).
		Select("sender_id", "receiver_id").
		Where("status = ? AND (sender_id = ? OR receiver_id = ?)", models.ConnectionAccepted, userID, userID).
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

func (r *GraphRepository) MemberTeamIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string

	err := r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("user_id = ?", userID).
		Pluck("team_id", &ids).Error

	return ids, wrap(err, "Team member")
}

func (r *GraphRepository) FollowedTeamIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string

	err := r.db.WithContext(ctx).
		Model(&models.TeamFollow{}).
		Where("user_id = ?", userID).
		Pluck("team_id", &ids).Error

	return ids, wrap(err, "Team follow")
}

func (r *GraphRepository) SocialGraph(ctx context.Context, viewerID string) (feed.SocialGraph, error) {
	graph := feed.SocialGraph{ViewerID: viewerID}
	var err error

	if graph.ConnectedUserIDs, err = r.ConnectedUserIDs(ctx, viewerID); err != nil {
		return feed.SocialGraph{}, err
	}

	if graph.MemberTeamIDs, err = r.MemberTeamIDs(ctx, viewerID); err != nil {
		return feed.SocialGraph{}, err
	}

	if graph.FollowedTeamIDs, err = r.FollowedTeamIDs(ctx, viewerID); err != nil {
		return feed.SocialGraph{}, err
	}

	return graph, nil
}
