package repository

import (
	"context"

	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const updateCountsSQL = `UPDATE posts SET
	likes_count = (SELECT COUNT(*) FROM reactions WHERE reactions.post_id = posts.id),
	comments_count = (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id),
	shares_count = (SELECT COUNT(*) FROM shares WHERE shares.post_id = posts.id)
WHERE posts.id = ?`

// InteractionRepository owns reactions, comments, shares and bookmarks. Every
// write that changes a counted table refreshes the post counters in the same
// transaction.
type InteractionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// UpdateCounts recomputes a post's counters from the child tables.
func (r *InteractionRepository) UpdateCounts(ctx context.Context, postID string) error {
	return wrap(updateCounts(r.db.WithContext(ctx), postID), "Post")
}

func updateCounts(tx *gorm.DB, postID string) error {
	return tx.Exec(updateCountsSQL, postID).Error
}

// React sets the user's reaction on a post, replacing any previous type.
// created reports whether the user had not reacted before.
func (r *InteractionRepository) React(ctx context.Context, reaction *models.Reaction) (created bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Reaction{}).
			Where("user_id = ? AND post_id = ?", reaction.UserID, reaction.PostID).
			Count(&existing).Error; err != nil {
			return err
		}
		created = existing == 0

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"type", "updated_at"}),
		}).Create(reaction).Error
		if err != nil {
			return err
		}

		// An upsert keeps the stored row, not the id assigned before insert.
		if !created {
			var stored models.Reaction
			if err := tx.Where("user_id = ? AND post_id = ?", reaction.UserID, reaction.PostID).
				First(&stored).Error; err != nil {
				return err
			}
			*reaction = stored
		}

		return updateCounts(tx, reaction.PostID)
	})

	return created, wrap(err, "Reaction")
}

func (r *InteractionRepository) Unreact(ctx context.Context, userID, postID string) error {
	return wrap(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Reaction{})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return updateCounts(tx, postID)
	}), "Reaction")
}

func (r *InteractionRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}

		return updateCounts(tx, comment.PostID)
	})

	if err != nil {
		return wrap(err, "Comment")
	}

	return wrap(r.db.WithContext(ctx).Preload("Author").First(comment, "id = ?", comment.ID).Error, "Comment")
}

func (r *InteractionRepository) FindComment(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment

	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, wrap(err, "Comment")
	}

	return &comment, nil
}

// ListComments pages through top-level comments, each with its replies.
func (r *InteractionRepository) ListComments(ctx context.Context, postID string, page feed.Page) ([]models.Comment, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ? AND parent_id IS NULL", postID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "Comment")
	}

	var comments []models.Comment
	err := q.Preload("Author").
		Preload("Replies", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		Preload("Replies.Author").
		Order("created_at DESC").
		Scopes(paginate(page)).
		Find(&comments).Error

	if err != nil {
		return nil, 0, wrap(err, "Comment")
	}

	return comments, total, nil
}

// DeleteComment removes a comment and its replies.
func (r *InteractionRepository) DeleteComment(ctx context.Context, comment *models.Comment) error {
	return wrap(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? OR parent_id = ?", comment.ID, comment.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		return updateCounts(tx, comment.PostID)
	}), "Comment")
}

// Share records a share. A second share of the same post by the same user
// is a Conflict.
func (r *InteractionRepository) Share(ctx context.Context, share *models.Share) error {
	return wrap(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(share).Error; err != nil {
			return err
		}

		return updateCounts(tx, share.PostID)
	}), "Share")
}

func (r *InteractionRepository) Bookmark(ctx context.Context, bookmark *models.Bookmark) error {
	return wrap(r.db.WithContext(ctx).Create(bookmark).Error, "Bookmark")
}

func (r *InteractionRepository) Unbookmark(ctx context.Context, userID, postID string) error {
	result := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Bookmark{})

	if result.Error != nil {
		return wrap(result.Error, "Bookmark")
	}

	if result.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "Bookmark")
	}

	return nil
}

func (r *InteractionRepository) ListBookmarks(ctx context.Context, userID string, page feed.Page) ([]models.Bookmark, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Bookmark{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "Bookmark")
	}

	var bookmarks []models.Bookmark
	err := q.Preload("Post").
		Preload("Post.Author").
		Order("created_at DESC").
		Scopes(paginate(page)).
		Find(&bookmarks).Error

	if err != nil {
		return nil, 0, wrap(err, "Bookmark")
	}

	return bookmarks, total, nil
}
