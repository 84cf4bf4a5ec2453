package repository

import (
	"context"
	"time"

	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"gorm.io/gorm"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return wrap(err, "Post")
	}

	return wrap(r.db.WithContext(ctx).Preload("Author").First(post, "id = ?", post.ID).Error, "Post")
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post

	if err := r.db.WithContext(ctx).Preload("Author").Preload("Team").Where("id = ?", id).First(&post).Error; err != nil {
		return nil, wrap(err, "Post")
	}

	return &post, nil
}

func (r *PostRepository) Update(ctx context.Context, post *models.Post, updates map[string]interface{}) error {
	if err := r.db.WithContext(ctx).Model(post).Updates(updates).Error; err != nil {
		return wrap(err, "Post")
	}

	return wrap(r.db.WithContext(ctx).Preload("Author").First(post, "id = ?", post.ID).Error, "Post")
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	return wrap(r.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id).Error, "Post")
}

// Feed lists the posts the audience may see, newest first. The audience is a
// single OR predicate, so a post reachable through several clauses is
// returned once and counted once.
func (r *PostRepository) Feed(ctx context.Context, audience feed.Audience, filter feed.Filter, page feed.Page) (feed.Result, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Scopes(audience.Scope, filter.Scope)

	return r.page(q, feed.RecentOrder, page)
}

// Trending ranks every post created since the cutoff by engagement. Post
// visibility is not applied.
func (r *PostRepository) Trending(ctx context.Context, since time.Time, page feed.Page) (feed.Result, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("posts.created_at >= ?", since)

	return r.page(q, feed.TrendingOrder, page)
}

func (r *PostRepository) page(q *gorm.DB, order string, page feed.Page) (feed.Result, error) {
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return feed.Result{}, wrap(err, "Post")
	}

	posts := make([]models.Post, 0, page.Limit)
	if total == 0 {
		return feed.Result{Items: posts}, nil
	}

	err := q.Preload("Author").
		Order(order).
		Scopes(paginate(page)).
		Find(&posts).Error

	if err != nil {
		return feed.Result{}, wrap(err, "Post")
	}

	return feed.Result{Items: posts, Total: total}, nil
}
