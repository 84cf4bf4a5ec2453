package repository

import (
	"context"
	"strings"

	"github.com/lib/pq"
	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"gorm.io/gorm"
)

type UserFilter struct {
	Query     string
	Skill     string
	Location  string
	ExcludeID string
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return wrap(r.db.WithContext(ctx).Create(user).Error, "User")
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User

	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, wrap(err, "User")
	}

	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, wrap(err, "User")
	}

	return &user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *models.User, updates map[string]interface{}) error {
	if err := r.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return wrap(err, "User")
	}

	return wrap(r.db.WithContext(ctx).First(user, "id = ?", user.ID).Error, "User")
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return wrap(r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error, "User")
}

func (r *UserRepository) Search(ctx context.Context, filter UserFilter, page feed.Page) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})

	if filter.Query != "" {
		pattern := likePattern(filter.Query)
		q = q.Where("users.name ILIKE ? OR users.headline ILIKE ? OR users.bio ILIKE ?", pattern, pattern, pattern)
	}

	if filter.Skill != "" {
		q = q.Where("? ILIKE ANY(users.skills)", strings.TrimSpace(filter.Skill))
	}

	if filter.Location != "" {
		q = q.Where("users.location ILIKE ?", likePattern(filter.Location))
	}

	if filter.ExcludeID != "" {
		q = q.Where("users.id <> ?", filter.ExcludeID)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "User")
	}

	var users []models.User
	if err := q.Order("users.name ASC").Scopes(paginate(page)).Find(&users).Error; err != nil {
		return nil, 0, wrap(err, "User")
	}

	return users, total, nil
}

// Suggestions returns users sharing a skill or interest with the given sets,
// skipping the excluded ids.
func (r *UserRepository) Suggestions(ctx context.Context, skills, interests, exclude []string, limit int) ([]models.User, error) {
	var users []models.User

	if len(skills) == 0 && len(interests) == 0 {
		return users, nil
	}

	q := r.db.WithContext(ctx).
		Where("users.skills && ? OR users.interests && ?", pq.StringArray(skills), pq.StringArray(interests))

	if len(exclude) > 0 {
		q = q.Where("users.id NOT IN ?", exclude)
	}

	if err := q.Order("users.created_at DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, wrap(err, "User")
	}

	return users, nil
}
