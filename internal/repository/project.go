package repository

import (
	"context"

	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"gorm.io/gorm"
)

type ProjectFilter struct {
	Query    string
	ViewerID string
	OwnerID  string
	TeamID   string
	Status   models.ProjectStatus
	Tag      string
}

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts the project and the owner's OWNER membership together.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return wrap(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		owner := &models.ProjectMembership{
			ProjectID: project.ID,
			UserID:    project.OwnerID,
			Role:      models.ProjectOwner,
		}

		return tx.Create(owner).Error
	}), "Project")
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project

	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Members").
		Preload("Members.User").
		Where("id = ?", id).
		First(&project).Error

	if err != nil {
		return nil, wrap(err, "Project")
	}

	return &project, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *models.Project, updates map[string]interface{}) error {
	if err := r.db.WithContext(ctx).Model(project).Updates(updates).Error; err != nil {
		return wrap(err, "Project")
	}

	return wrap(r.db.WithContext(ctx).First(project, "id = ?", project.ID).Error, "Project")
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	return wrap(r.db.WithContext(ctx).Delete(&models.Project{}, "id = ?", id).Error, "Project")
}

// List returns public projects plus, for an authenticated viewer, projects
// they are a member of.
func (r *ProjectRepository) List(ctx context.Context, filter ProjectFilter, page feed.Page) ([]models.Project, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Project{})

	if filter.ViewerID != "" {
		q = q.Where("projects.is_public = ? OR projects.id IN (?)", true,
			r.db.Model(&models.ProjectMembership{}).Select("project_id").Where("user_id = ?", filter.ViewerID))
	} else {
		q = q.Where("projects.is_public = ?", true)
	}

	if filter.Query != "" {
		pattern := likePattern(filter.Query)
		q = q.Where("projects.name ILIKE ? OR projects.description ILIKE ?", pattern, pattern)
	}

	if filter.OwnerID != "" {
		q = q.Where("projects.owner_id = ?", filter.OwnerID)
	}

	if filter.TeamID != "" {
		q = q.Where("projects.team_id = ?", filter.TeamID)
	}

	if filter.Status != "" {
		q = q.Where("projects.status = ?", filter.Status)
	}

	if filter.Tag != "" {
		q = q.Where("? = ANY(projects.tags)", filter.Tag)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "Project")
	}

	var projects []models.Project
	if err := q.Preload("Owner").Order("projects.created_at DESC").Scopes(paginate(page)).Find(&projects).Error; err != nil {
		return nil, 0, wrap(err, "Project")
	}

	return projects, total, nil
}

// FindMember returns userID's membership in projectID, or nil.
func (r *ProjectRepository) FindMember(ctx context.Context, projectID, userID string) (*models.ProjectMembership, error) {
	var members []models.ProjectMembership

	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Limit(1).
		Find(&members).Error

	if err != nil {
		return nil, wrap(err, "Project member")
	}

	if len(members) == 0 {
		return nil, nil
	}

	return &members[0], nil
}

func (r *ProjectRepository) ListMembers(ctx context.Context, projectID string) ([]models.ProjectMembership, error) {
	var members []models.ProjectMembership

	err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&members).Error

	return members, wrap(err, "Project member")
}

func (r *ProjectRepository) AddMember(ctx context.Context, member *models.ProjectMembership) error {
	return wrap(r.db.WithContext(ctx).Create(member).Error, "Project member")
}

func (r *ProjectRepository) UpdateMemberRole(ctx context.Context, projectID, userID string, role models.ProjectRole) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("role", role)

	if result.Error != nil {
		return wrap(result.Error, "Project member")
	}

	if result.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "Project member")
	}

	return nil
}

func (r *ProjectRepository) RemoveMember(ctx context.Context, projectID, userID string) error {
	result := r.db.WithContext(ctx).Where("project_id = ? AND user_id = ?", projectID, userID).Delete(&models.ProjectMembership{})

	if result.Error != nil {
		return wrap(result.Error, "Project member")
	}

	if result.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "Project member")
	}

	return nil
}
