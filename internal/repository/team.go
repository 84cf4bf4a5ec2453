package repository

import (
	"context"

	"github.com/projectbuddy/projectbuddy/internal/apperr"
	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TeamFilter struct {
	Query      string
	ViewerID   string
	Visibility models.TeamVisibility
	Recruiting *bool
}

type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// Create inserts the team and its owner's ADMIN membership together.
func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(team).Error; err != nil {
			return err
		}

		owner := &models.TeamMember{
			TeamID: team.ID,
			UserID: team.OwnerID,
			Status: models.MemberAdmin,
		}

		return tx.Create(owner).Error
	})

	if err != nil {
		return wrap(err, "Team")
	}

	team.MemberCount = 1
	return nil
}

func (r *TeamRepository) FindByID(ctx context.Context, id string) (*models.Team, error) {
	var team models.Team

	if err := r.db.WithContext(ctx).Preload("Owner").Where("id = ?", id).First(&team).Error; err != nil {
		return nil, wrap(err, "Team")
	}

	count, err := r.CountMembers(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	team.MemberCount = count

	return &team, nil
}

func (r *TeamRepository) Update(ctx context.Context, team *models.Team, updates map[string]interface{}) error {
	if err := r.db.WithContext(ctx).Model(team).Updates(updates).Error; err != nil {
		return wrap(err, "Team")
	}

	return wrap(r.db.WithContext(ctx).First(team, "id = ?", team.ID).Error, "Team")
}

func (r *TeamRepository) Delete(ctx context.Context, id string) error {
	return wrap(r.db.WithContext(ctx).Delete(&models.Team{}, "id = ?", id).Error, "Team")
}

// List returns public teams plus, for an authenticated viewer, teams they
// belong to.
func (r *TeamRepository) List(ctx context.Context, filter TeamFilter, page feed.Page) ([]models.Team, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Team{})

	if filter.ViewerID != "" {
		q = q.Where("teams.visibility = ? OR teams.id IN (?)", models.TeamPublic,
			r.db.Model(&models.TeamMember{}).Select("team_id").Where("user_id = ?", filter.ViewerID))
	} else {
		q = q.Where("teams.visibility = ?", models.TeamPublic)
	}

	if filter.Query != "" {
		pattern := likePattern(filter.Query)
		q = q.Where("teams.name ILIKE ? OR teams.description ILIKE ?", pattern, pattern)
	}

	if filter.Visibility != "" {
		q = q.Where("teams.visibility = ?", filter.Visibility)
	}

	if filter.Recruiting != nil {
		q = q.Where("teams.is_recruiting = ?", *filter.Recruiting)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "Team")
	}

	var teams []models.Team
	if err := q.Order("teams.created_at DESC").Scopes(paginate(page)).Find(&teams).Error; err != nil {
		return nil, 0, wrap(err, "Team")
	}

	if err := r.fillMemberCounts(ctx, teams); err != nil {
		return nil, 0, err
	}

	return teams, total, nil
}

func (r *TeamRepository) fillMemberCounts(ctx context.Context, teams []models.Team) error {
	if len(teams) == 0 {
		return nil
	}

	ids := make([]string, len(teams))
	for i := range teams {
		ids[i] = teams[i].ID
	}

	var rows []struct {
		TeamID string
		Count  int64
	}

	err := r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Select("team_id, COUNT(*) AS count").
		Where("team_id IN ?", ids).
		Group("team_id").
		Scan(&rows).Error

	if err != nil {
		return wrap(err, "Team member")
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.TeamID] = row.Count
	}

	for i := range teams {
		teams[i].MemberCount = counts[teams[i].ID]
	}

	return nil
}

// FindMember returns the membership of userID in teamID, or nil.
func (r *TeamRepository) FindMember(ctx context.Context, teamID, userID string) (*models.TeamMember, error) {
	var members []models.TeamMember

	err := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Limit(1).
		Find(&members).Error

	if err != nil {
		return nil, wrap(err, "Team member")
	}

	if len(members) == 0 {
		return nil, nil
	}

	return &members[0], nil
}

func (r *TeamRepository) ListMembers(ctx context.Context, teamID string, page feed.Page) ([]models.TeamMember, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.TeamMember{}).Where("team_id = ?", teamID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "Team member")
	}

	var members []models.TeamMember
	if err := q.Preload("User").Order("created_at ASC").Scopes(paginate(page)).Find(&members).Error; err != nil {
		return nil, 0, wrap(err, "Team member")
	}

	return members, total, nil
}

// MemberIDs returns the user ids of every member of the team.
func (r *TeamRepository) MemberIDs(ctx context.Context, teamID string) ([]string, error) {
	var ids []string

	err := r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("team_id = ?", teamID).
		Pluck("user_id", &ids).Error

	return ids, wrap(err, "Team member")
}

// ManagerIDs returns the owner plus every ADMIN and MODERATOR.
func (r *TeamRepository) ManagerIDs(ctx context.Context, teamID string) ([]string, error) {
	var ids []string

	err := r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("team_id = ? AND status IN ?", teamID, []models.MemberStatus{models.MemberAdmin, models.MemberModerator}).
		Pluck("user_id", &ids).Error

	return ids, wrap(err, "Team member")
}

func (r *TeamRepository) CountMembers(ctx context.Context, teamID string) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).Model(&models.TeamMember{}).Where("team_id = ?", teamID).Count(&count).Error

	return count, wrap(err, "Team member")
}

// AddMember inserts a membership while holding a lock on the team row, so
// the capacity check and the insert cannot interleave with another join.
func (r *TeamRepository) AddMember(ctx context.Context, member *models.TeamMember) error {
	return wrap(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return addMember(tx, member)
	}), "Team member")
}

func addMember(tx *gorm.DB, member *models.TeamMember) error {
	var team models.Team
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", member.TeamID).First(&team).Error; err != nil {
		return wrap(err, "Team")
	}

	var count int64
	if err := tx.Model(&models.TeamMember{}).Where("team_id = ?", member.TeamID).Count(&count).Error; err != nil {
		return err
	}

	if team.MaxMembers > 0 && count >= int64(team.MaxMembers) {
		return ErrTeamFull
	}

	return tx.Create(member).Error
}

func (r *TeamRepository) UpdateMemberStatus(ctx context.Context, teamID, userID string, status models.MemberStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Update("status", status)

	if result.Error != nil {
		return wrap(result.Error, "Team member")
	}

	if result.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "Team member")
	}

	return nil
}

func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	result := r.db.WithContext(ctx).Where("team_id = ? AND user_id = ?", teamID, userID).Delete(&models.TeamMember{})

	if result.Error != nil {
		return wrap(result.Error, "Team member")
	}

	if result.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "Team member")
	}

	return nil
}

func (r *TeamRepository) Follow(ctx context.Context, teamID, userID string) error {
	follow := &models.TeamFollow{TeamID: teamID, UserID: userID}
	return wrap(r.db.WithContext(ctx).Create(follow).Error, "Team follow")
}

func (r *TeamRepository) Unfollow(ctx context.Context, teamID, userID string) error {
	result := r.db.WithContext(ctx).Where("team_id = ? AND user_id = ?", teamID, userID).Delete(&models.TeamFollow{})

	if result.Error != nil {
		return wrap(result.Error, "Team follow")
	}

	if result.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "Team follow")
	}

	return nil
}

func (r *TeamRepository) CreateJoinRequest(ctx context.Context, req *models.TeamJoinRequest) error {
	return wrap(r.db.WithContext(ctx).Create(req).Error, "Join request")
}

func (r *TeamRepository) FindJoinRequest(ctx context.Context, id string) (*models.TeamJoinRequest, error) {
	var req models.TeamJoinRequest

	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, wrap(err, "Join request")
	}

	return &req, nil
}

// FindPendingJoinRequest returns userID's open request for teamID, or nil.
func (r *TeamRepository) FindPendingJoinRequest(ctx context.Context, teamID, userID string) (*models.TeamJoinRequest, error) {
	var reqs []models.TeamJoinRequest

	err := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ? AND status = ?", teamID, userID, models.JoinRequestPending).
		Limit(1).
		Find(&reqs).Error

	if err != nil {
		return nil, wrap(err, "Join request")
	}

	if len(reqs) == 0 {
		return nil, nil
	}

	return &reqs[0], nil
}

func (r *TeamRepository) ListJoinRequests(ctx context.Context, teamID string, status models.JoinRequestStatus, page feed.Page) ([]models.TeamJoinRequest, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.TeamJoinRequest{}).Where("team_id = ?", teamID)

	if status != "" {
		q = q.Where("status = ?", status)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "Join request")
	}

	var reqs []models.TeamJoinRequest
	if err := q.Preload("User").Order("created_at ASC").Scopes(paginate(page)).Find(&reqs).Error; err != nil {
		return nil, 0, wrap(err, "Join request")
	}

	return reqs, total, nil
}

// ApproveJoinRequest marks a pending request approved and adds the member in
// one transaction. Capacity is checked under the team row lock.
func (r *TeamRepository) ApproveJoinRequest(ctx context.Context, req *models.TeamJoinRequest, reviewerID string) error {
	return wrap(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := reviewJoinRequest(tx, req.ID, reviewerID, models.JoinRequestApproved); err != nil {
			return err
		}

		member := &models.TeamMember{
			TeamID: req.TeamID,
			UserID: req.UserID,
			Status: models.MemberMember,
		}

		return addMember(tx, member)
	}), "Team member")
}

func (r *TeamRepository) RejectJoinRequest(ctx context.Context, req *models.TeamJoinRequest, reviewerID string) error {
	return wrap(reviewJoinRequest(r.db.WithContext(ctx), req.ID, reviewerID, models.JoinRequestRejected), "Join request")
}

func reviewJoinRequest(tx *gorm.DB, id, reviewerID string, status models.JoinRequestStatus) error {
	result := tx.Model(&models.TeamJoinRequest{}).
		Where("id = ? AND status = ?", id, models.JoinRequestPending).
		Updates(map[string]interface{}{"status": status, "reviewed_by": reviewerID})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return apperr.Conflict("Join request has already been reviewed")
	}

	return nil
}
