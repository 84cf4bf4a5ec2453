package services

import (
	"context"
	"strings"

	"github.com/lib/pq"
	"github.com/projectbuddy/projectbuddy/internal/apperr"
	"github.com/projectbuddy/projectbuddy/internal/authz"
	"github.com/projectbuddy/projectbuddy/internal/events"
	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"github.com/projectbuddy/projectbuddy/internal/repository"
)

type ProjectInput struct {
	Name        *string
	Description *string
	TeamID      *string
	Status      *models.ProjectStatus
	IsPublic    *bool
	Tags        []string
}

type ProjectService struct {
	projects  ProjectStore
	teams     TeamStore
	users     UserStore
	policy    *authz.Policy
	publisher Publisher
}

func NewProjectService(projects ProjectStore, teams TeamStore, users UserStore, policy *authz.Policy, publisher Publisher) *ProjectService {
	return &ProjectService{projects: projects, teams: teams, users: users, policy: policy, publisher: publisher}
}

func (s *ProjectService) Create(ctx context.Context, ownerID string, in ProjectInput) (*models.Project, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Validation("Project name is required")
	}

	project := &models.Project{
		Name:     strings.TrimSpace(*in.Name),
		OwnerID:  ownerID,
		Status:   models.ProjectPlanning,
		IsPublic: true,
	}

	if in.Description != nil {
		project.Description = strings.TrimSpace(*in.Description)
	}

	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperr.Validation("Status must be one of PLANNING, ACTIVE, COMPLETED or ARCHIVED")
		}
		project.Status = *in.Status
	}

	if in.IsPublic != nil {
		project.IsPublic = *in.IsPublic
	}

	if in.Tags != nil {
		project.Tags = pq.StringArray(normalizeTags(in.Tags))
	}

	if in.TeamID != nil && *in.TeamID != "" {
		if err := s.checkTeamMember(ctx, *in.TeamID, ownerID); err != nil {
			return nil, err
		}
		project.TeamID = in.TeamID
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

func (s *ProjectService) checkTeamMember(ctx context.Context, teamID, userID string) error {
	if _, err := s.teams.FindByID(ctx, teamID); err != nil {
		return err
	}

	member, err := s.teams.FindMember(ctx, teamID, userID)
	if err != nil {
		return err
	}

	if member == nil {
		return apperr.Forbidden("You must be a member of the team to link a project to it")
	}

	return nil
}

// Get returns a project. Private projects are only visible to members.
func (s *ProjectService) Get(ctx context.Context, viewerID, projectID string) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err := s.checkReadable(ctx, project, viewerID); err != nil {
		return nil, err
	}

	return project, nil
}

func (s *ProjectService) checkReadable(ctx context.Context, project *models.Project, viewerID string) error {
	if project.IsPublic || (viewerID != "" && viewerID == project.OwnerID) {
		return nil
	}

	if viewerID != "" {
		member, err := s.projects.FindMember(ctx, project.ID, viewerID)
		if err != nil {
			return err
		}
		if member != nil {
			return nil
		}
	}

	return apperr.Forbidden("You do not have access to this project")
}

func (s *ProjectService) List(ctx context.Context, filter repository.ProjectFilter, page feed.Page) ([]models.Project, int64, error) {
	return s.projects.List(ctx, filter, page)
}

func (s *ProjectService) Update(ctx context.Context, actorID, projectID string, in ProjectInput) (*models.Project, error) {
	project, res, err := s.load(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Check(actorID, res, authz.Update, "You do not have permission to update this project"); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("Project name cannot be empty")
		}
		updates["name"] = name
	}

	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}

	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperr.Validation("Status must be one of PLANNING, ACTIVE, COMPLETED or ARCHIVED")
		}
		updates["status"] = *in.Status
	}

	if in.IsPublic != nil {
		updates["is_public"] = *in.IsPublic
	}

	if in.Tags != nil {
		updates["tags"] = pq.StringArray(normalizeTags(in.Tags))
	}

	if in.TeamID != nil {
		if *in.TeamID == "" {
			updates["team_id"] = nil
		} else {
			if err := s.checkTeamMember(ctx, *in.TeamID, actorID); err != nil {
				return nil, err
			}
			updates["team_id"] = *in.TeamID
		}
	}

	if len(updates) == 0 {
		return nil, apperr.Validation("No valid fields to update")
	}

	if err := s.projects.Update(ctx, project, updates); err != nil {
		return nil, err
	}

	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, actorID, projectID string) error {
	_, res, err := s.load(ctx, projectID, actorID)
	if err != nil {
		return err
	}

	if err := s.policy.Check(actorID, res, authz.Delete, "You do not have permission to delete this project"); err != nil {
		return err
	}

	return s.projects.Delete(ctx, projectID)
}

func (s *ProjectService) load(ctx context.Context, projectID, actorID string) (*models.Project, authz.Resource, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, authz.Resource{}, err
	}

	res := authz.Resource{Kind: authz.KindProject, OwnerID: project.OwnerID}

	member, err := s.projects.FindMember(ctx, project.ID, actorID)
	if err != nil {
		return nil, authz.Resource{}, err
	}

	if member != nil {
		res.ActorRole = string(member.Role)
	}

	return project, res, nil
}

func assignableRole(role models.ProjectRole) (models.ProjectRole, error) {
	switch role {
	case "":
		return models.ProjectMember, nil
	case models.ProjectAdmin, models.ProjectMember:
		return role, nil
	default:
		return "", apperr.Validation("Role must be ADMIN or MEMBER")
	}
}

func (s *ProjectService) AddMember(ctx context.Context, actorID, projectID, userID string, role models.ProjectRole) (*models.ProjectMembership, error) {
	role, err := assignableRole(role)
	if err != nil {
		return nil, err
	}

	project, res, err := s.load(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Check(actorID, res, authz.Invite, "You do not have permission to add members to this project"); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	member := &models.ProjectMembership{ProjectID: project.ID, UserID: userID, Role: role}
	if err := s.projects.AddMember(ctx, member); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, apperr.Conflict("User is already a member of this project")
		}
		return nil, err
	}

	publish(ctx, s.publisher, events.Event{
		Type:       models.NotifyProjectMember,
		ActorID:    actorID,
		Recipients: []string{userID},
		EntityID:   project.ID,
		Message:    "You were added to the project " + project.Name,
	})

	return member, nil
}

func (s *ProjectService) ChangeRole(ctx context.Context, actorID, projectID, targetID string, role models.ProjectRole) error {
	if role == "" {
		return apperr.Validation("Role must be ADMIN or MEMBER")
	}

	role, err := assignableRole(role)
	if err != nil {
		return err
	}

	_, res, err := s.load(ctx, projectID, actorID)
	if err != nil {
		return err
	}

	if err := s.policy.CheckRoleChange(actorID, targetID, res); err != nil {
		return err
	}

	return s.projects.UpdateMemberRole(ctx, projectID, targetID, role)
}

// RemoveMember removes targetID. Any member may remove themselves.
func (s *ProjectService) RemoveMember(ctx context.Context, actorID, projectID, targetID string) error {
	_, res, err := s.load(ctx, projectID, actorID)
	if err != nil {
		return err
	}

	if err := s.policy.CheckRemoval(actorID, targetID, res); err != nil {
		return err
	}

	return s.projects.RemoveMember(ctx, projectID, targetID)
}

func (s *ProjectService) ListMembers(ctx context.Context, viewerID, projectID string) ([]models.ProjectMembership, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err := s.checkReadable(ctx, project, viewerID); err != nil {
		return nil, err
	}

	return s.projects.ListMembers(ctx, project.ID)
}

