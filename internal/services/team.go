package services

import (
	"context"
	"errors"
	"strings"

	"github.com/projectbuddy/projectbuddy/internal/apperr"
	"github.com/projectbuddy/projectbuddy/internal/authz"
	"github.com/projectbuddy/projectbuddy/internal/events"
	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/logger"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"github.com/projectbuddy/projectbuddy/internal/repository"
)

const defaultMaxMembers = 50

var (
	errAlreadyMember   = apperr.Conflict("You are already a member of this team")
	errTeamNotPublic   = apperr.Forbidden("This team is not public")
	errNoJoinRequests  = apperr.Forbidden("This team is not accepting join requests")
	errNotRecruiting   = apperr.Forbidden("This team is not currently recruiting")
	errTeamFull        = apperr.Conflict("This team has reached its maximum number of members")
	errTeamUnavailable = apperr.Forbidden("You do not have access to this team")
)

// TeamInput is used for both creation and updates. Nil fields keep their
// default on create and their current value on update.
type TeamInput struct {
	Name              *string
	Description       *string
	Visibility        *models.TeamVisibility
	AllowJoinRequests *bool
	IsRecruiting      *bool
	MaxMembers        *int
	DiscordWebhook    *string
	SlackWebhook      *string
}

type TeamService struct {
	teams     TeamStore
	users     UserStore
	policy    *authz.Policy
	publisher Publisher
}

func NewTeamService(teams TeamStore, users UserStore, policy *authz.Policy, publisher Publisher) *TeamService {
	return &TeamService{teams: teams, users: users, policy: policy, publisher: publisher}
}

func (s *TeamService) Create(ctx context.Context, ownerID string, in TeamInput) (*models.Team, error) {
	team := &models.Team{
		OwnerID:           ownerID,
		Visibility:        models.TeamPublic,
		AllowJoinRequests: true,
		IsRecruiting:      true,
		MaxMembers:        defaultMaxMembers,
	}

	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Validation("Team name is required")
	}

	if err := applyTeamInput(team, in, nil); err != nil {
		return nil, err
	}

	if err := s.teams.Create(ctx, team); err != nil {
		return nil, err
	}

	return team, nil
}

// applyTeamInput copies the set fields of in onto team, recording the
// column updates when updates is non-nil.
func applyTeamInput(team *models.Team, in TeamInput, updates map[string]interface{}) error {
	set := func(column string, value interface{}) {
		if updates != nil {
			updates[column] = value
		}
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return apperr.Validation("Team name cannot be empty")
		}
		team.Name = name
		set("name", name)
	}

	if in.Description != nil {
		team.Description = strings.TrimSpace(*in.Description)
		set("description", team.Description)
	}

	if in.Visibility != nil {
		switch *in.Visibility {
		case models.TeamPublic, models.TeamPrivate, models.TeamInviteOnly:
		default:
			return apperr.Validation("Visibility must be one of PUBLIC, PRIVATE or INVITE_ONLY")
		}
		team.Visibility = *in.Visibility
		set("visibility", team.Visibility)
	}

	if in.AllowJoinRequests != nil {
		team.AllowJoinRequests = *in.AllowJoinRequests
		set("allow_join_requests", team.AllowJoinRequests)
	}

	if in.IsRecruiting != nil {
		team.IsRecruiting = *in.IsRecruiting
		set("is_recruiting", team.IsRecruiting)
	}

	if in.MaxMembers != nil {
		if *in.MaxMembers < 1 {
			return apperr.Validation("Max members must be at least 1")
		}
		team.MaxMembers = *in.MaxMembers
		set("max_members", team.MaxMembers)
	}

	if in.DiscordWebhook != nil {
		team.DiscordWebhook = strings.TrimSpace(*in.DiscordWebhook)
		set("discord_webhook", team.DiscordWebhook)
	}

	if in.SlackWebhook != nil {
		team.SlackWebhook = strings.TrimSpace(*in.SlackWebhook)
		set("slack_webhook", team.SlackWebhook)
	}

	return nil
}

// Get returns a team. Non-public teams are only visible to their members.
func (s *TeamService) Get(ctx context.Context, viewerID, teamID string) (*models.Team, error) {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	if err := s.checkReadable(ctx, team, viewerID); err != nil {
		return nil, err
	}

	return team, nil
}

func (s *TeamService) checkReadable(ctx context.Context, team *models.Team, viewerID string) error {
	if team.Visibility == models.TeamPublic || (viewerID != "" && viewerID == team.OwnerID) {
		return nil
	}

	if viewerID == "" {
		return errTeamUnavailable
	}

	member, err := s.teams.FindMember(ctx, team.ID, viewerID)
	if err != nil {
		return err
	}

	if member == nil {
		return errTeamUnavailable
	}

	return nil
}

func (s *TeamService) List(ctx context.Context, filter repository.TeamFilter, page feed.Page) ([]models.Team, int64, error) {
	return s.teams.List(ctx, filter, page)
}

func (s *TeamService) Update(ctx context.Context, actorID, teamID string, in TeamInput) (*models.Team, error) {
	team, res, err := s.load(ctx, teamID, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Check(actorID, res, authz.Update, "You do not have permission to update this team"); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if err := applyTeamInput(team, in, updates); err != nil {
		return nil, err
	}

	if len(updates) == 0 {
		return nil, apperr.Validation("No valid fields to update")
	}

	if in.MaxMembers != nil && int64(*in.MaxMembers) < team.MemberCount {
		return nil, apperr.Validation("Max members cannot be lower than the current number of members")
	}

	if err := s.teams.Update(ctx, team, updates); err != nil {
		return nil, err
	}

	return team, nil
}

func (s *TeamService) Delete(ctx context.Context, actorID, teamID string) error {
	_, res, err := s.load(ctx, teamID, actorID)
	if err != nil {
		return err
	}

	if err := s.policy.Check(actorID, res, authz.Delete, "Only the team owner can delete this team"); err != nil {
		return err
	}

	return s.teams.Delete(ctx, teamID)
}

// load fetches the team and describes it from actorID's point of view.
func (s *TeamService) load(ctx context.Context, teamID, actorID string) (*models.Team, authz.Resource, error) {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, authz.Resource{}, err
	}

	res := authz.Resource{Kind: authz.KindTeam, OwnerID: team.OwnerID}

	member, err := s.teams.FindMember(ctx, team.ID, actorID)
	if err != nil {
		return nil, authz.Resource{}, err
	}

	if member != nil {
		res.ActorRole = string(member.Status)
	}

	return team, res, nil
}

// checkJoinable holds the eligibility rules shared by direct joins, join
// requests and request approval. Each rule fails with its own message.
func (s *TeamService) checkJoinable(ctx context.Context, team *models.Team, userID string) error {
	member, err := s.teams.FindMember(ctx, team.ID, userID)
	if err != nil {
		return err
	}

	switch {
	case member != nil:
		return errAlreadyMember
	case team.Visibility != models.TeamPublic:
		return errTeamNotPublic
	case !team.AllowJoinRequests:
		return errNoJoinRequests
	case !team.IsRecruiting:
		return errNotRecruiting
	}

	count, err := s.teams.CountMembers(ctx, team.ID)
	if err != nil {
		return err
	}

	if count >= int64(team.MaxMembers) {
		return errTeamFull
	}

	return nil
}

func translateMembershipError(err error) error {
	switch {
	case errors.Is(err, repository.ErrTeamFull):
		return errTeamFull
	case apperr.Is(err, apperr.KindConflict):
		return errAlreadyMember
	default:
		return err
	}
}

// Join adds userID to the team directly when every eligibility rule holds.
func (s *TeamService) Join(ctx context.Context, userID, teamID string) (*models.TeamMember, error) {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	if err := s.checkJoinable(ctx, team, userID); err != nil {
		return nil, err
	}

	member := &models.TeamMember{TeamID: team.ID, UserID: userID, Status: models.MemberMember}
	if err := s.teams.AddMember(ctx, member); err != nil {
		return nil, translateMembershipError(err)
	}

	s.notifyManagers(ctx, team, userID, models.NotifyTeamJoined, "A new member joined "+team.Name, member.ID)

	return member, nil
}

func (s *TeamService) RequestToJoin(ctx context.Context, userID, teamID, message string) (*models.TeamJoinRequest, error) {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	if err := s.checkJoinable(ctx, team, userID); err != nil {
		return nil, err
	}

	pending, err := s.teams.FindPendingJoinRequest(ctx, team.ID, userID)
	if err != nil {
		return nil, err
	}

	if pending != nil {
		return nil, apperr.Conflict("You already have a pending request to join this team")
	}

	req := &models.TeamJoinRequest{
		TeamID:  team.ID,
		UserID:  userID,
		Message: strings.TrimSpace(message),
		Status:  models.JoinRequestPending,
	}

	if err := s.teams.CreateJoinRequest(ctx, req); err != nil {
		return nil, err
	}

	s.notifyManagers(ctx, team, userID, models.NotifyTeamJoinRequest, "New request to join "+team.Name, req.ID)

	return req, nil
}

func (s *TeamService) ListJoinRequests(ctx context.Context, actorID, teamID string, status models.JoinRequestStatus, page feed.Page) ([]models.TeamJoinRequest, int64, error) {
	_, res, err := s.load(ctx, teamID, actorID)
	if err != nil {
		return nil, 0, err
	}

	if err := s.policy.Check(actorID, res, authz.ReviewRequests, "You do not have permission to review join requests for this team"); err != nil {
		return nil, 0, err
	}

	return s.teams.ListJoinRequests(ctx, teamID, status, page)
}

func (s *TeamService) ApproveRequest(ctx context.Context, actorID, teamID, requestID string) (*models.TeamJoinRequest, error) {
	team, req, err := s.reviewable(ctx, actorID, teamID, requestID)
	if err != nil {
		return nil, err
	}

	// The team may have changed since the request was filed.
	if err := s.checkJoinable(ctx, team, req.UserID); err != nil {
		return nil, err
	}

	if err := s.teams.ApproveJoinRequest(ctx, req, actorID); err != nil {
		return nil, translateMembershipError(err)
	}

	req.Status = models.JoinRequestApproved
	req.ReviewedBy = &actorID

	publish(ctx, s.publisher, events.Event{
		Type:       models.NotifyTeamRequestOutcome,
		ActorID:    actorID,
		Recipients: []string{req.UserID},
		EntityID:   req.ID,
		TeamID:     team.ID,
		Message:    "Your request to join " + team.Name + " was approved",
		Data:       map[string]interface{}{"status": req.Status},
	})

	return req, nil
}

func (s *TeamService) RejectRequest(ctx context.Context, actorID, teamID, requestID string) (*models.TeamJoinRequest, error) {
	team, req, err := s.reviewable(ctx, actorID, teamID, requestID)
	if err != nil {
		return nil, err
	}

	if err := s.teams.RejectJoinRequest(ctx, req, actorID); err != nil {
		return nil, err
	}

	req.Status = models.JoinRequestRejected
	req.ReviewedBy = &actorID

	publish(ctx, s.publisher, events.Event{
		Type:       models.NotifyTeamRequestOutcome,
		ActorID:    actorID,
		Recipients: []string{req.UserID},
		EntityID:   req.ID,
		TeamID:     team.ID,
		Message:    "Your request to join " + team.Name + " was declined",
		Data:       map[string]interface{}{"status": req.Status},
	})

	return req, nil
}

func (s *TeamService) reviewable(ctx context.Context, actorID, teamID, requestID string) (*models.Team, *models.TeamJoinRequest, error) {
	team, res, err := s.load(ctx, teamID, actorID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.policy.Check(actorID, res, authz.ReviewRequests, "You do not have permission to review join requests for this team"); err != nil {
		return nil, nil, err
	}

	req, err := s.teams.FindJoinRequest(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}

	if req.TeamID != team.ID {
		return nil, nil, apperr.NotFound("Join request not found")
	}

	if req.Status != models.JoinRequestPending {
		return nil, nil, apperr.Conflict("Join request has already been reviewed")
	}

	return team, req, nil
}

// Invite adds userID to the team on a manager's behalf. Recruiting flags do
// not apply but capacity does.
func (s *TeamService) Invite(ctx context.Context, actorID, teamID, userID string, status models.MemberStatus) (*models.TeamMember, error) {
	if status == "" {
		status = models.MemberMember
	}

	if !status.Valid() {
		return nil, apperr.Validation("Status must be one of ADMIN, MODERATOR or MEMBER")
	}

	team, res, err := s.load(ctx, teamID, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Check(actorID, res, authz.Invite, "You do not have permission to invite members to this team"); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	existing, err := s.teams.FindMember(ctx, team.ID, userID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return nil, apperr.Conflict("User is already a member of this team")
	}

	member := &models.TeamMember{TeamID: team.ID, UserID: userID, Status: status}
	if err := s.teams.AddMember(ctx, member); err != nil {
		if errors.Is(err, repository.ErrTeamFull) {
			return nil, errTeamFull
		}
		if apperr.Is(err, apperr.KindConflict) {
			return nil, apperr.Conflict("User is already a member of this team")
		}
		return nil, err
	}

	publish(ctx, s.publisher, events.Event{
		Type:       models.NotifyTeamInvited,
		ActorID:    actorID,
		Recipients: []string{userID},
		EntityID:   team.ID,
		TeamID:     team.ID,
		Message:    "You were added to " + team.Name,
	})

	return member, nil
}

// RemoveMember removes targetID. Removing yourself is leaving.
func (s *TeamService) RemoveMember(ctx context.Context, actorID, teamID, targetID string) error {
	team, res, err := s.load(ctx, teamID, actorID)
	if err != nil {
		return err
	}

	if err := s.policy.CheckRemoval(actorID, targetID, res); err != nil {
		return err
	}

	target, err := s.teams.FindMember(ctx, team.ID, targetID)
	if err != nil {
		return err
	}

	if target == nil {
		return apperr.NotFound("User is not a member of this team")
	}

	return s.teams.RemoveMember(ctx, team.ID, targetID)
}

func (s *TeamService) Leave(ctx context.Context, userID, teamID string) error {
	return s.RemoveMember(ctx, userID, teamID, userID)
}

func (s *TeamService) ChangeRole(ctx context.Context, actorID, teamID, targetID string, status models.MemberStatus) (*models.TeamMember, error) {
	if !status.Valid() {
		return nil, apperr.Validation("Status must be one of ADMIN, MODERATOR or MEMBER")
	}

	team, res, err := s.load(ctx, teamID, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.CheckRoleChange(actorID, targetID, res); err != nil {
		return nil, err
	}

	target, err := s.teams.FindMember(ctx, team.ID, targetID)
	if err != nil {
		return nil, err
	}

	if target == nil {
		return nil, apperr.NotFound("User is not a member of this team")
	}

	if err := s.teams.UpdateMemberStatus(ctx, team.ID, targetID, status); err != nil {
		return nil, err
	}
	target.Status = status

	publish(ctx, s.publisher, events.Event{
		Type:       models.NotifyTeamRoleChanged,
		ActorID:    actorID,
		Recipients: []string{targetID},
		EntityID:   team.ID,
		TeamID:     team.ID,
		Message:    "Your role in " + team.Name + " is now " + string(status),
	})

	return target, nil
}

func (s *TeamService) ListMembers(ctx context.Context, viewerID, teamID string, page feed.Page) ([]models.TeamMember, int64, error) {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, 0, err
	}

	if err := s.checkReadable(ctx, team, viewerID); err != nil {
		return nil, 0, err
	}

	return s.teams.ListMembers(ctx, team.ID, page)
}

func (s *TeamService) Follow(ctx context.Context, userID, teamID string) error {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return err
	}

	if err := s.checkReadable(ctx, team, userID); err != nil {
		return err
	}

	if err := s.teams.Follow(ctx, team.ID, userID); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return apperr.Conflict("You are already following this team")
		}
		return err
	}

	return nil
}

func (s *TeamService) Unfollow(ctx context.Context, userID, teamID string) error {
	if err := s.teams.Unfollow(ctx, teamID, userID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.NotFound("You are not following this team")
		}
		return err
	}

	return nil
}

func (s *TeamService) notifyManagers(ctx context.Context, team *models.Team, actorID string, kind models.NotificationType, message, entityID string) {
	managers, err := s.teams.ManagerIDs(ctx, team.ID)
	if err != nil {
		logger.Log.WithError(err).WithField("team_id", team.ID).Warn("failed to resolve team managers")
		return
	}

	publish(ctx, s.publisher, events.Event{
		Type:       kind,
		ActorID:    actorID,
		Recipients: append(managers, team.OwnerID),
		EntityID:   entityID,
		TeamID:     team.ID,
		Message:    message,
	})
}
