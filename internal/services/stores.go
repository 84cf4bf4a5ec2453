package services

import (
	"context"
	"time"

	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"github.com/projectbuddy/projectbuddy/internal/repository"
)

// The interfaces below are the slices of the repository layer each service
// depends on. The repository package's concrete types satisfy them.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, filter repository.UserFilter, page feed.Page) ([]models.User, int64, error)
	Suggestions(ctx context.Context, skills, interests, exclude []string, limit int) ([]models.User, error)
}

type ConnectionStore interface {
	Create(ctx context.Context, conn *models.Connection) error
	FindByID(ctx context.Context, id string) (*models.Connection, error)
	FindBetween(ctx context.Context, a, b string) (*models.Connection, error)
	Transition(ctx context.Context, id string, from, to models.ConnectionStatus) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, userID string, query repository.ConnectionQuery, page feed.Page) ([]models.Connection, int64, error)
	RelatedUserIDs(ctx context.Context, userID string) ([]string, error)
}

type GraphStore interface {
	SocialGraph(ctx context.Context, viewerID string) (feed.SocialGraph, error)
}

type TeamStore interface {
	Create(ctx context.Context, team *models.Team) error
	FindByID(ctx context.Context, id string) (*models.Team, error)
	Update(ctx context.Context, team *models.Team, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter repository.TeamFilter, page feed.Page) ([]models.Team, int64, error)

	FindMember(ctx context.Context, teamID, userID string) (*models.TeamMember, error)
	ListMembers(ctx context.Context, teamID string, page feed.Page) ([]models.TeamMember, int64, error)
	MemberIDs(ctx context.Context, teamID string) ([]string, error)
	ManagerIDs(ctx context.Context, teamID string) ([]string, error)
	CountMembers(ctx context.Context, teamID string) (int64, error)
	AddMember(ctx context.Context, member *models.TeamMember) error
	UpdateMemberStatus(ctx context.Context, teamID, userID string, status models.MemberStatus) error
	RemoveMember(ctx context.Context, teamID, userID string) error

	Follow(ctx context.Context, teamID, userID string) error
	Unfollow(ctx context.Context, teamID, userID string) error

	CreateJoinRequest(ctx context.Context, req *models.TeamJoinRequest) error
	FindJoinRequest(ctx context.Context, id string) (*models.TeamJoinRequest, error)
	FindPendingJoinRequest(ctx context.Context, teamID, userID string) (*models.TeamJoinRequest, error)
	ListJoinRequests(ctx context.Context, teamID string, status models.JoinRequestStatus, page feed.Page) ([]models.TeamJoinRequest, int64, error)
	ApproveJoinRequest(ctx context.Context, req *models.TeamJoinRequest, reviewerID string) error
	RejectJoinRequest(ctx context.Context, req *models.TeamJoinRequest, reviewerID string) error
}

type ProjectStore interface {
	Create(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, id string) (*models.Project, error)
	Update(ctx context.Context, project *models.Project, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter repository.ProjectFilter, page feed.Page) ([]models.Project, int64, error)

	FindMember(ctx context.Context, projectID, userID string) (*models.ProjectMembership, error)
	ListMembers(ctx context.Context, projectID string) ([]models.ProjectMembership, error)
	AddMember(ctx context.Context, member *models.ProjectMembership) error
	UpdateMemberRole(ctx context.Context, projectID, userID string, role models.ProjectRole) error
	RemoveMember(ctx context.Context, projectID, userID string) error
}

type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id string) (*models.Post, error)
	Update(ctx context.Context, post *models.Post, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	Feed(ctx context.Context, audience feed.Audience, filter feed.Filter, page feed.Page) (feed.Result, error)
	Trending(ctx context.Context, since time.Time, page feed.Page) (feed.Result, error)
}

type InteractionStore interface {
	React(ctx context.Context, reaction *models.Reaction) (bool, error)
	Unreact(ctx context.Context, userID, postID string) error
	AddComment(ctx context.Context, comment *models.Comment) error
	FindComment(ctx context.Context, id string) (*models.Comment, error)
	ListComments(ctx context.Context, postID string, page feed.Page) ([]models.Comment, int64, error)
	DeleteComment(ctx context.Context, comment *models.Comment) error
	Share(ctx context.Context, share *models.Share) error
	Bookmark(ctx context.Context, bookmark *models.Bookmark) error
	Unbookmark(ctx context.Context, userID, postID string) error
	ListBookmarks(ctx context.Context, userID string, page feed.Page) ([]models.Bookmark, int64, error)
}

type NotificationStore interface {
	CreateBatch(ctx context.Context, notifications []*models.Notification) error
	List(ctx context.Context, userID string, unreadOnly bool, page feed.Page) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
}

type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	Thread(ctx context.Context, a, b string, page feed.Page) ([]models.Message, int64, error)
	MarkThreadRead(ctx context.Context, receiverID, senderID string) (int64, error)
	Conversations(ctx context.Context, userID string) ([]models.Conversation, error)
}
