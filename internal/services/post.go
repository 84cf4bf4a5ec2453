package services

import (
	"context"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/projectbuddy/projectbuddy/internal/apperr"
	"github.com/projectbuddy/projectbuddy/internal/events"
	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/logger"
	"github.com/projectbuddy/projectbuddy/internal/models"
)

const previewLength = 140

type PostInput struct {
	Content    string
	Type       models.PostType
	Visibility models.Visibility
	TeamID     string
	ProjectID  string
	Hashtags   []string
}

// PostUpdate carries the fields to change. Nil fields are left untouched.
type PostUpdate struct {
	Content    *string
	Type       *models.PostType
	Visibility *models.Visibility
	Hashtags   []string
}

type PostService struct {
	posts        PostStore
	interactions InteractionStore
	graph        GraphStore
	teams        TeamStore
	projects     ProjectStore
	publisher    Publisher
	now          func() time.Time
}

func NewPostService(posts PostStore, interactions InteractionStore, graph GraphStore, teams TeamStore, projects ProjectStore, publisher Publisher) *PostService {
	return &PostService{
		posts:        posts,
		interactions: interactions,
		graph:        graph,
		teams:        teams,
		projects:     projects,
		publisher:    publisher,
		now:          time.Now,
	}
}

// audience resolves what viewerID may see. An empty viewer is anonymous.
func (s *PostService) audience(ctx context.Context, viewerID string) (feed.Audience, error) {
	if viewerID == "" {
		return feed.Anonymous(), nil
	}

	graph, err := s.graph.SocialGraph(ctx, viewerID)
	if err != nil {
		return feed.Audience{}, err
	}

	return feed.NewAudience(graph), nil
}

// Feed is the viewer's home feed: their own posts, their connections'
// posts, posts in teams they belong to or follow, and public posts.
func (s *PostService) Feed(ctx context.Context, viewerID string, filter feed.Filter, page feed.Page) (feed.Result, error) {
	if viewerID == "" {
		return feed.Result{}, apperr.Unauthorized("Authentication required")
	}

	return s.List(ctx, viewerID, filter, page)
}

// List is a filtered listing over the posts viewerID may see.
func (s *PostService) List(ctx context.Context, viewerID string, filter feed.Filter, page feed.Page) (feed.Result, error) {
	audience, err := s.audience(ctx, viewerID)
	if err != nil {
		return feed.Result{}, err
	}

	return s.posts.Feed(ctx, audience, filter, page)
}

func (s *PostService) ListByAuthor(ctx context.Context, viewerID, authorID string, page feed.Page) (feed.Result, error) {
	return s.List(ctx, viewerID, feed.Filter{AuthorID: authorID}, page)
}

func (s *PostService) Trending(ctx context.Context, timeframe feed.Timeframe, page feed.Page) (feed.Result, error) {
	return s.posts.Trending(ctx, timeframe.Since(s.now()), page)
}

// Get returns the post if viewerID may see it. Invisible posts are reported
// as not found.
func (s *PostService) Get(ctx context.Context, viewerID, postID string) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	audience, err := s.audience(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	if !audience.Allows(post) {
		return nil, apperr.NotFound("Post not found")
	}

	return post, nil
}

func (s *PostService) Create(ctx context.Context, authorID string, in PostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apperr.Validation("Post content is required")
	}

	post := &models.Post{
		AuthorID:   authorID,
		Type:       models.PostGeneral,
		Visibility: models.VisibilityConnections,
		Content:    content,
		Hashtags:   pq.StringArray(feed.ExtractHashtags(content, in.Hashtags)),
	}

	if in.Type != "" {
		if !in.Type.Valid() {
			return nil, apperr.Validation("Invalid post type")
		}
		post.Type = in.Type
	}

	if in.Visibility != "" {
		if !in.Visibility.Valid() {
			return nil, apperr.Validation("Invalid post visibility")
		}
		post.Visibility = in.Visibility
	}

	var team *models.Team
	if in.TeamID != "" {
		var err error
		if team, err = s.teams.FindByID(ctx, in.TeamID); err != nil {
			return nil, err
		}

		member, err := s.teams.FindMember(ctx, team.ID, authorID)
		if err != nil {
			return nil, err
		}
		if member == nil {
			return nil, apperr.Forbidden("You must be a member of the team to post in it")
		}

		post.TeamID = &team.ID
	} else if post.Visibility == models.VisibilityTeam {
		return nil, apperr.Validation("Team posts must specify a team")
	}

	if in.ProjectID != "" {
		member, err := s.projects.FindMember(ctx, in.ProjectID, authorID)
		if err != nil {
			return nil, err
		}
		if member == nil {
			return nil, apperr.Forbidden("You must be a member of the project to post about it")
		}

		projectID := in.ProjectID
		post.ProjectID = &projectID
	} else if post.Visibility == models.VisibilityProject {
		return nil, apperr.Validation("Project posts must specify a project")
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	if team != nil {
		s.notifyTeam(ctx, team, post)
	}

	return post, nil
}

func (s *PostService) notifyTeam(ctx context.Context, team *models.Team, post *models.Post) {
	members, err := s.teams.MemberIDs(ctx, team.ID)
	if err != nil {
		logger.Log.WithError(err).WithField("team_id", team.ID).Warn("failed to resolve team members")
		return
	}

	author := ""
	if post.Author != nil {
		author = post.Author.Name
	}

	publish(ctx, s.publisher, events.Event{
		Type:       models.NotifyTeamPost,
		ActorID:    post.AuthorID,
		Recipients: members,
		EntityID:   post.ID,
		TeamID:     team.ID,
		Message:    "New post in " + team.Name,
		Data: map[string]interface{}{
			"author":  author,
			"preview": preview(post.Content),
			"type":    string(post.Type),
		},
	})
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength]) + "..."
}

func (s *PostService) Update(ctx context.Context, actorID, postID string, in PostUpdate) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != actorID {
		return nil, apperr.Forbidden("You can only update your own posts")
	}

	updates := make(map[string]interface{})

	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if content == "" {
			return nil, apperr.Validation("Post content is required")
		}
		updates["content"] = content
		updates["hashtags"] = pq.StringArray(feed.ExtractHashtags(content, in.Hashtags))
	} else if in.Hashtags != nil {
		updates["hashtags"] = pq.StringArray(feed.ExtractHashtags(post.Content, in.Hashtags))
	}

	if in.Type != nil {
		if !in.Type.Valid() {
			return nil, apperr.Validation("Invalid post type")
		}
		updates["type"] = *in.Type
	}

	if in.Visibility != nil {
		if !in.Visibility.Valid() {
			return nil, apperr.Validation("Invalid post visibility")
		}
		updates["visibility"] = *in.Visibility
	}

	if len(updates) == 0 {
		return nil, apperr.Validation("No valid fields to update")
	}

	if err := s.posts.Update(ctx, post, updates); err != nil {
		return nil, err
	}

	return post, nil
}

func (s *PostService) Delete(ctx context.Context, actorID, postID string) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return err
	}

	if post.AuthorID != actorID {
		return apperr.Forbidden("You can only delete your own posts")
	}

	return s.posts.Delete(ctx, post.ID)
}

func (s *PostService) React(ctx context.Context, userID, postID string, reaction models.ReactionType) (*models.Reaction, error) {
	if reaction == "" {
		reaction = models.ReactionLike
	}

	if !reaction.Valid() {
		return nil, apperr.Validation("Invalid reaction type")
	}

	post, err := s.Get(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	r := &models.Reaction{UserID: userID, PostID: post.ID, Type: reaction}

	created, err := s.interactions.React(ctx, r)
	if err != nil {
		return nil, err
	}

	if created {
		publish(ctx, s.publisher, events.Event{
			Type:       models.NotifyPostReaction,
			ActorID:    userID,
			Recipients: []string{post.AuthorID},
			EntityID:   post.ID,
			Message:    "Someone reacted to your post",
			Data:       map[string]interface{}{"reaction": reaction},
		})
	}

	return r, nil
}

func (s *PostService) Unreact(ctx context.Context, userID, postID string) error {
	if err := s.interactions.Unreact(ctx, userID, postID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.NotFound("You have not reacted to this post")
		}
		return err
	}

	return nil
}

// Comment adds a comment. A reply to a reply is attached to the top-level
// comment so threads stay one level deep.
func (s *PostService) Comment(ctx context.Context, userID, postID, content, parentID string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("Comment content is required")
	}

	post, err := s.Get(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: post.ID, AuthorID: userID, Content: content}
	recipients := []string{post.AuthorID}

	if parentID != "" {
		parent, err := s.interactions.FindComment(ctx, parentID)
		if err != nil {
			return nil, err
		}

		if parent.PostID != post.ID {
			return nil, apperr.Validation("Parent comment belongs to a different post")
		}

		root := parent.ID
		if parent.ParentID != nil {
			root = *parent.ParentID
		}
		comment.ParentID = &root
		recipients = append(recipients, parent.AuthorID)
	}

	if err := s.interactions.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, events.Event{
		Type:       models.NotifyPostComment,
		ActorID:    userID,
		Recipients: recipients,
		EntityID:   post.ID,
		Message:    "New comment on a post you follow",
		Data:       map[string]interface{}{"commentId": comment.ID, "preview": preview(content)},
	})

	return comment, nil
}

func (s *PostService) ListComments(ctx context.Context, viewerID, postID string, page feed.Page) ([]models.Comment, int64, error) {
	post, err := s.Get(ctx, viewerID, postID)
	if err != nil {
		return nil, 0, err
	}

	return s.interactions.ListComments(ctx, post.ID, page)
}

// DeleteComment lets the comment author or the post author remove a comment.
func (s *PostService) DeleteComment(ctx context.Context, userID, commentID string) error {
	comment, err := s.interactions.FindComment(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.AuthorID != userID {
		post, err := s.posts.FindByID(ctx, comment.PostID)
		if err != nil {
			return err
		}
		if post.AuthorID != userID {
			return apperr.Forbidden("You can only delete your own comments")
		}
	}

	return s.interactions.DeleteComment(ctx, comment)
}

func (s *PostService) Share(ctx context.Context, userID, postID, comment string) (*models.Share, error) {
	post, err := s.Get(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	share := &models.Share{UserID: userID, PostID: post.ID, Comment: strings.TrimSpace(comment)}
	if err := s.interactions.Share(ctx, share); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, apperr.Conflict("You have already shared this post")
		}
		return nil, err
	}

	publish(ctx, s.publisher, events.Event{
		Type:       models.NotifyPostShare,
		ActorID:    userID,
		Recipients: []string{post.AuthorID},
		EntityID:   post.ID,
		Message:    "Someone shared your post",
	})

	return share, nil
}

func (s *PostService) Bookmark(ctx context.Context, userID, postID string) (*models.Bookmark, error) {
	post, err := s.Get(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	bookmark := &models.Bookmark{UserID: userID, PostID: post.ID}
	if err := s.interactions.Bookmark(ctx, bookmark); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, apperr.Conflict("Post is already bookmarked")
		}
		return nil, err
	}

	return bookmark, nil
}

func (s *PostService) Unbookmark(ctx context.Context, userID, postID string) error {
	if err := s.interactions.Unbookmark(ctx, userID, postID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.NotFound("Post is not bookmarked")
		}
		return err
	}

	return nil
}

func (s *PostService) ListBookmarks(ctx context.Context, userID string, page feed.Page) ([]models.Bookmark, int64, error) {
	return s.interactions.ListBookmarks(ctx, userID, page)
}
