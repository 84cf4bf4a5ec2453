package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"github.com/projectbuddy/projectbuddy/internal/services"
	"github.com/projectbuddy/projectbuddy/internal/utils"
)

type CreatePostRequest struct {
	Content    string            `json:"content" binding:"required,max=5000"`
	Type       models.PostType   `json:"type" binding:"omitempty,post_type"`
	Visibility models.Visibility `json:"visibility" binding:"omitempty,visibility"`
	TeamID     string            `json:"teamId"`
	ProjectID  string            `json:"projectId"`
	Hashtags   []string          `json:"hashtags" binding:"omitempty,max=30,dive,max=50"`
}

type UpdatePostRequest struct {
	Content    *string            `json:"content" binding:"omitempty,max=5000"`
	Type       *models.PostType   `json:"type" binding:"omitempty,post_type"`
	Visibility *models.Visibility `json:"visibility" binding:"omitempty,visibility"`
	Hashtags   []string           `json:"hashtags" binding:"omitempty,max=30,dive,max=50"`
}

type PostFilterQuery struct {
	Type       models.PostType   `form:"type" binding:"omitempty,post_type"`
	AuthorID   string            `form:"authorId"`
	TeamID     string            `form:"teamId"`
	ProjectID  string            `form:"projectId"`
	Hashtag    string            `form:"hashtag"`
	Visibility models.Visibility `form:"visibility" binding:"omitempty,visibility"`
	Search     string            `form:"search"`
}

func (q PostFilterQuery) filter() feed.Filter {
	return feed.Filter{
		Type:       q.Type,
		AuthorID:   q.AuthorID,
		TeamID:     q.TeamID,
		ProjectID:  q.ProjectID,
		Hashtag:    q.Hashtag,
		Visibility: q.Visibility,
		Search:     q.Search,
	}
}

type ReactRequest struct {
	Type models.ReactionType `json:"type" binding:"required,reaction"`
}

type CommentRequest struct {
	Content  string `json:"content" binding:"required,max=2000"`
	ParentID string `json:"parentId"`
}

type ShareRequest struct {
	Comment string `json:"comment" binding:"max=500"`
}

// Feed answers the caller's personalised feed.
func (h *Handler) Feed(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var query PostFilterQuery

	if !bindQuery(ctx, &query) {
		return
	}

	page := pageOf(ctx)
	result, err := h.Posts.Feed(ctx.Request.Context(), id, query.filter(), page)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respondPage(ctx, "Feed retrieved", result.Items, result.Total, page)
}

func (h *Handler) Trending(ctx *gin.Context) {
	page := pageOf(ctx)
	result, err := h.Posts.Trending(ctx.Request.Context(), feed.ParseTimeframe(ctx.Query("timeframe")), page)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respondPage(ctx, "Trending posts retrieved", result.Items, result.Total, page)
}

// ListPosts is the filtered listing. Anonymous callers see public posts.
func (h *Handler) ListPosts(ctx *gin.Context) {
	var query PostFilterQuery

	if !bindQuery(ctx, &query) {
		return
	}

	page := pageOf(ctx)
	result, err := h.Posts.List(ctx.Request.Context(), utils.OptionalUserID(ctx), query.filter(), page)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respondPage(ctx, "Posts retrieved", result.Items, result.Total, page)
}

func (h *Handler) GetPost(ctx *gin.Context) {
	post, err := h.Posts.Get(ctx.Request.Context(), utils.OptionalUserID(ctx), ctx.Param("id"))

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Post retrieved", post)
}

func (h *Handler) CreatePost(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var req CreatePostRequest

	if !bindJSON(ctx, &req) {
		return
	}

	post, err := h.Posts.Create(ctx.Request.Context(), id, services.PostInput{
		Content:    req.Content,
		Type:       req.Type,
		Visibility: req.Visibility,
		TeamID:     req.TeamID,
		ProjectID:  req.ProjectID,
		Hashtags:   req.Hashtags,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, "Post created", post)
}

func (h *Handler) UpdatePost(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var req UpdatePostRequest

	if !bindJSON(ctx, &req) {
		return
	}

	post, err := h.Posts.Update(ctx.Request.Context(), id, ctx.Param("id"), services.PostUpdate{
		Content:    req.Content,
		Type:       req.Type,
		Visibility: req.Visibility,
		Hashtags:   req.Hashtags,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Post updated", post)
}

func (h *Handler) DeletePost(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	if err := h.Posts.Delete(ctx.Request.Context(), id, ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Post deleted", nil)
}

func (h *Handler) React(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var req ReactRequest

	if !bindJSON(ctx, &req) {
		return
	}

	reaction, err := h.Posts.React(ctx.Request.Context(), id, ctx.Param("id"), req.Type)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Reaction saved", reaction)
}

func (h *Handler) Unreact(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	if err := h.Posts.Unreact(ctx.Request.Context(), id, ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Reaction removed", nil)
}

func (h *Handler) ListComments(ctx *gin.Context) {
	page := pageOf(ctx)
	comments, total, err := h.Posts.ListComments(ctx.Request.Context(), utils.OptionalUserID(ctx), ctx.Param("id"), page)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respondPage(ctx, "Comments retrieved", comments, total, page)
}

func (h *Handler) CreateComment(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var req CommentRequest

	if !bindJSON(ctx, &req) {
		return
	}

	comment, err := h.Posts.Comment(ctx.Request.Context(), id, ctx.Param("id"), req.Content, req.ParentID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, "Comment added", comment)
}

func (h *Handler) DeleteComment(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	if err := h.Posts.DeleteComment(ctx.Request.Context(), id, ctx.Param("commentId")); err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Comment deleted", nil)
}

func (h *Handler) SharePost(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var req ShareRequest

	if !bindJSON(ctx, &req) {
		return
	}

	share, err := h.Posts.Share(ctx.Request.Context(), id, ctx.Param("id"), req.Comment)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, "Post shared", share)
}

func (h *Handler) BookmarkPost(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	bookmark, err := h.Posts.Bookmark(ctx.Request.Context(), id, ctx.Param("id"))

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, "Post bookmarked", bookmark)
}

func (h *Handler) UnbookmarkPost(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	if err := h.Posts.Unbookmark(ctx.Request.Context(), id, ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Bookmark removed", nil)
}

func (h *Handler) ListBookmarks(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	page := pageOf(ctx)
	bookmarks, total, err := h.Posts.ListBookmarks(ctx.Request.Context(), id, page)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respondPage(ctx, "Bookmarks retrieved", bookmarks, total, page)
}
