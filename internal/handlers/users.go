package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectbuddy/projectbuddy/internal/repository"
	"github.com/projectbuddy/projectbuddy/internal/services"
	"github.com/projectbuddy/projectbuddy/internal/utils"
)

type UpdateProfileRequest struct {
	Name      *string  `json:"name" binding:"omitempty,max=100"`
	Email     *string  `json:"email" binding:"omitempty,email"`
	Headline  *string  `json:"headline" binding:"omitempty,max=200"`
	Bio       *string  `json:"bio" binding:"omitempty,max=2000"`
	Location  *string  `json:"location" binding:"omitempty,max=100"`
	AvatarURL *string  `json:"avatarUrl" binding:"omitempty,url"`
	Skills    []string `json:"skills" binding:"omitempty,max=50,dive,max=50"`
	Interests []string `json:"interests" binding:"omitempty,max=50,dive,max=50"`
}

type UserSearchQuery struct {
	Query    string `form:"q"`
	Skill    string `form:"skill"`
	Location string `form:"location"`
}

func (h *Handler) GetUser(ctx *gin.Context) {
	user, err := h.Users.Get(ctx.Request.Context(), ctx.Param("id"))

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "User retrieved", user)
}

func (h *Handler) UpdateProfile(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var req UpdateProfileRequest

	if !bindJSON(ctx, &req) {
		return
	}

	user, err := h.Users.UpdateProfile(ctx.Request.Context(), id, services.ProfileUpdate{
		Name:      req.Name,
		Email:     req.Email,
		Headline:  req.Headline,
		Bio:       req.Bio,
		Location:  req.Location,
		AvatarURL: req.AvatarURL,
		Skills:    req.Skills,
		Interests: req.Interests,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Profile updated", user)
}

func (h *Handler) SearchUsers(ctx *gin.Context) {
	var query UserSearchQuery

	if !bindQuery(ctx, &query) {
		return
	}

	page := pageOf(ctx)
	users, total, err := h.Users.Search(ctx.Request.Context(), repository.UserFilter{
		Query:     query.Query,
		Skill:     query.Skill,
		Location:  query.Location,
		ExcludeID: utils.OptionalUserID(ctx),
	}, page)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respondPage(ctx, "Users retrieved", users, total, page)
}

func (h *Handler) ListUserPosts(ctx *gin.Context) {
	page := pageOf(ctx)
	result, err := h.Posts.ListByAuthor(ctx.Request.Context(), utils.OptionalUserID(ctx), ctx.Param("id"), page)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respondPage(ctx, "Posts retrieved", result.Items, result.Total, page)
}
