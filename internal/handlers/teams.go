package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"github.com/projectbuddy/projectbuddy/internal/repository"
	"github.com/projectbuddy/projectbuddy/internal/services"
	"github.com/projectbuddy/projectbuddy/internal/utils"
)

type TeamRequest struct {
	Name              *string                `json:"name" binding:"omitempty,min=1,max=100"`
	Description       *string                `json:"description" binding:"omitempty,max=2000"`
	Visibility        *models.TeamVisibility `json:"visibility" binding:"omitempty,oneof=PUBLIC PRIVATE INVITE_ONLY"`
	AllowJoinRequests *bool                  `json:"allowJoinRequests"`
	IsRecruiting      *bool                  `json:"isRecruiting"`
	MaxMembers        *int                   `json:"maxMembers" binding:"omitempty,min=1,max=10000"`
	DiscordWebhook    *string                `json:"discordWebhook" binding:"omitempty,url"`
	SlackWebhook      *string                `json:"slackWebhook" binding:"omitempty,url"`
}

func (r TeamRequest) input() services.TeamInput {
	return services.TeamInput{
		Name:              r.Name,
		Description:       r.Description,
		Visibility:        r.Visibility,
		AllowJoinRequests: r.AllowJoinRequests,
		IsRecruiting:      r.IsRecruiting,
		MaxMembers:        r.MaxMembers,
		DiscordWebhook:    r.DiscordWebhook,
		SlackWebhook:      r.SlackWebhook,
	}
}

type TeamListQuery struct {
	Query      string                `form:"q"`
	Visibility models.TeamVisibility `form:"visibility" binding:"omitempty,oneof=PUBLIC PRIVATE INVITE_ONLY"`
	Recruiting *bool                 `form:"recruiting"`
}

type JoinRequestRequest struct {
	Message string `json:"message" binding:"max=500"`
}

type InviteMemberRequest struct {
	UserID string              `json:"userId" binding:"required"`
	Status models.MemberStatus `json:"status" binding:"omitempty,member_status"`
}

type ChangeMemberRoleRequest struct {
	Status models.MemberStatus `json:"status" binding:"required,member_status"`
}

type JoinRequestListQuery struct {
	Status models.JoinRequestStatus `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

func (h *Handler) CreateTeam(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var req TeamRequest

	if !bindJSON(ctx, &req) {
		return
	}

	team, err := h.Teams.Create(ctx.Request.Context(), id, req.input())

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, "Team created", team)
}

func (h *Handler) ListTeams(ctx *gin.Context) {
	var query TeamListQuery

	if !bindQuery(ctx, &query) {
		return
	}

	page := pageOf(ctx)
	teams, total, err := h.Teams.List(ctx.Request.Context(), repository.TeamFilter{
		Query:      query.Query,
		ViewerID:   utils.OptionalUserID(ctx),
		Visibility: query.Visibility,
		Recruiting: query.Recruiting,
	}, page)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respondPage(ctx, "Teams retrieved", teams, total, page)
}

func (h *Handler) GetTeam(ctx *gin.Context) {
	team, err := h.Teams.Get(ctx.Request.Context(), utils.OptionalUserID(ctx), ctx.Param("id"))

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Team retrieved", team)
}

func (h *Handler) UpdateTeam(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var req TeamRequest

	if !bindJSON(ctx, &req) {
		return
	}

	team, err := h.Teams.Update(ctx.Request.Context(), id, ctx.Param("id"), req.input())

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Team updated", team)
}

func (h *Handler) DeleteTeam(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	if err := h.Teams.Delete(ctx.Request.Context(), id, ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Team deleted", nil)
}

func (h *Handler) JoinTeam(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	member, err := h.Teams.Join(ctx.Request.Context(), id, ctx.Param("id"))

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, "Joined team", member)
}

func (h *Handler) RequestToJoinTeam(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var req JoinRequestRequest

	if !bindJSON(ctx, &req) {
		return
	}

	request, err := h.Teams.RequestToJoin(ctx.Request.Context(), id, ctx.Param("id"), req.Message)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, "Join request sent", request)
}

func (h *Handler) ListJoinRequests(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var query JoinRequestListQuery

	if !bindQuery(ctx, &query) {
		return
	}

	page := pageOf(ctx)
	requests, total, err := h.Teams.ListJoinRequests(ctx.Request.Context(), id, ctx.Param("id"), query.Status, page)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respondPage(ctx, "Join requests retrieved", requests, total, page)
}

func (h *Handler) ApproveJoinRequest(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	request, err := h.Teams.ApproveRequest(ctx.Request.Context(), id, ctx.Param("id"), ctx.Param("requestId"))

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Join request approved", request)
}

func (h *Handler) RejectJoinRequest(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	request, err := h.Teams.RejectRequest(ctx.Request.Context(), id, ctx.Param("id"), ctx.Param("requestId"))

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Join request rejected", request)
}

func (h *Handler) InviteTeamMember(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var req InviteMemberRequest

	if !bindJSON(ctx, &req) {
		return
	}

	member, err := h.Teams.Invite(ctx.Request.Context(), id, ctx.Param("id"), req.UserID, req.Status)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, "Member added", member)
}

func (h *Handler) RemoveTeamMember(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	if err := h.Teams.RemoveMember(ctx.Request.Context(), id, ctx.Param("id"), ctx.Param("userId")); err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Member removed", nil)
}

func (h *Handler) LeaveTeam(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	if err := h.Teams.Leave(ctx.Request.Context(), id, ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Left team", nil)
}

func (h *Handler) ChangeTeamMemberRole(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var req ChangeMemberRoleRequest

	if !bindJSON(ctx, &req) {
		return
	}

	member, err := h.Teams.ChangeRole(ctx.Request.Context(), id, ctx.Param("id"), ctx.Param("userId"), req.Status)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Member role updated", member)
}

func (h *Handler) ListTeamMembers(ctx *gin.Context) {
	page := pageOf(ctx)
	members, total, err := h.Teams.ListMembers(ctx.Request.Context(), utils.OptionalUserID(ctx), ctx.Param("id"), page)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respondPage(ctx, "Team members retrieved", members, total, page)
}

func (h *Handler) FollowTeam(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	if err := h.Teams.Follow(ctx.Request.Context(), id, ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Following team", nil)
}

func (h *Handler) UnfollowTeam(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	if err := h.Teams.Unfollow(ctx.Request.Context(), id, ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Unfollowed team", nil)
}

// ListTeamPosts lists a team's posts the caller may see.
func (h *Handler) ListTeamPosts(ctx *gin.Context) {
	page := pageOf(ctx)
	result, err := h.Posts.List(ctx.Request.Context(), utils.OptionalUserID(ctx), feed.Filter{TeamID: ctx.Param("id")}, page)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respondPage(ctx, "Team posts retrieved", result.Items, result.Total, page)
}
