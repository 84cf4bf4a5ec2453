package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"github.com/projectbuddy/projectbuddy/internal/repository"
	"github.com/projectbuddy/projectbuddy/internal/services"
	"github.com/projectbuddy/projectbuddy/internal/utils"
)

type ProjectRequest struct {
	Name        *string               `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string               `json:"description" binding:"omitempty,max=5000"`
	TeamID      *string               `json:"teamId"`
	Status      *models.ProjectStatus `json:"status" binding:"omitempty,project_status"`
	IsPublic    *bool                 `json:"isPublic"`
	Tags        []string              `json:"tags" binding:"omitempty,max=20,dive,max=50"`
}

func (r ProjectRequest) input() services.ProjectInput {
	return services.ProjectInput{
		Name:        r.Name,
		Description: r.Description,
		TeamID:      r.TeamID,
		Status:      r.Status,
		IsPublic:    r.IsPublic,
		Tags:        r.Tags,
	}
}

type ProjectListQuery struct {
	Query   string               `form:"q"`
	OwnerID string               `form:"ownerId"`
	TeamID  string               `form:"teamId"`
	Status  models.ProjectStatus `form:"status" binding:"omitempty,project_status"`
	Tag     string               `form:"tag"`
}

type AddProjectMemberRequest struct {
	UserID string             `json:"userId" binding:"required"`
	Role   models.ProjectRole `json:"role" binding:"omitempty,oneof=ADMIN MEMBER"`
}

type ChangeProjectRoleRequest struct {
	Role models.ProjectRole `json:"role" binding:"required,oneof=ADMIN MEMBER"`
}

func (h *Handler) CreateProject(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var req ProjectRequest

	if !bindJSON(ctx, &req) {
		return
	}

	project, err := h.Projects.Create(ctx.Request.Context(), id, req.input())

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, "Project created", project)
}

func (h *Handler) ListProjects(ctx *gin.Context) {
	var query ProjectListQuery

	if !bindQuery(ctx, &query) {
		return
	}

	page := pageOf(ctx)
	projects, total, err := h.Projects.List(ctx.Request.Context(), repository.ProjectFilter{
		Query:    query.Query,
		ViewerID: utils.OptionalUserID(ctx),
		OwnerID:  query.OwnerID,
		TeamID:   query.TeamID,
		Status:   query.Status,
		Tag:      query.Tag,
	}, page)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respondPage(ctx, "Projects retrieved", projects, total, page)
}

func (h *Handler) GetProject(ctx *gin.Context) {
	project, err := h.Projects.Get(ctx.Request.Context(), utils.OptionalUserID(ctx), ctx.Param("id"))

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Project retrieved", project)
}

func (h *Handler) UpdateProject(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var req ProjectRequest

	if !bindJSON(ctx, &req) {
		return
	}

	project, err := h.Projects.Update(ctx.Request.Context(), id, ctx.Param("id"), req.input())

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Project updated", project)
}

func (h *Handler) DeleteProject(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	if err := h.Projects.Delete(ctx.Request.Context(), id, ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Project deleted", nil)
}

func (h *Handler) ListProjectMembers(ctx *gin.Context) {
	members, err := h.Projects.ListMembers(ctx.Request.Context(), utils.OptionalUserID(ctx), ctx.Param("id"))

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Project members retrieved", members)
}

func (h *Handler) AddProjectMember(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var req AddProjectMemberRequest

	if !bindJSON(ctx, &req) {
		return
	}

	member, err := h.Projects.AddMember(ctx.Request.Context(), id, ctx.Param("id"), req.UserID, req.Role)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, "Member added", member)
}

func (h *Handler) ChangeProjectMemberRole(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var req ChangeProjectRoleRequest

	if !bindJSON(ctx, &req) {
		return
	}

	if err := h.Projects.ChangeRole(ctx.Request.Context(), id, ctx.Param("id"), ctx.Param("userId"), req.Role); err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Member role updated", nil)
}

func (h *Handler) RemoveProjectMember(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	if err := h.Projects.RemoveMember(ctx.Request.Context(), id, ctx.Param("id"), ctx.Param("userId")); err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Member removed", nil)
}
