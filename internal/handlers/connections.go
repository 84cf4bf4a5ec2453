package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"github.com/projectbuddy/projectbuddy/internal/repository"
	"github.com/projectbuddy/projectbuddy/internal/services"
)

type SendConnectionRequest struct {
	ReceiverID string `json:"receiverId" binding:"required"`
	Message    string `json:"message" binding:"max=500"`
}

type RespondConnectionRequest struct {
	Action string `json:"action" binding:"required,oneof=accept decline block"`
}

func (h *Handler) SendConnection(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var req SendConnectionRequest

	if !bindJSON(ctx, &req) {
		return
	}

	conn, err := h.Connections.Send(ctx.Request.Context(), id, req.ReceiverID, req.Message)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, "Connection request sent", conn)
}

func (h *Handler) RespondConnection(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var req RespondConnectionRequest

	if !bindJSON(ctx, &req) {
		return
	}

	conn, err := h.Connections.Respond(ctx.Request.Context(), id, ctx.Param("id"), services.ConnectionAction(req.Action))

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Connection request updated", conn)
}

func (h *Handler) DeleteConnection(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	if err := h.Connections.Delete(ctx.Request.Context(), id, ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Connection removed", nil)
}

// ListConnections answers the accepted connections of the caller.
func (h *Handler) ListConnections(ctx *gin.Context) {
	h.listConnections(ctx, repository.ConnectionQuery{Status: models.ConnectionAccepted})
}

func (h *Handler) ListPendingConnections(ctx *gin.Context) {
	h.listConnections(ctx, repository.ConnectionQuery{
		Status:    models.ConnectionPending,
		Direction: repository.DirectionIncoming,
	})
}

func (h *Handler) ListSentConnections(ctx *gin.Context) {
	h.listConnections(ctx, repository.ConnectionQuery{
		Status:    models.ConnectionPending,
		Direction: repository.DirectionOutgoing,
	})
}

func (h *Handler) listConnections(ctx *gin.Context, query repository.ConnectionQuery) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	page := pageOf(ctx)
	connections, total, err := h.Connections.List(ctx.Request.Context(), id, query, page)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respondPage(ctx, "Connections retrieved", connections, total, page)
}

func (h *Handler) ConnectionStatus(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	state, err := h.Connections.Status(ctx.Request.Context(), id, ctx.Param("userId"))

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Connection status retrieved", state)
}

func (h *Handler) ConnectionSuggestions(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	limit, _ := strconv.Atoi(ctx.Query("limit"))
	users, err := h.Connections.Suggestions(ctx.Request.Context(), id, limit)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Suggestions retrieved", users)
}
