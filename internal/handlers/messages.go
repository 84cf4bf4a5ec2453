package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type SendMessageRequest struct {
	ReceiverID string `json:"receiverId" binding:"required"`
	Content    string `json:"content" binding:"required,max=5000"`
}

func (h *Handler) SendMessage(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var req SendMessageRequest

	if !bindJSON(ctx, &req) {
		return
	}

	message, err := h.Messages.Send(ctx.Request.Context(), id, req.ReceiverID, req.Content)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, "Message sent", message)
}

func (h *Handler) ListConversations(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	conversations, err := h.Messages.Conversations(ctx.Request.Context(), id)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Conversations retrieved", conversations)
}

func (h *Handler) GetThread(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	page := pageOf(ctx)
	messages, total, err := h.Messages.Thread(ctx.Request.Context(), id, ctx.Param("userId"), page)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respondPage(ctx, "Messages retrieved", messages, total, page)
}

func (h *Handler) MarkThreadRead(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	updated, err := h.Messages.MarkRead(ctx.Request.Context(), id, ctx.Param("userId"))

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Conversation marked as read", gin.H{"updated": updated})
}
