package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type NotificationListQuery struct {
	UnreadOnly bool `form:"unread"`
}

func (h *Handler) ListNotifications(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var query NotificationListQuery

	if !bindQuery(ctx, &query) {
		return
	}

	page := pageOf(ctx)
	notifications, total, err := h.Notifications.List(ctx.Request.Context(), id, query.UnreadOnly, page)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respondPage(ctx, "Notifications retrieved", notifications, total, page)
}

func (h *Handler) UnreadNotificationCount(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	count, err := h.Notifications.UnreadCount(ctx.Request.Context(), id)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Unread count retrieved", gin.H{"count": count})
}

func (h *Handler) MarkNotificationRead(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	if err := h.Notifications.MarkRead(ctx.Request.Context(), id, ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Notification marked as read", nil)
}

func (h *Handler) MarkAllNotificationsRead(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	updated, err := h.Notifications.MarkAllRead(ctx.Request.Context(), id)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "All notifications marked as read", gin.H{"updated": updated})
}

func (h *Handler) DeleteNotification(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	if err := h.Notifications.Delete(ctx.Request.Context(), id, ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Notification deleted", nil)
}
