package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"github.com/projectbuddy/projectbuddy/internal/services"
	"github.com/projectbuddy/projectbuddy/internal/types"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Headline string `json:"headline" binding:"max=200"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

type DeleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (h *Handler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !bindJSON(ctx, &req) {
		return
	}

	user, token, err := h.Users.Register(ctx.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Headline: req.Headline,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	h.setSessionCookie(ctx, token)
	respond(ctx, http.StatusCreated, "Account created", sessionResponse{User: user, Token: token})
}

func (h *Handler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !bindJSON(ctx, &req) {
		return
	}

	user, token, err := h.Users.Login(ctx.Request.Context(), req.Email, req.Password)

	if err != nil {
		respondError(ctx, err)
		return
	}

	h.setSessionCookie(ctx, token)
	respond(ctx, http.StatusOK, "Logged in", sessionResponse{User: user, Token: token})
}

func (h *Handler) Logout(ctx *gin.Context) {
	h.clearSessionCookie(ctx)
	respond(ctx, http.StatusOK, "Logged out", nil)
}

func (h *Handler) Me(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	user, err := h.Users.Get(ctx.Request.Context(), id)

	if err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Profile retrieved", user)
}

func (h *Handler) ChangePassword(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var req ChangePasswordRequest

	if !bindJSON(ctx, &req) {
		return
	}

	if err := h.Users.ChangePassword(ctx.Request.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Password updated", nil)
}

func (h *Handler) DeleteAccount(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	var req DeleteAccountRequest

	if !bindJSON(ctx, &req) {
		return
	}

	if err := h.Users.Delete(ctx.Request.Context(), id, req.Password); err != nil {
		respondError(ctx, err)
		return
	}

	h.clearSessionCookie(ctx)
	respond(ctx, http.StatusOK, "Account deleted", nil)
}

func (h *Handler) setSessionCookie(ctx *gin.Context, token string) {
	http.SetCookie(ctx.Writer, h.sessionCookie(token, int(types.TokenCookieAge.Seconds())))
}

func (h *Handler) clearSessionCookie(ctx *gin.Context) {
	http.SetCookie(ctx.Writer, h.sessionCookie("", -1))
}

func (h *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if h.cookie.Secure {
		sameSite = http.SameSiteNoneMode
	}

	return &http.Cookie{
		Name:     types.TokenCookieName,
		Value:    value,
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   maxAge,
		Secure:   h.cookie.Secure,
		HttpOnly: true,
		SameSite: sameSite,
	}
}
