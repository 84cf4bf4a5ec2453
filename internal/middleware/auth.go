package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/projectbuddy/projectbuddy/internal/auth"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"github.com/projectbuddy/projectbuddy/internal/types"
)

type AuthenticatedUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserLookup resolves the account behind a token. Deleted accounts must
// report an error.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type Authenticator struct {
	tokens *auth.TokenIssuer
	users  UserLookup
}

func NewAuthenticator(tokens *auth.TokenIssuer, users UserLookup) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Required rejects requests without a valid token.
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, err := extractToken(ctx)

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.Fail(err.Error()))
			return
		}

		user, ok := a.resolve(ctx, tokenString)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.Fail("Invalid or expired token"))
			return
		}

		ctx.Set(types.ContextUserKey, user)
		ctx.Next()
	}
}

// Optional identifies the caller when a valid token is sent and lets
// anonymous requests through otherwise.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, err := extractToken(ctx)

		if err == nil {
			if user, ok := a.resolve(ctx, tokenString); ok {
				ctx.Set(types.ContextUserKey, user)
			}
		}

		ctx.Next()
	}
}

func (a *Authenticator) resolve(ctx *gin.Context, tokenString string) (AuthenticatedUser, bool) {
	claims, err := a.tokens.Verify(tokenString)

	if err != nil {
		return AuthenticatedUser{}, false
	}

	user, err := a.users.FindByID(ctx.Request.Context(), claims.UserID)

	if err != nil {
		return AuthenticatedUser{}, false
	}

	return AuthenticatedUser{ID: user.ID, Name: user.Name, Email: user.Email}, true
}

type tokenError string

func (e tokenError) Error() string { return string(e) }

const (
	errTokenMissing tokenError = "Authorization token is required"
	errTokenFormat  tokenError = "Authorization header format must be Bearer {token}"
)

// extractToken reads the bearer header, then the session cookie, then the
// query string (browsers cannot set headers on websocket upgrades).
func extractToken(ctx *gin.Context) (string, error) {
	if authHeader := ctx.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", errTokenFormat
		}

		return parts[1], nil
	}

	if cookie, err := ctx.Cookie(types.TokenCookieName); err == nil && cookie != "" {
		return cookie, nil
	}

	if token := ctx.Query(types.TokenQueryParam); token != "" {
		return token, nil
	}

	return "", errTokenMissing
}
