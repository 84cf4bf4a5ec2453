package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projectbuddy/projectbuddy/internal/apperr"
	"github.com/projectbuddy/projectbuddy/internal/auth"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"github.com/projectbuddy/projectbuddy/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers map[string]*models.User

func (s stubUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("User not found")
}

func newAuthEngine(t *testing.T) (*gin.Engine, *auth.TokenIssuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokenIssuer("middleware-secret", time.Hour)
	users := stubUsers{"u1": {Base: models.Base{ID: "u1"}, Name: "Ada", Email: "ada@example.com"}}
	authenticator := NewAuthenticator(tokens, users)

	whoami := func(ctx *gin.Context) {
		user, ok := ctx.Get(types.ContextUserKey)
		if !ok {
			ctx.String(http.StatusOK, "anonymous")
			return
		}
		ctx.String(http.StatusOK, user.(AuthenticatedUser).ID)
	}

	r := gin.New()
	r.GET("/required", authenticator.Required(), whoami)
	r.GET("/optional", authenticator.Optional(), whoami)
	return r, tokens
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequiredAcceptsHeaderCookieAndQuery(t *testing.T) {
	r, tokens := newAuthEngine(t)

	token, err := tokens.Generate("u1", "ada@example.com")
	require.NoError(t, err)

	cases := map[string]func(*http.Request){
		"bearer": func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) },
		"cookie": func(req *http.Request) { req.AddCookie(&http.Cookie{Name: types.TokenCookieName, Value: token}) },
		"query":  func(req *http.Request) { req.URL.RawQuery = "token=" + token },
	}

	for name, apply := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/required", nil)
			apply(req)

			w := serve(r, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "u1", w.Body.String())
		})
	}
}

func TestRequiredRejects(t *testing.T) {
	r, tokens := newAuthEngine(t)

	ghost, err := tokens.Generate("deleted-user", "ghost@example.com")
	require.NoError(t, err)

	foreign, err := auth.NewTokenIssuer("other-secret", time.Hour).Generate("u1", "ada@example.com")
	require.NoError(t, err)

	cases := map[string]struct {
		header  string
		message string
	}{
		"missing":        {"", "Authorization token is required"},
		"wrong scheme":   {"Basic abc", "Authorization header format must be Bearer {token}"},
		"foreign secret": {"Bearer " + foreign, "Invalid or expired token"},
		"deleted user":   {"Bearer " + ghost, "Invalid or expired token"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/required", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			w := serve(r, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"success":false,"message":"`+tc.message+`","error":"`+tc.message+`"}`, w.Body.String())
		})
	}
}

func TestOptionalLetsAnonymousThrough(t *testing.T) {
	r, tokens := newAuthEngine(t)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/optional", nil))
	assert.Equal(t, "anonymous", w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	token, err := tokens.Generate("u1", "ada@example.com")
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = serve(r, req)
	assert.Equal(t, "u1", w.Body.String())
}
