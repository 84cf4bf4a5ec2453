package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/projectbuddy/projectbuddy/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterSetsSessionCookie(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/auth/register", "", gin.H{
		"name":     "Ada",
		"email":    "Ada@Example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	env := decode(t, w)
	assert.True(t, env.Success)
	assert.Equal(t, "Account created", env.Message)

	var data struct {
		User  struct{ Email string } `json:"user"`
		Token string                 `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "ada@example.com", data.User.Email)
	assert.NotEmpty(t, data.Token)
	assert.NotContains(t, string(env.Data), "passwordHash")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, types.TokenCookieName, cookies[0].Name)
	assert.Equal(t, data.Token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestRegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Ada")

	w := s.do(http.MethodPost, "/auth/register", "", gin.H{"name": "Ada", "email": "ada@example.com", "password": "correct-horse"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already exists", decode(t, w).Error)

	w = s.do(http.MethodPost, "/auth/register", "", gin.H{"name": "Bob", "email": "not-an-email", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "email must be a valid email address")
	assert.Contains(t, env.Error, "password must be at least 8 characters")
}

func TestLoginAndMe(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Ada")

	w := s.do(http.MethodPost, "/auth/login", "", gin.H{"email": "ada@example.com", "password": "wrong-horse"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decode(t, w).Error)

	w = s.do(http.MethodPost, "/auth/login", "", gin.H{"email": "ada@example.com", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))

	w = s.do(http.MethodGet, "/auth/me", data.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, "Profile retrieved", env.Message)
	assert.Contains(t, string(env.Data), `"email":"ada@example.com"`)

	w = s.do(http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestProfileAndPasswordEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "Ada")

	w := s.do(http.MethodPut, "/users/me", token, gin.H{"headline": "Analyst"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(decode(t, w).Data), `"headline":"Analyst"`)

	w = s.do(http.MethodPut, "/users/me", token, gin.H{"avatarUrl": "not a url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "avatarUrl has an invalid value", decode(t, w).Error)

	w = s.do(http.MethodPut, "/auth/password", token, gin.H{"currentPassword": "nope", "newPassword": "battery-staple"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Current password is incorrect", decode(t, w).Error)

	w = s.do(http.MethodPut, "/auth/password", token, gin.H{"currentPassword": "correct-horse", "newPassword": "battery-staple"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReactionTypeIsValidatedBeforeTheService(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "Ada")

	w := s.do(http.MethodPost, "/posts/p1/reactions", token, gin.H{"type": "dislike"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "type has an invalid value", decode(t, w).Error)
}
