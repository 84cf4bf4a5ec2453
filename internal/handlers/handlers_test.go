package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/projectbuddy/projectbuddy/internal/apperr"
	"github.com/projectbuddy/projectbuddy/internal/auth"
	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/middleware"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"github.com/projectbuddy/projectbuddy/internal/repository"
	"github.com/projectbuddy/projectbuddy/internal/services"
	"github.com/projectbuddy/projectbuddy/internal/types"
	"github.com/stretchr/testify/require"
)

// memUsers is a minimal services.UserStore for exercising the auth flow.
type memUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
	next  int
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*models.User{}}
}

func (m *memUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return apperr.Conflict("User already exists")
		}
	}

	m.next++
	user.ID = fmt.Sprintf("user-%d", m.next)
	m.users[user.ID] = user
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("User not found")
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (m *memUsers) Update(_ context.Context, user *models.User, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := updates["headline"].(string); ok {
		user.Headline = v
	}
	if v, ok := updates["password_hash"].(string); ok {
		user.PasswordHash = v
	}
	return nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.users, id)
	return nil
}

func (m *memUsers) Search(context.Context, repository.UserFilter, feed.Page) ([]models.User, int64, error) {
	return nil, 0, nil
}

func (m *memUsers) Suggestions(context.Context, []string, []string, []string, int) ([]models.User, error) {
	return nil, nil
}

type testServer struct {
	engine *gin.Engine
	users  *memUsers
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators())

	users := newMemUsers()
	tokens := auth.NewTokenIssuer("handler-secret", time.Hour)
	h := New(Services{Users: services.NewUserService(users, tokens)}, NewHub(nil), nil, CookieConfig{})
	authenticator := middleware.NewAuthenticator(tokens, users)

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", h.Logout)
	r.GET("/auth/me", authenticator.Required(), h.Me)
	r.PUT("/users/me", authenticator.Required(), h.UpdateProfile)
	r.PUT("/auth/password", authenticator.Required(), h.ChangePassword)
	r.POST("/posts/:id/reactions", authenticator.Required(), h.React)

	return &testServer{engine: r, users: users}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Error      string            `json:"error"`
	Data       json.RawMessage   `json:"data"`
	Pagination *types.Pagination `json:"pagination"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func (s *testServer) register(t *testing.T, name string) string {
	t.Helper()

	w := s.do(http.MethodPost, "/auth/register", "", gin.H{
		"name":     name,
		"email":    strings.ToLower(name) + "@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	return data.Token
}
