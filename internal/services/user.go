package services

import (
	"context"
	"strings"

	"github.com/lib/pq"
	"github.com/projectbuddy/projectbuddy/internal/apperr"
	"github.com/projectbuddy/projectbuddy/internal/auth"
	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"github.com/projectbuddy/projectbuddy/internal/repository"
)

const minPasswordLength = 8

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Headline string
}

// ProfileUpdate carries the profile fields to change. Nil fields are left
// untouched.
type ProfileUpdate struct {
	Name      *string
	Email     *string
	Headline  *string
	Bio       *string
	Location  *string
	AvatarURL *string
	Skills    []string
	Interests []string
}

type UserService struct {
	users  UserStore
	tokens *auth.TokenIssuer
}

func NewUserService(users UserStore, tokens *auth.TokenIssuer) *UserService {
	return &UserService{users: users, tokens: tokens}
}

// Register creates the account and returns a session token for it.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)

	if email == "" || name == "" {
		return nil, "", apperr.Validation("Name and email are required")
	}

	if len(in.Password) < minPasswordLength {
		return nil, "", apperr.Validation("Password must be at least 8 characters")
	}

	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, "", err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Headline:     strings.TrimSpace(in.Headline),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, "", apperr.Conflict("Email already exists")
		}
		return nil, "", err
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}

	return user, token, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, "", apperr.Unauthorized("Invalid email or password")
		}
		return nil, "", err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", apperr.Unauthorized("Invalid email or password")
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}

	return user, token, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("Name cannot be empty")
		}
		updates["name"] = name
	}

	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
			updates["email"] = email
		}
	}

	setString(updates, "headline", in.Headline)
	setString(updates, "bio", in.Bio)
	setString(updates, "location", in.Location)
	setString(updates, "avatar_url", in.AvatarURL)

	if in.Skills != nil {
		updates["skills"] = pq.StringArray(normalizeTags(in.Skills))
	}

	if in.Interests != nil {
		updates["interests"] = pq.StringArray(normalizeTags(in.Interests))
	}

	if len(updates) == 0 {
		return nil, apperr.Validation("No valid fields to update")
	}

	if err := s.users.Update(ctx, user, updates); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, id, current, next string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.PasswordHash, current) {
		return apperr.Validation("Current password is incorrect")
	}

	if len(next) < minPasswordLength {
		return apperr.Validation("Password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return apperr.Internal(err)
	}

	return s.users.Update(ctx, user, map[string]interface{}{"password_hash": hash})
}

// Delete soft-deletes the account after re-checking the password.
func (s *UserService) Delete(ctx context.Context, id, password string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return apperr.Validation("Incorrect password")
	}

	return s.users.Delete(ctx, user.ID)
}

func (s *UserService) Search(ctx context.Context, filter repository.UserFilter, page feed.Page) ([]models.User, int64, error) {
	return s.users.Search(ctx, filter, page)
}

func (s *UserService) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}

	if existing.ID != selfID {
		return apperr.Conflict("Email already exists")
	}

	return nil
}

func setString(updates map[string]interface{}, column string, value *string) {
	if value != nil {
		updates[column] = strings.TrimSpace(*value)
	}
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		key := strings.ToLower(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}

	return out
}
