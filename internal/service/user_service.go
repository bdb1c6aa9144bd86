package service

import (
	"context"
	"errors"
	"strings"

	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/akilliyazili/yazili-backend/internal/repository"
	"github.com/akilliyazili/yazili-backend/internal/response"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProfileCache caches profiles by identity subject.
type ProfileCache interface {
	GetProfile(ctx context.Context, subject string) (*model.User, error)
	SetProfile(ctx context.Context, subject string, u *model.User) error
	DeleteProfile(ctx context.Context, subject string) error
}

// UserService manages profiles and resolves token subjects to users.
type UserService struct {
	users UserStore
	cache ProfileCache
	log   zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, cache ProfileCache, log zerolog.Logger) *UserService {
	return &UserService{
		users: users,
		cache: cache,
		log:   log.With().Str("component", "user_service").Logger(),
	}
}

// Resolve maps an identity subject to its profile, read-through the cache.
// Cache failures fall back to the database.
func (s *UserService) Resolve(ctx context.Context, subject string) (*model.User, error) {
	if u, err := s.cache.GetProfile(ctx, subject); err != nil {
		s.log.Warn().Err(err).Msg("profile cache read failed")
	} else if u != nil {
		return u, nil
	}

	u, err := s.users.GetByExternalID(ctx, subject)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetProfile(ctx, subject, u); err != nil {
		s.log.Warn().Err(err).Msg("profile cache write failed")
	}
	return u, nil
}

// List returns a page of users, optionally filtered by role.
func (s *UserService) List(ctx context.Context, f model.UserFilter) ([]model.User, *response.Pagination, error) {
	f.PageQuery = f.Normalize()
	users, total, err := s.users.List(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, paginate(f.PageQuery, total), nil
}

// Get returns a profile by id.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// UpdateProfile edits the caller's own profile and drops its cached copy.
func (s *UserService) UpdateProfile(ctx context.Context, actor Actor, req *model.UpdateProfileRequest) (*model.User, error) {
	u, err := s.Get(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.ProfilePicture != nil {
		u.ProfilePicture = *req.ProfilePicture
	}

	if err := s.users.UpdateProfile(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.cache.DeleteProfile(ctx, u.ExternalID); err != nil {
		s.log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("failed to invalidate profile cache")
	}
	return u, nil
}
