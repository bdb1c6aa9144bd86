package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akilliyazili/yazili-backend/internal/identity"
	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/akilliyazili/yazili-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email or identity already registered")
	ErrCredentialsMissing = errors.New("credentials missing for the configured provider")
)

// UserStore is the user persistence used by the auth and user services.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, f model.UserFilter) ([]model.User, int, error)
	UpdateProfile(ctx context.Context, u *model.User) error
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}

// SessionStore revokes tokens and forgets cached profiles on logout.
type SessionStore interface {
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	DeleteProfile(ctx context.Context, subject string) error
}

// AuthService registers users and logs them in against the configured
// identity provider. issuer is nil when tokens come from an external provider.
type AuthService struct {
	users    UserStore
	verifier identity.Verifier
	issuer   identity.Issuer
	sessions SessionStore
	cost     int
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users UserStore,
	verifier identity.Verifier,
	issuer identity.Issuer,
	sessions SessionStore,
	bcryptCost int,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		verifier: verifier,
		issuer:   issuer,
		sessions: sessions,
		cost:     bcryptCost,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the given bcrypt cost.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func CheckPassword(hash, password string) error {
	if hash == "" {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Register creates a profile. Local registration hashes the password and
// returns a token; external registration verifies the provider's id_token and
// binds the profile to its subject.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.LoginResponse, error) {
	u := &model.User{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Role:  req.Role,
	}

	if s.issuer == nil {
		if req.IDToken == "" || u.Email == "" {
			return nil, ErrCredentialsMissing
		}
		id, err := s.verifier.Verify(ctx, req.IDToken)
		if err != nil {
			return nil, err
		}
		u.ExternalID = id.Subject
	} else {
		if u.Email == "" || req.Password == "" {
			return nil, ErrCredentialsMissing
		}
		hash, err := HashPassword(req.Password, s.cost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.log.Info().Str("user_id", u.ID.String()).Str("role", string(u.Role)).Msg("User registered")
	return s.respond(u)
}

// Login authenticates with email+password (local) or an id_token (external)
// and stamps last_login.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	var u *model.User
	var err error

	if s.issuer == nil {
		if req.IDToken == "" {
			return nil, ErrCredentialsMissing
		}
		id, verr := s.verifier.Verify(ctx, req.IDToken)
		if verr != nil {
			return nil, verr
		}
		u, err = s.users.GetByExternalID(ctx, id.Subject)
	} else {
		if req.Email == "" || req.Password == "" {
			return nil, ErrCredentialsMissing
		}
		u, err = s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
		if err == nil {
			err = CheckPassword(u.PasswordHash, req.Password)
		}
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.users.TouchLastLogin(ctx, u.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("failed to update last login")
	}
	return s.respond(u)
}

// Logout revokes a locally issued token until it expires and drops the cached
// profile. It never fails the request.
func (s *AuthService) Logout(ctx context.Context, subject, tokenID string, expiresAt time.Time) {
	if tokenID != "" {
		if err := s.sessions.RevokeToken(ctx, tokenID, expiresAt); err != nil {
			s.log.Error().Err(err).Str("jti", tokenID).Msg("failed to revoke token")
		}
	}
	if err := s.sessions.DeleteProfile(ctx, subject); err != nil {
		s.log.Warn().Err(err).Msg("failed to drop cached profile")
	}
}

func (s *AuthService) respond(u *model.User) (*model.LoginResponse, error) {
	resp := &model.LoginResponse{User: u.Summary()}
	if s.issuer == nil {
		return resp, nil
	}
	token, exp, err := s.issuer.Issue(u.ExternalID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	resp.Token = token
	resp.ExpiresAt = &exp
	return resp, nil
}
