// Package identity verifies bearer tokens. Exactly one Verifier is active per
// deployment, chosen by configuration.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akilliyazili/yazili-backend/internal/config"
	"github.com/akilliyazili/yazili-backend/internal/model"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSubject    = errors.New("token has no subject")
)

// Identity is what a verified token says about its bearer.
type Identity struct {
	Subject   string
	Role      model.Role
	TokenID   string
	ExpiresAt time.Time
}

// Verifier checks a raw bearer token.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Issuer mints tokens. Only the local provider issues tokens.
type Issuer interface {
	Issue(subject string, role model.Role) (token string, expiresAt time.Time, err error)
}

// FromConfig builds the configured verifier. The returned issuer is nil for
// the external provider.
func FromConfig(cfg *config.Config) (Verifier, Issuer, error) {
	switch cfg.AuthProvider {
	case config.AuthProviderLocal:
		p := NewHMACProvider(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiry)
		return p, p, nil
	case config.AuthProviderExternal:
		v, err := NewPublicKeyVerifier(cfg.ExternalPublicKey, cfg.ExternalIssuer, cfg.ExternalAudience)
		if err != nil {
			return nil, nil, err
		}
		return v, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown auth provider %q", cfg.AuthProvider)
	}
}

// normalizeRole maps a missing or unknown role claim to student.
func normalizeRole(r model.Role) model.Role {
	if r.Valid() {
		return r
	}
	return model.RoleStudent
}
