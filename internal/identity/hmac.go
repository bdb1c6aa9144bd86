package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims extends JWT standard claims with the user's role.
type Claims struct {
	jwt.RegisteredClaims
	Role model.Role `json:"role"`
}

// HMACProvider issues and verifies HS256 tokens signed with a shared secret.
type HMACProvider struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

// NewHMACProvider creates an HMACProvider.
func NewHMACProvider(secret, issuer string, expiry time.Duration) *HMACProvider {
	return &HMACProvider{
		secret: []byte(secret),
		issuer: issuer,
		expiry: expiry,
		now:    time.Now,
	}
}

// Issue signs a token for subject.
func (p *HMACProvider) Issue(subject string, role model.Role) (string, time.Time, error) {
	now := p.now()
	exp := now.Add(p.expiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   subject,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify parses and validates an HS256 token.
func (p *HMACProvider) Verify(_ context.Context, tokenStr string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, ErrNoSubject
	}

	return &Identity{
		Subject:   claims.Subject,
		Role:      normalizeRole(claims.Role),
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
