package identity

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"

	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// PublicKeyVerifier verifies RS256 tokens minted by an external identity provider.
type PublicKeyVerifier struct {
	key      *rsa.PublicKey
	issuer   string
	audience string
}

// NewPublicKeyVerifier parses a PEM-encoded RSA public key. Issuer and audience
// are checked only when set.
func NewPublicKeyVerifier(pemKey, issuer, audience string) (*PublicKeyVerifier, error) {
	if strings.TrimSpace(pemKey) == "" {
		return nil, errors.New("external auth public key is empty")
	}
	// Keys passed through env files often carry escaped newlines.
	pemKey = strings.ReplaceAll(pemKey, `\n`, "\n")

	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemKey))
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return &PublicKeyVerifier{key: key, issuer: issuer, audience: audience}, nil
}

// Verify validates the signature and standard claims of an RS256 token.
func (v *PublicKeyVerifier) Verify(_ context.Context, tokenStr string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return v.key, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, ErrNoSubject
	}

	return &Identity{
		Subject:   claims.Subject,
		Role:      normalizeRole(model.Role(strings.ToLower(string(claims.Role)))),
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
