package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/akilliyazili/yazili-backend/internal/identity"
	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/akilliyazili/yazili-backend/internal/response"
	"github.com/akilliyazili/yazili-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextKeyPrincipal is the Gin context key for the authenticated caller.
	ContextKeyPrincipal = "principal"

	// HeaderLegacyToken is accepted when no Authorization header is sent.
	HeaderLegacyToken = "x-auth-token"
)

// Principal is the authenticated caller: the verified token plus the profile it resolves to.
type Principal struct {
	UserID    uuid.UUID
	Subject   string
	Role      model.Role
	TokenID   string
	ExpiresAt time.Time
	User      *model.User
}

// Actor is the principal as seen by the services.
func (p *Principal) Actor() service.Actor {
	return service.Actor{UserID: p.UserID, Subject: p.Subject, Role: p.Role}
}

// ProfileResolver maps a token subject to its profile.
type ProfileResolver interface {
	Resolve(ctx context.Context, subject string) (*model.User, error)
}

// RevocationChecker reports logged-out token ids.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RequireAuth verifies the bearer token, rejects revoked tokens and attaches
// the caller's profile. The profile's role is authoritative.
func RequireAuth(verifier identity.Verifier, resolver ProfileResolver, revocations RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		ctx := c.Request.Context()
		id, err := verifier.Verify(ctx, token)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		if id.TokenID != "" && revocations != nil {
			revoked, err := revocations.IsRevoked(ctx, id.TokenID)
			if err != nil {
				_ = c.Error(err)
				response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
				return
			}
			if revoked {
				response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRevoked)
				return
			}
		}

		user, err := resolver.Resolve(ctx, id.Subject)
		if errors.Is(err, service.ErrUserNotFound) {
			response.AbortFail(c, http.StatusNotFound, response.ErrUserNotFound)
			return
		}
		if err != nil {
			_ = c.Error(err)
			response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}

		c.Set(ContextKeyPrincipal, &Principal{
			UserID:    user.ID,
			Subject:   id.Subject,
			Role:      user.Role,
			TokenID:   id.TokenID,
			ExpiresAt: id.ExpiresAt,
			User:      user,
		})
		c.Next()
	}
}

// RequireRole allows the listed roles only. It must run after RequireAuth.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		response.AbortFail(c, http.StatusForbidden, response.ErrRoleNotAllowed)
	}
}

// GetPrincipal retrieves the caller set by RequireAuth.
func GetPrincipal(c *gin.Context) *Principal {
	val, exists := c.Get(ContextKeyPrincipal)
	if !exists {
		return nil
	}
	p, ok := val.(*Principal)
	if !ok {
		return nil
	}
	return p
}

func bearerToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return strings.TrimSpace(c.GetHeader(HeaderLegacyToken))
}
