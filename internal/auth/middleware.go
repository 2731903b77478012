package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/domain"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

const claimsKey = "auth_claims"

// TokenVerifier decodes a session token into claims.
type TokenVerifier interface {
	Verify(token string) (*domain.Claims, error)
}

// AuthMiddleware validates session tokens and stores the caller claims.
type AuthMiddleware struct {
	tokens TokenVerifier
	logger *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens TokenVerifier, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, logger: logger}
}

// Handle enforces authentication for protected routes. The Authorization
// header carries the raw token; a missing header is 401 while a token that
// fails verification or has expired is 403.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token := c.Get(fiber.HeaderAuthorization)
	if token == "" {
		return apperrors.NewUnauthenticated(apperrors.MsgPermissionDenied)
	}

	claims, err := m.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			m.logger.Debug("expired token presented", zap.String("path", c.Path()))
		}
		return apperrors.NewForbidden(apperrors.MsgInvalidToken)
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// ClaimsFromContext retrieves the authenticated caller.
func ClaimsFromContext(c *fiber.Ctx) (*domain.Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*domain.Claims)
	return claims, ok
}
