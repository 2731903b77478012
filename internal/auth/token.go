package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/user-service/internal/domain"
)

// DefaultTokenTTL is the lifetime of a session token.
const DefaultTokenTTL = 30 * 24 * time.Hour

var (
	// ErrInvalidToken is returned when a token is malformed or its signature does not verify.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when the expires claim is in the past.
	ErrTokenExpired = errors.New("token expired")
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	tm.now = now
	return tm
}

// tokenClaims is the signed payload. Expiry lives in the payload itself
// rather than in the registered exp claim.
type tokenClaims struct {
	UUID    string     `json:"uuid"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Rol     string     `json:"rol"`
	Expires *time.Time `json:"expires,omitempty"`
	jwt.RegisteredClaims
}

// NewSession stamps a fresh expiry onto the identity of user.
func (tm *TokenManager) NewSession(user *domain.User) domain.Claims {
	return domain.Claims{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Role:    user.Role,
		Expires: tm.now().Add(tm.ttl).UTC(),
	}
}

// Issue signs the claims.
func (tm *TokenManager) Issue(claims domain.Claims) (string, error) {
	expires := claims.Expires
	payload := &tokenClaims{
		UUID:    claims.ID,
		Name:    claims.Name,
		Email:   claims.Email,
		Rol:     claims.Role.String(),
		Expires: &expires,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(tm.now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	return token.SignedString(tm.secret)
}

// Verify validates the signature and expiry and returns the claims.
func (tm *TokenManager) Verify(tokenStr string) (*domain.Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	payload, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	role, err := domain.ParseRole(payload.Rol)
	if err != nil || payload.UUID == "" || payload.Expires == nil {
		return nil, ErrInvalidToken
	}
	if payload.Expires.Before(tm.now()) {
		return nil, ErrTokenExpired
	}

	return &domain.Claims{
		ID:      payload.UUID,
		Name:    payload.Name,
		Email:   payload.Email,
		Role:    role,
		Expires: *payload.Expires,
	}, nil
}

// TTL returns the session lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}
