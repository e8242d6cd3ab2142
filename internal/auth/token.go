package auth

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"expenseflow/internal/models"
)

// TokenConfig holds session token settings
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// sessionClaims are the JWT claims carried by a session token
type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies signed session tokens. Revoked token ids
// are held in memory until their natural expiry, so a logged-out token cannot
// be replayed for the rest of its lifetime.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> expiry
}

// NewTokenManager creates a new token manager
func NewTokenManager(cfg TokenConfig) *TokenManager {
	return &TokenManager{
		secret:  []byte(cfg.Secret),
		ttl:     cfg.TTL,
		issuer:  cfg.Issuer,
		revoked: make(map[string]time.Time),
	}
}

// Issue creates a signed session token for the user
func (m *TokenManager) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Role: user.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses the token and returns the subject user id and token id.
// Revoked and expired tokens fail with ErrInvalidSession.
func (m *TokenManager) Verify(tokenString string) (userID, tokenID string, err error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())

	if err != nil || !token.Valid {
		return "", "", ErrInvalidSession
	}

	m.mu.Lock()
	_, isRevoked := m.revoked[claims.ID]
	m.mu.Unlock()
	if isRevoked {
		return "", "", ErrInvalidSession
	}

	return claims.Subject, claims.ID, nil
}

// Revoke marks a token id as unusable. Idempotent.
func (m *TokenManager) Revoke(tokenID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.revoked[tokenID] = time.Now().Add(m.ttl)

	// Drop entries whose tokens have expired on their own
	now := time.Now()
	for id, expiry := range m.revoked {
		if expiry.Before(now) {
			delete(m.revoked, id)
		}
	}
}
