package auth

import (
	"errors"
	"fmt"
	"time"

	"cakeshop/models"

	"github.com/golang-jwt/jwt/v4"
)

const (
	// CookieName is the HTTP-only cookie carrying the session token.
	CookieName = "auth-token"
	// SessionTTL is both the token lifetime and the cookie max age.
	SessionTTL = 7 * 24 * time.Hour

	tokenTypeSession = "session"
)

// TokenService is responsible for creating and validating JWTs.
type TokenService struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewTokenService creates a TokenService signing with secret.
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret not configured")
	}
	return &TokenService{secretKey: []byte(secret), ttl: SessionTTL, now: time.Now}, nil
}

// GenerateToken signs a session token for the user.
func (s *TokenService) GenerateToken(userID, email string, role models.Role) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  string(role),
		"typ":   tokenTypeSession,
		"exp":   now.Add(s.ttl).Unix(),
		"iat":   now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ValidateToken parses tokenStr and returns the identity it carries.
func (s *TokenService) ValidateToken(tokenStr string) (*models.Identity, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if typ, ok := claims["typ"].(string); !ok || typ != tokenTypeSession {
		return nil, fmt.Errorf("invalid token type")
	}

	userID, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if userID == "" {
		return nil, fmt.Errorf("invalid token: sub claim is missing")
	}
	return &models.Identity{UserID: userID, Email: email, Role: models.Role(role)}, nil
}
