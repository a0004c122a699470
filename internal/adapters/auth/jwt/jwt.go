package jwt

import (
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Resolver reads an HS256 session token from a cookie or a bearer header
type Resolver struct {
	secret     []byte
	cookieName string
}

var _ port.IdentityResolver = (*Resolver)(nil)

// NewResolver creates a Resolver
func NewResolver(secret []byte, cookieName string) *Resolver {
	return &Resolver{secret: secret, cookieName: cookieName}
}

// Resolve returns domain.ErrUnauthorized when no valid token is present
func (r *Resolver) Resolve(req *http.Request) (*domain.Identity, error) {
	token := bearerToken(req)
	if token == "" {
		if c, err := req.Cookie(r.cookieName); err == nil {
			token = c.Value
		}
	}
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	userID, err := GetUserIDFromToken(token, r.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return &domain.Identity{UserID: userID}, nil
}

func bearerToken(req *http.Request) string {
	h := req.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// GenerateToken signs a token whose subject is userID
func GenerateToken(userID string, secret []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
	})
	return token.SignedString(secret)
}

// GetUserIDFromToken validates the token and returns its subject
func GetUserIDFromToken(tokenString string, secret []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", domain.ErrUnauthorized
	}
	return claims.Subject, nil
}
