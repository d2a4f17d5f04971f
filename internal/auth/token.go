package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"blog-platform/internal/domain"
)

// ErrInvalidToken covers tampered, expired and otherwise unusable tokens. The
// HTTP layer treats all of them as an unauthenticated request.
var ErrInvalidToken = errors.New("invalid token")

// Principal is the authenticated identity attached to a request after the
// session token has been decoded.
type Principal struct {
	ID    int64
	Name  string
	Email string
	Image string
	Role  domain.Role
}

// PrincipalFromUser builds the token payload for a freshly authenticated user.
func PrincipalFromUser(user *domain.User) Principal {
	return Principal{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Image: user.Image,
		Role:  user.Role,
	}
}

type sessionClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image,omitempty"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies the signed, stateless session tokens.
// There is no revocation list; expiry is time based only.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token carrying the principal.
func (m *TokenManager) Issue(principal Principal) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Name:  principal.Name,
		Email: principal.Email,
		Image: principal.Image,
		Role:  string(principal.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(principal.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and expiry and returns the embedded principal.
func (m *TokenManager) Parse(raw string) (*Principal, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, ErrInvalidToken
	}

	return &Principal{
		ID:    id,
		Name:  claims.Name,
		Email: claims.Email,
		Image: claims.Image,
		Role:  domain.Role(claims.Role),
	}, nil
}
