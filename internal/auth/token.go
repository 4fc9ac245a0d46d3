package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"cohort-chat-service/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims this service understands. Tokens are minted by
// the account service; here they are only parsed and verified.
type Claims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller, as placed in the request context.
type Identity struct {
	UserID int
	Email  string
	Role   string
}

// IsAdmin reports whether the caller holds the admin role.
func (id Identity) IsAdmin() bool { return id.Role == models.RoleAdmin }

// GenerateToken signs a token for the given user. Used by tests and local
// tooling; production tokens come from the account service.
func GenerateToken(secret string, userID int, email, role string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies a signed token and returns its claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
