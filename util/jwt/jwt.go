package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalid = errors.New("invalid token")
	ErrExpired = errors.New("token expired")
)

// Claims carried by every issued token.
type Claims struct {
	UserID int64
	Email  string
	Role   string
}

func Issue(secret string, c Claims, ttlHours int) (string, error) {
	claims := jwt.MapClaims{
		"sub":   c.UserID,
		"email": c.Email,
		"role":  c.Role,
		"exp":   time.Now().Add(time.Duration(ttlHours) * time.Hour).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseAuth verifies a raw Authorization header value ("Bearer <token>"
// or a bare token) and returns the embedded claims.
func ParseAuth(authHeader string, secret string) (*Claims, error) {
	tokenStr := strings.TrimSpace(authHeader)
	if strings.HasPrefix(strings.ToLower(tokenStr), "bearer ") {
		tokenStr = strings.TrimSpace(tokenStr[7:])
	}
	if tokenStr == "" {
		return nil, ErrInvalid
	}

	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !tok.Valid {
		return nil, ErrInvalid
	}

	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalid
	}
	return fromMapClaims(mc)
}

// FromMapClaims converts already-verified claims (e.g. from the echo-jwt
// middleware) into the typed form.
func FromMapClaims(mc jwt.MapClaims) (*Claims, error) {
	return fromMapClaims(mc)
}

func fromMapClaims(mc jwt.MapClaims) (*Claims, error) {
	sub, ok := mc["sub"].(float64)
	if !ok {
		return nil, ErrInvalid
	}
	out := &Claims{UserID: int64(sub)}
	if s, ok := mc["email"].(string); ok {
		out.Email = s
	}
	if s, ok := mc["role"].(string); ok {
		out.Role = s
	}
	return out, nil
}
