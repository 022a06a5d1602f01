package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinica-api/internal/model"
)

// ErrInvalidToken is the single outcome for every verification failure.
// Malformed, expired and signature-mismatched tokens are deliberately not
// distinguishable to the caller.
var ErrInvalidToken = errors.New("invalid token")

// DefaultExpiry is the validity window for access tokens
const DefaultExpiry = 15 * time.Minute

// Claims is the verified identity assertion carried by a token
type Claims struct {
	UserID uuid.UUID
	Role   model.Role
}

// TokenService signs and verifies compact expiring identity assertions
type TokenService interface {
	Issue(userID uuid.UUID, role model.Role) (string, error)
	Verify(token string) (*Claims, error)
}

type jwtService struct {
	secret []byte
	expiry time.Duration
}

// NewJWTService creates a TokenService signing with the given secret.
// An empty secret is refused; callers treat that as fatal at startup.
func NewJWTService(secret string, expiry time.Duration) (TokenService, error) {
	if secret == "" {
		return nil, errors.New("auth: signing secret is not configured")
	}
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &jwtService{secret: []byte(secret), expiry: expiry}, nil
}

func (s *jwtService) Issue(userID uuid.UUID, role model.Role) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID.String(),
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.expiry).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}

	roleStr, ok := claims["role"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	role := model.Role(roleStr)
	if !role.Valid() {
		return nil, ErrInvalidToken
	}

	return &Claims{UserID: userID, Role: role}, nil
}
