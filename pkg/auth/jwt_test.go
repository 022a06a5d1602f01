package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinica-api/internal/model"
)

const testSecret = "test-signing-secret"

func TestNewJWTServiceRequiresSecret(t *testing.T) {
	_, err := NewJWTService("", time.Minute)
	assert.Error(t, err)
}

func TestIssueVerifyRoundtrip(t *testing.T) {
	svc, err := NewJWTService(testSecret, time.Minute)
	require.NoError(t, err)

	userID := uuid.New()
	token, err := svc.Issue(userID, model.RoleDoctor)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, model.RoleDoctor, claims.Role)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	svc, err := NewJWTService(testSecret, time.Minute)
	require.NoError(t, err)

	token, err := svc.Issue(uuid.New(), model.RoleAdmin)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = svc.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, err := NewJWTService("other-secret", time.Minute)
	require.NoError(t, err)
	verifier, err := NewJWTService(testSecret, time.Minute)
	require.NoError(t, err)

	token, err := issuer.Issue(uuid.New(), model.RolePatient)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc, err := NewJWTService(testSecret, time.Minute)
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  uuid.New().String(),
		"role": string(model.RoleAdmin),
		"iat":  time.Now().Add(-time.Hour).Unix(),
		"exp":  time.Now().Add(-30 * time.Minute).Unix(),
	})
	signed, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	svc, err := NewJWTService(testSecret, time.Minute)
	require.NoError(t, err)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  uuid.New().String(),
		"role": "SUPERUSER",
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Minute).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc, err := NewJWTService(testSecret, time.Minute)
	require.NoError(t, err)

	_, err = svc.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
