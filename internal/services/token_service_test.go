package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-todo-api/internal/constants"
)

func TestTokenService_PairVerifies(t *testing.T) {
	svc := NewTokenService("secret", 30*time.Minute, 7*24*time.Hour)

	pair, err := svc.IssuePair(42)
	require.NoError(t, err)

	claims, err := svc.Verify(pair.AccessToken, constants.TokenTypeAccess)
	require.NoError(t, err)
	require.EqualValues(t, 42, claims.UserID)

	claims, err = svc.Verify(pair.RefreshToken, constants.TokenTypeRefresh)
	require.NoError(t, err)
	require.EqualValues(t, 42, claims.UserID)
}

func TestTokenService_RejectsWrongType(t *testing.T) {
	svc := NewTokenService("secret", time.Minute, time.Hour)

	pair, err := svc.IssuePair(1)
	require.NoError(t, err)

	_, err = svc.Verify(pair.RefreshToken, constants.TokenTypeAccess)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Refresh(pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsExpired(t *testing.T) {
	svc := NewTokenService("secret", time.Minute, time.Hour)
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, err := svc.Issue(1, constants.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = svc.Verify(token, constants.TokenTypeAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsForeignSignature(t *testing.T) {
	ours := NewTokenService("secret", time.Minute, time.Hour)
	theirs := NewTokenService("other-secret", time.Minute, time.Hour)

	token, err := theirs.Issue(1, constants.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	_, err = ours.Verify(token, constants.TokenTypeAccess)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = ours.Verify("not-a-token", constants.TokenTypeAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsNoneAlgorithm(t *testing.T) {
	svc := NewTokenService("secret", time.Minute, time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: 1,
		Type:   constants.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(token, constants.TokenTypeAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RefreshKeepsUser(t *testing.T) {
	svc := NewTokenService("secret", time.Minute, time.Hour)

	pair, err := svc.IssuePair(7)
	require.NoError(t, err)

	access, err := svc.Refresh(pair.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.Verify(access, constants.TokenTypeAccess)
	require.NoError(t, err)
	require.EqualValues(t, 7, claims.UserID)
}
