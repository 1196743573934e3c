package service

import (
	"context"
	"testing"
	"time"

	"github.com/aptechmall/ordercore/internal/cache"
	"github.com/aptechmall/ordercore/internal/config"
	"github.com/aptechmall/ordercore/internal/constants"
	"github.com/aptechmall/ordercore/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService() *TokenService {
	return NewTokenService(config.JWTConfig{SecretKey: "test-secret", Issuer: "ordercore-test"}, cache.NewMemoryTokenBlacklist())
}

func TestTokenServiceIssueAndParse(t *testing.T) {
	svc := newTestTokenService()
	user := &models.User{ID: 7, Email: "a@example.com", Role: constants.RoleStaff, Status: constants.UserStatusActive}

	signed, issued, err := svc.Issue(user, constants.TokenKindAccess, 5*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, issued.ID)

	claims, err := svc.Parse(signed, constants.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, constants.RoleStaff, claims.Role)
	assert.Equal(t, constants.TokenKindAccess, claims.Type)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, issued.ID, claims.ID)
	assert.Equal(t, "ordercore-test", claims.Issuer)

	_, err = svc.Parse(signed, constants.TokenKindRefresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenServiceRejectsTamperedAndExpired(t *testing.T) {
	svc := newTestTokenService()
	user := &models.User{ID: 1, Role: constants.RoleCustomer, Status: constants.UserStatusActive}

	signed, _, err := svc.Issue(user, constants.TokenKindAccess, time.Minute)
	require.NoError(t, err)

	other := NewTokenService(config.JWTConfig{SecretKey: "another-secret"}, nil)
	_, err = other.Parse(signed, constants.TokenKindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = svc.Parse(signed, constants.TokenKindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = svc.Parse("", constants.TokenKindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenServiceRejectsOtherSigningMethods(t *testing.T) {
	svc := newTestTokenService()
	claims := TokenClaims{
		UserID: 1,
		Type:   constants.TokenKindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-none",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Parse(unsigned, constants.TokenKindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenServiceRevoke(t *testing.T) {
	svc := newTestTokenService()
	ctx := context.Background()
	user := &models.User{ID: 3, Role: constants.RoleCustomer, Status: constants.UserStatusActive}

	signed, claims, err := svc.Issue(user, constants.TokenKindRefresh, time.Hour)
	require.NoError(t, err)

	_, err = svc.ParseActive(ctx, signed, constants.TokenKindRefresh)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, claims))
	revoked, err := svc.IsRevoked(ctx, claims)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = svc.ParseActive(ctx, signed, constants.TokenKindRefresh)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
