package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestAccessToken_RoundTrip(t *testing.T) {
	merchantID := uint(42)

	token, err := GenerateAccessToken(7, &merchantID, "demo.merchant", "MERCHANT", testSecret, 15)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	require.NotNil(t, claims.MerchantID)
	assert.Equal(t, uint(42), *claims.MerchantID)
	assert.Equal(t, "demo.merchant", claims.Username)
	assert.Equal(t, "MERCHANT", claims.Role)
	assert.Equal(t, "devicepay", claims.Issuer)
}

func TestAccessToken_AdminHasNoMerchant(t *testing.T) {
	token, err := GenerateAccessToken(1, nil, "admin", "ADMIN", testSecret, 15)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, testSecret)
	require.NoError(t, err)
	assert.Nil(t, claims.MerchantID)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestValidateAccessToken_Failures(t *testing.T) {
	expired, err := GenerateAccessToken(7, nil, "demo", "MERCHANT", testSecret, -1)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{"expired token", expired, testSecret, ErrTokenExpired},
		{"wrong secret", mustAccessToken(t), "other-secret", ErrTokenInvalid},
		{"garbage", "not.a.token", testSecret, ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateAccessToken(tt.token, tt.secret)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken(7, "token-id-1", testSecret, 7)
	require.NoError(t, err)

	claims, err := ValidateRefreshToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "token-id-1", claims.TokenID)
}

func TestRefreshToken_NotValidAsAccessSecretMismatch(t *testing.T) {
	token, err := GenerateRefreshToken(7, "token-id-1", "refresh-secret", 7)
	require.NoError(t, err)

	_, err = ValidateRefreshToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func mustAccessToken(t *testing.T) string {
	t.Helper()
	token, err := GenerateAccessToken(7, nil, "demo", "MERCHANT", testSecret, 15)
	require.NoError(t, err)
	return token
}
