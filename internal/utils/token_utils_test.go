package utils_test

import (
	"testing"
	"time"

	"github.com/SscSPs/team_finance_engine/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-key-that-is-long-enough"

func TestGenerateAndParseJWT(t *testing.T) {
	token, err := utils.GenerateJWT("user-1", secret, time.Hour, "tfe")
	require.NoError(t, err)

	claims, err := utils.ParseAndValidateJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "tfe", claims.Issuer)
}

func TestParseJWT_WrongSecret(t *testing.T) {
	token, err := utils.GenerateJWT("user-1", secret, time.Hour, "tfe")
	require.NoError(t, err)

	_, err = utils.ParseAndValidateJWT(token, "another-secret-that-is-long-enough")
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestParseJWT_Expired(t *testing.T) {
	token, err := utils.GenerateJWT("user-1", secret, -time.Minute, "tfe")
	require.NoError(t, err)

	_, err = utils.ParseAndValidateJWT(token, secret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenHashRoundTrip(t *testing.T) {
	raw, err := utils.GenerateSecureRandomString(16)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	hash, err := utils.HashToken(raw)
	require.NoError(t, err)
	assert.True(t, utils.CheckTokenHash(raw, hash))
	assert.False(t, utils.CheckTokenHash(raw+"x", hash))
}

func TestGenerateSecureRandomString_RejectsZeroLength(t *testing.T) {
	_, err := utils.GenerateSecureRandomString(0)
	assert.Error(t, err)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$12.30", utils.FormatMoney(decimal.RequireFromString("12.3")))
	assert.Equal(t, "$1000.00", utils.FormatMoney(decimal.NewFromInt(1000)))
	assert.Equal(t, "$0.01", utils.FormatMoney(decimal.RequireFromString("0.005")))
}
