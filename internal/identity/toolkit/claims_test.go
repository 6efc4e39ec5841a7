package toolkit

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/rolekeeper/internal/common"
)

func TestParseClaims(t *testing.T) {
	authTime := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	token := signToken(t, jwt.MapClaims{
		"sub":            "uid-1",
		"email_verified": true,
		"auth_time":      authTime.Unix(),
	})

	claims, err := parseClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims["sub"])
	assert.True(t, claimBool(claims, "email_verified"))
	assert.False(t, claimBool(claims, "missing"))
	assert.True(t, authTime.Equal(claimTime(claims, "auth_time")))
	assert.True(t, claimTime(claims, "missing").IsZero())
}

func TestParseClaims_Malformed(t *testing.T) {
	_, err := parseClaims("not-a-jwt")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
