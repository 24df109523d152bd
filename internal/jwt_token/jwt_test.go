package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vanity/pkg/domain-errors"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService("signing-key", "vanity", "vanity-api")

	token, err := svc.GenerateAccessToken("acct-1", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "acct-1", claims.Account)
	assert.Equal(t, "vanity", claims.Issuer)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("signing-key", "vanity", "vanity-api")

	token, err := svc.GenerateAccessToken("acct-1", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateRejectsWrongKey(t *testing.T) {
	issuer := NewJWTService("signing-key", "vanity", "vanity-api")
	verifier := NewJWTService("other-key", "vanity", "vanity-api")

	token, err := issuer.GenerateAccessToken("acct-1", time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewJWTService("signing-key", "vanity", "vanity-api")

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
