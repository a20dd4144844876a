package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthServiceDisabled(t *testing.T) {
	svc := NewAuthService("", "secret")

	assert.False(t, svc.Enabled())
	_, err := svc.LoginHost("anything")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestLoginHost(t *testing.T) {
	svc := NewAuthService("shared-key", "secret")
	require.True(t, svc.Enabled())

	_, err := svc.LoginHost("wrong-key")
	assert.ErrorIs(t, err, ErrInvalidKey)

	resp, err := svc.LoginHost("shared-key")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.HostID, "host_"))
	assert.NotEmpty(t, resp.Token)

	claims, err := svc.ValidateHostToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.HostID, claims.HostID)
}

func TestValidateHostTokenRejections(t *testing.T) {
	svc := NewAuthService("shared-key", "secret")

	_, err := svc.ValidateHostToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidHostJWT)

	// Token signed under a different secret.
	other := NewAuthService("shared-key", "other-secret")
	resp, err := other.LoginHost("shared-key")
	require.NoError(t, err)

	_, err = svc.ValidateHostToken(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidHostJWT)
}
