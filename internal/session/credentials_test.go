package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-wedding/internal/session"
	"github.com/zalando/go-keyring"
)

func TestKeyringCredentials(t *testing.T) {
	keyring.MockInit()
	creds := session.NewKeyringCredentials("test.service")

	_, err := creds.Get("token")
	assert.ErrorIs(t, err, session.ErrNoCredential)

	require.NoError(t, creds.Set("token", "t1"))
	v, err := creds.Get("token")
	require.NoError(t, err)
	assert.Equal(t, "t1", v)

	require.NoError(t, creds.Delete("token"))
	require.NoError(t, creds.Delete("token"), "deleting twice is fine")
	_, err = creds.Get("token")
	assert.ErrorIs(t, err, session.ErrNoCredential)
}

func TestMemoryCredentials(t *testing.T) {
	creds := session.NewMemoryCredentials()
	require.NoError(t, creds.Set("k", "v"))
	v, err := creds.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
	require.NoError(t, creds.Delete("k"))
	_, err = creds.Get("k")
	assert.ErrorIs(t, err, session.ErrNoCredential)
}
