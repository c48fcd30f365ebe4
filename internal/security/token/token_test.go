package token

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVerification(t *testing.T) {
	plain, hash, err := NewVerification()
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(plain)
	require.NoError(t, err)
	assert.Len(t, raw, DefaultBytes)
	assert.Equal(t, SHA256Base64URL(plain), hash)
	assert.NotEqual(t, plain, hash)

	other, _, err := NewVerification()
	require.NoError(t, err)
	assert.NotEqual(t, plain, other)
}
