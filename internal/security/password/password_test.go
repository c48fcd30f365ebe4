package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Parámetros baratos para que los tests sean rápidos.
var fast = Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 16}

func TestArgon2id_HashVerify(t *testing.T) {
	h := NewHasher(fast)
	digest, err := h.Hash("password123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := h.Verify("password123", digest)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = h.Verify("wrong", digest)
	assert.False(t, ok)

	other, err := h.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, digest, other, "salt must differ")

	_, err = h.Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestVerify_LegacyBcrypt(t *testing.T) {
	digest, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, Verify("password123", string(digest)))
	assert.False(t, Verify("nope", string(digest)))
}

func TestVerify_MalformedDigests(t *testing.T) {
	for _, d := range []string{"", "plain", "$argon2id$v=18$m=1,t=1,p=1$AAAA$AAAA", "$argon2id$v=19$m=x$AAAA$AAAA", "$argon2id$v=19$m=1,t=1,p=1$***$AAAA"} {
		assert.False(t, Verify("x", d), d)
	}
}

func TestDummyDigestNeverMatchesUserInput(t *testing.T) {
	h := NewHasher(fast)
	d, err := h.DummyDigest()
	require.NoError(t, err)
	ok, _ := h.Verify("", d)
	assert.False(t, ok)
	ok, _ = h.Verify("password123", d)
	assert.False(t, ok)
}

func TestPolicy(t *testing.T) {
	p := Policy{MinLength: 8, RequireDigit: true}
	ok, reasons := p.Validate("short")
	assert.False(t, ok)
	assert.Equal(t, []string{"too_short", "missing_digit"}, reasons)

	ok, _ = p.Validate("password123")
	assert.True(t, ok)
}

func TestBlacklist(t *testing.T) {
	bl, err := ReadBlacklist(strings.NewReader("# common\nPassword123\n\nqwerty\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, bl.Len())
	assert.True(t, bl.Contains(" password123 "))
	assert.False(t, bl.Contains("hunter2"))

	var nilList *Blacklist
	assert.False(t, nilList.Contains("x"))
}
