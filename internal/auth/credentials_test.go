package auth

import (
	"strings"
	"testing"

	"gamesense/app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func fastHasher(s Scheme) *Hasher {
	h := NewHasher(s)
	h.PBKDF2Rounds = 1000
	h.BcryptCost = bcrypt.MinCost
	return h
}

func TestHash_PBKDF2Format(t *testing.T) {
	h := fastHasher(SchemePBKDF2)
	hash, err := h.Hash("correct horse")
	require.NoError(t, err)

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 5)
	assert.Equal(t, "pbkdf2-sha256", parts[1])
	assert.Equal(t, "1000", parts[2])
	assert.NotContains(t, hash, "+")
	assert.NotContains(t, hash, "=")
	assert.Equal(t, SchemePBKDF2, Identify(hash))

	ok, err := Compare("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Compare("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_SaltsDiffer(t *testing.T) {
	h := fastHasher(SchemePBKDF2)
	a, err := h.Hash("pw")
	require.NoError(t, err)
	b, err := h.Hash("pw")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHash_Bcrypt(t *testing.T) {
	h := fastHasher(SchemeBcrypt)
	hash, err := h.Hash("secret")
	require.NoError(t, err)
	assert.Equal(t, SchemeBcrypt, Identify(hash))

	ok, err := Compare("secret", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	long := strings.Repeat("x", 100)
	hash, err = h.Hash(long)
	require.NoError(t, err)
	ok, err = Compare(long, hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompare_Malformed(t *testing.T) {
	for _, hash := range []string{
		"plain-text",
		"$pbkdf2-sha256$abc$salt$sum",
		"$pbkdf2-sha256$1000$salt",
		"$pbkdf2-sha256$1000$!!$sum",
		"$2b$10$short",
	} {
		_, err := Compare("pw", hash)
		assert.ErrorIs(t, err, ErrMalformedHash, hash)
	}
}

func TestVerify_Verified(t *testing.T) {
	h := fastHasher(SchemePBKDF2)
	hash, err := h.Hash("pw")
	require.NoError(t, err)
	acc := &domain.Account{PasswordHash: hash}

	out, err := h.Verify("pw", acc)
	require.NoError(t, err)
	assert.Equal(t, Verified, out)
	assert.False(t, out.Changed())
	assert.Equal(t, hash, acc.PasswordHash)
}

func TestVerify_WrongPasswordRejected(t *testing.T) {
	h := fastHasher(SchemePBKDF2)
	hash, err := h.Hash("pw")
	require.NoError(t, err)
	acc := &domain.Account{PasswordHash: hash}

	out, err := h.Verify("nope", acc)
	require.NoError(t, err)
	assert.Equal(t, Rejected, out)
	assert.False(t, out.Accepted())
	assert.Equal(t, hash, acc.PasswordHash)
}

func TestVerify_MigratesOtherScheme(t *testing.T) {
	old := fastHasher(SchemeBcrypt)
	hash, err := old.Hash("pw")
	require.NoError(t, err)
	acc := &domain.Account{PasswordHash: hash}

	h := fastHasher(SchemePBKDF2)
	out, err := h.Verify("pw", acc)
	require.NoError(t, err)
	assert.Equal(t, Migrated, out)
	assert.True(t, out.Changed())
	assert.Equal(t, SchemePBKDF2, Identify(acc.PasswordHash))
}

func TestVerify_LegacyPlaintext(t *testing.T) {
	h := fastHasher(SchemePBKDF2)

	acc := &domain.Account{Password: "letmein"}
	out, err := h.Verify("letmein", acc)
	require.NoError(t, err)
	assert.Equal(t, Upgraded, out)
	assert.Empty(t, acc.Password)
	assert.Equal(t, SchemePBKDF2, Identify(acc.PasswordHash))

	// second login goes through the normal path
	out, err = h.Verify("letmein", acc)
	require.NoError(t, err)
	assert.Equal(t, Verified, out)

	mismatch := &domain.Account{Password: "letmein"}
	out, err = h.Verify("other", mismatch)
	require.NoError(t, err)
	assert.Equal(t, Rejected, out)
	assert.Equal(t, "letmein", mismatch.Password)
	assert.Empty(t, mismatch.PasswordHash)
}

func TestVerify_MalformedRecordIsRepaired(t *testing.T) {
	h := fastHasher(SchemePBKDF2)

	for name, acc := range map[string]*domain.Account{
		"garbage hash": {PasswordHash: "not-a-hash"},
		"truncated":    {PasswordHash: "$pbkdf2-sha256$29000$"},
		"empty":        {},
	} {
		t.Run(name, func(t *testing.T) {
			out, err := h.Verify("chosen", acc)
			require.NoError(t, err)
			assert.Equal(t, Repaired, out)
			assert.True(t, out.Accepted())

			ok, err := Compare("chosen", acc.PasswordHash)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestVerify_MalformedHashWithLegacyPassword(t *testing.T) {
	h := fastHasher(SchemePBKDF2)
	acc := &domain.Account{PasswordHash: "???", Password: "pw"}

	out, err := h.Verify("wrong", acc)
	require.NoError(t, err)
	assert.Equal(t, Rejected, out)

	out, err = h.Verify("pw", acc)
	require.NoError(t, err)
	assert.Equal(t, Upgraded, out)
}

func TestParseScheme(t *testing.T) {
	s, err := ParseScheme("")
	require.NoError(t, err)
	assert.Equal(t, SchemePBKDF2, s)

	s, err = ParseScheme("BCRYPT")
	require.NoError(t, err)
	assert.Equal(t, SchemeBcrypt, s)

	_, err = ParseScheme("md5")
	assert.ErrorIs(t, err, ErrUnknownScheme)
}
