package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCredentials_FreshSaltEachTime(t *testing.T) {
	t.Parallel()

	h1, s1, err := NewCredentials("secret-pass")
	require.NoError(t, err)
	h2, s2, err := NewCredentials("secret-pass")
	require.NoError(t, err)

	require.Len(t, s1, SaltLen)
	require.NotEqual(t, s1, s2)
	require.NotEqual(t, h1, h2)
	require.True(t, Verify("secret-pass", s1, h1))
	require.True(t, Verify("secret-pass", s2, h2))
}

func TestVerify(t *testing.T) {
	t.Parallel()

	salt := []byte("0123456789abcdef")
	h := Hash("correct horse", salt)

	require.Equal(t, h, Hash("correct horse", salt))
	require.True(t, Verify("correct horse", salt, h))
	require.False(t, Verify("wrong", salt, h))
	require.False(t, Verify("correct horse", []byte("fedcba9876543210"), h))
	require.False(t, Verify("", salt, h))
}
