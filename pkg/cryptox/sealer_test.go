package cryptox_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/twofactor/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	s, err := cryptox.NewSealer([]byte("test-master-key-for-encryption-12345"), "totp-secret")
	require.NoError(t, err)

	secret := []byte("JBSWY3DPEHPK3PXP")
	aad := []byte("user-1")

	sealed, err := s.Seal(secret, aad)
	require.NoError(t, err)
	require.NotContains(t, string(sealed), string(secret))

	opened, err := s.Open(sealed, aad)
	require.NoError(t, err)
	require.Equal(t, secret, opened)
}

func TestSealUsesFreshNonce(t *testing.T) {
	s, err := cryptox.NewSealer([]byte("master"), "totp-secret")
	require.NoError(t, err)

	a, err := s.Seal([]byte("same"), nil)
	require.NoError(t, err)
	b, err := s.Seal([]byte("same"), nil)
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestOpenRejectsTampering(t *testing.T) {
	s, err := cryptox.NewSealer([]byte("master"), "totp-secret")
	require.NoError(t, err)

	sealed, err := s.Seal([]byte("secret"), []byte("user-1"))
	require.NoError(t, err)

	t.Run("wrong aad", func(t *testing.T) {
		_, err := s.Open(sealed, []byte("user-2"))
		require.Error(t, err)
	})

	t.Run("flipped byte", func(t *testing.T) {
		bad := append([]byte(nil), sealed...)
		bad[len(bad)-1] ^= 0xff
		_, err := s.Open(bad, []byte("user-1"))
		require.Error(t, err)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := s.Open([]byte("short"), nil)
		require.ErrorIs(t, err, cryptox.ErrCiphertextTooShort)
	})

	t.Run("different purpose", func(t *testing.T) {
		other, err := cryptox.NewSealer([]byte("master"), "something-else")
		require.NoError(t, err)
		_, err = other.Open(sealed, []byte("user-1"))
		require.Error(t, err)
	})
}

func TestNewSealerRejectsEmptyKey(t *testing.T) {
	_, err := cryptox.NewSealer(nil, "totp-secret")
	require.Error(t, err)
}

func TestLoadMasterKey(t *testing.T) {
	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "master.key")
		require.NoError(t, os.WriteFile(path, []byte("file-material"), 0o600))

		material, ephemeral, err := cryptox.LoadMasterKey(path)
		require.NoError(t, err)
		require.False(t, ephemeral)
		require.Equal(t, []byte("file-material"), material)
	})

	t.Run("ephemeral fallback", func(t *testing.T) {
		material, ephemeral, err := cryptox.LoadMasterKey("")
		require.NoError(t, err)
		require.True(t, ephemeral)
		require.Len(t, material, 32)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := cryptox.LoadMasterKey(filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
	})
}

func TestLoadOrCreatePepper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pepper")

	first, err := cryptox.LoadOrCreatePepper(path)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := cryptox.LoadOrCreatePepper(path)
	require.NoError(t, err)
	require.Equal(t, first, second, "pepper must be stable across loads")

	_, err = cryptox.LoadOrCreatePepper("")
	require.Error(t, err)
}
