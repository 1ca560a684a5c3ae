package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	authService "github.com/allisson/authgate/internal/auth/service"
)

var (
	keyPairsOnce sync.Once
	keyPairs     [2]*authService.KeyPair
	keyPairsErr  error
)

// KeyPairs returns two distinct RSA key pairs generated once per test binary.
// The second pair is meant for forging tokens the first pair must reject.
func KeyPairs(t testing.TB) (*authService.KeyPair, *authService.KeyPair) {
	t.Helper()

	keyPairsOnce.Do(func() {
		for i := range keyPairs {
			keyPairs[i], keyPairsErr = authService.GenerateKeyPair(authService.MinRSAKeyBits)
			if keyPairsErr != nil {
				return
			}
		}
	})
	require.NoError(t, keyPairsErr, "failed to generate test key pairs")

	return keyPairs[0], keyPairs[1]
}

// KeyPair returns the primary test key pair.
func KeyPair(t testing.TB) *authService.KeyPair {
	t.Helper()
	keys, _ := KeyPairs(t)
	return keys
}

// WriteKeyFiles writes keys as PEM files in a temporary directory and returns their paths.
func WriteKeyFiles(t testing.TB, keys *authService.KeyPair) (privatePath, publicPath string) {
	t.Helper()

	privatePEM, publicPEM, err := keys.EncodePEM()
	require.NoError(t, err, "failed to encode test key pair")

	dir := t.TempDir()
	privatePath = filepath.Join(dir, "private.pem")
	publicPath = filepath.Join(dir, "public.pem")

	require.NoError(t, os.WriteFile(privatePath, privatePEM, 0o600))
	require.NoError(t, os.WriteFile(publicPath, publicPEM, 0o600))

	return privatePath, publicPath
}
