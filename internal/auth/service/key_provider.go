package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	apperrors "github.com/allisson/authgate/internal/errors"
)

// MinRSAKeyBits is the smallest RSA modulus accepted for signing keys.
const MinRSAKeyBits = 2048

// KeyPair holds the process-wide RSA key pair. It is immutable after loading.
// A verify-only pair (see LoadPublicKey) has no private key.
type KeyPair struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

// PrivateKey returns the signing key, or nil for a verify-only pair.
func (k *KeyPair) PrivateKey() *rsa.PrivateKey {
	return k.privateKey
}

// PublicKey returns the verification key.
func (k *KeyPair) PublicKey() *rsa.PublicKey {
	return k.publicKey
}

// CanSign reports whether the pair holds a private key.
func (k *KeyPair) CanSign() bool {
	return k.privateKey != nil
}

type keyOptions struct {
	decrypter KeyDecrypter
}

// KeyOption configures LoadKeyPair.
type KeyOption func(*keyOptions)

// WithKeyDecrypter makes LoadKeyPair treat the private key file as base64 encoded
// KMS ciphertext and unwrap it with decrypter before parsing.
func WithKeyDecrypter(decrypter KeyDecrypter) KeyOption {
	return func(o *keyOptions) {
		o.decrypter = decrypter
	}
}

// LoadKeyPair reads and parses the PEM encoded private and public keys.
// Every failure wraps authDomain.ErrKeyLoadFailure.
func LoadKeyPair(ctx context.Context, privatePath, publicPath string, opts ...KeyOption) (*KeyPair, error) {
	options := &keyOptions{}
	for _, opt := range opts {
		opt(options)
	}

	privatePEM, err := os.ReadFile(privatePath) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, keyLoadError("failed to read private key", err)
	}

	if options.decrypter != nil {
		privatePEM, err = decryptPrivateKey(ctx, options.decrypter, privatePEM)
		if err != nil {
			return nil, keyLoadError("failed to decrypt private key", err)
		}
	}

	publicPEM, err := os.ReadFile(publicPath) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, keyLoadError("failed to read public key", err)
	}

	return ParseKeyPair(privatePEM, publicPEM)
}

// ParseKeyPair parses a PKCS#1/PKCS#8 private key and a PKIX/PKCS#1 public key and
// checks that both halves belong together.
func ParseKeyPair(privatePEM, publicPEM []byte) (*KeyPair, error) {
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, keyLoadError("invalid private key", err)
	}
	if privateKey.N.BitLen() < MinRSAKeyBits {
		return nil, keyLoadError("invalid private key", fmt.Errorf("modulus is %d bits", privateKey.N.BitLen()))
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, keyLoadError("invalid public key", err)
	}

	if !privateKey.PublicKey.Equal(publicKey) {
		return nil, keyLoadError("key pair mismatch", apperrors.New("public key does not match private key"))
	}

	return &KeyPair{privateKey: privateKey, publicKey: publicKey}, nil
}

// LoadPublicKey reads a PEM public key into a verify-only key pair.
func LoadPublicKey(publicPath string) (*KeyPair, error) {
	publicPEM, err := os.ReadFile(publicPath) //nolint:gosec // path comes from operator input
	if err != nil {
		return nil, keyLoadError("failed to read public key", err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, keyLoadError("invalid public key", err)
	}

	return &KeyPair{publicKey: publicKey}, nil
}

// GenerateKeyPair creates a fresh RSA key pair with the given modulus size.
func GenerateKeyPair(bits int) (*KeyPair, error) {
	if bits < MinRSAKeyBits {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("key size must be at least %d bits", MinRSAKeyBits))
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate rsa key")
	}

	return &KeyPair{privateKey: privateKey, publicKey: &privateKey.PublicKey}, nil
}

// EncodePEM returns the private key as PKCS#8 and the public key as PKIX PEM blocks.
func (k *KeyPair) EncodePEM() (privatePEM []byte, publicPEM []byte, err error) {
	if !k.CanSign() {
		return nil, nil, apperrors.New("key pair has no private key")
	}

	privateDER, err := x509.MarshalPKCS8PrivateKey(k.privateKey)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal private key")
	}

	publicDER, err := x509.MarshalPKIXPublicKey(k.publicKey)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal public key")
	}

	privatePEM = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privateDER})
	publicPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})
	return privatePEM, publicPEM, nil
}

// EncryptPrivateKey wraps a private key PEM with keeper and returns the base64 text
// expected by WithKeyDecrypter.
func EncryptPrivateKey(ctx context.Context, keeper KeyKeeper, privatePEM []byte) ([]byte, error) {
	ciphertext, err := keeper.Encrypt(ctx, privatePEM)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt private key")
	}

	encoded := base64.StdEncoding.EncodeToString(ciphertext)
	return []byte(encoded + "\n"), nil
}

func decryptPrivateKey(ctx context.Context, decrypter KeyDecrypter, data []byte) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(data)))
	if err != nil {
		return nil, err
	}
	return decrypter.Decrypt(ctx, ciphertext)
}

func keyLoadError(message string, err error) error {
	return fmt.Errorf("%w: %s: %v", authDomain.ErrKeyLoadFailure, message, err)
}
