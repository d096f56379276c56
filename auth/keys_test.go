package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePEM(t *testing.T, blockType string, der []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "key.pem")
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoadPrivateKeyPEM_PKCS1(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	path := writePEM(t, "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(key))

	loaded, err := LoadPrivateKeyPEM(path)
	require.NoError(t, err)
	assert.True(t, key.Equal(loaded))
}

func TestLoadPrivateKeyPEM_PKCS8(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	path := writePEM(t, "PRIVATE KEY", der)

	loaded, err := LoadPrivateKeyPEM(path)
	require.NoError(t, err)
	assert.True(t, key.Equal(loaded))
}

func TestLoadPublicKeyPEM_PKIX(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	path := writePEM(t, "PUBLIC KEY", der)

	loaded, err := LoadPublicKeyPEM(path)
	require.NoError(t, err)
	assert.True(t, key.PublicKey.Equal(loaded))
}

func TestLoadPublicKeyPEM_PKCS1(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	path := writePEM(t, "RSA PUBLIC KEY", x509.MarshalPKCS1PublicKey(&key.PublicKey))

	loaded, err := LoadPublicKeyPEM(path)
	require.NoError(t, err)
	assert.True(t, key.PublicKey.Equal(loaded))
}

func TestLoadPrivateKeyPEM_NotPEM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.pem")
	require.NoError(t, os.WriteFile(path, []byte("not a key"), 0o600))

	_, err := LoadPrivateKeyPEM(path)
	assert.Error(t, err)
}

func TestLoadPrivateKeyPEM_MissingFile(t *testing.T) {
	_, err := LoadPrivateKeyPEM(filepath.Join(t.TempDir(), "missing.pem"))
	assert.Error(t, err)
}
