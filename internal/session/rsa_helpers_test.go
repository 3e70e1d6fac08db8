package session

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"testing"

	"github.com/stretchr/testify/require"
)

// generateTestRSAKey returns a freshly generated RSA key pair, with the
// public half marshaled the way a real client would send it in
// SEND_PUBLIC_KEY (PKIX DER).
func generateTestRSAKey(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	return priv, der
}

// decryptTestRSA undoes EncryptAESKeyForClient's RSA-OAEP wrapping,
// standing in for the client side of key exchange in tests.
func decryptTestRSA(t *testing.T, priv *rsa.PrivateKey, ciphertext []byte) []byte {
	t.Helper()
	plaintext, err := rsa.DecryptOAEP(sha1.New(), rand.Reader, priv, ciphertext, nil)
	require.NoError(t, err)
	return plaintext
}
