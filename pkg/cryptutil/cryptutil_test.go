package cryptutil

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAESCBCRoundTrip(t *testing.T) {
	key, err := NewAESKey()
	require.NoError(t, err)

	plaintexts := [][]byte{
		[]byte("hello\n"),
		[]byte(""),
		make([]byte, 16),  // exactly one block
		make([]byte, 100), // spans multiple blocks
	}
	for _, pt := range plaintexts {
		envelope, err := EncryptCBC(key, pt)
		require.NoError(t, err)
		decrypted, err := DecryptCBC(key, envelope)
		require.NoError(t, err)
		assert.Equal(t, pt, decrypted)
	}
}

func TestAESCBCSpecScenario(t *testing.T) {
	// spec.md §9 scenario 3: "hello\n" (6 bytes) encrypts to 32 bytes
	// (IV || one padded block).
	var key [16]byte
	copy(key[:], []byte("0123456789abcdef"))

	envelope, err := EncryptCBC(key, []byte("hello\n"))
	require.NoError(t, err)
	assert.Len(t, envelope, 32)

	decrypted, err := DecryptCBC(key, envelope)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello\n"), decrypted)
}

func TestAESCBCRejectsBadPadding(t *testing.T) {
	key, err := NewAESKey()
	require.NoError(t, err)

	envelope, err := EncryptCBC(key, []byte("hello\n"))
	require.NoError(t, err)
	// Flipping the IV byte that precedes the last plaintext byte turns
	// the 0x0a padding byte into 0xf5, which no valid padding allows.
	envelope[len(envelope)-1-blockSize] ^= 0xFF // corrupt last padding byte

	_, err = DecryptCBC(key, envelope)
	assert.ErrorIs(t, err, ErrBadPadding)
}

func TestAESCBCRejectsShortEnvelope(t *testing.T) {
	key, err := NewAESKey()
	require.NoError(t, err)

	_, err = DecryptCBC(key, make([]byte, 10))
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestRSAOAEPRoundTrip(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	pub, err := ParsePublicKey(der)
	require.NoError(t, err)

	aesKey, err := NewAESKey()
	require.NoError(t, err)

	encrypted, err := EncryptAESKeyForClient(pub, aesKey)
	require.NoError(t, err)

	decrypted, err := rsa.DecryptOAEP(sha1.New(), rand.Reader, priv, encrypted, nil)
	require.NoError(t, err)
	assert.EqualValues(t, aesKey[:], decrypted)
}

func TestNewClientIDsDoNotCollideAcrossCalls(t *testing.T) {
	seen := map[[16]byte]bool{}
	for i := 0; i < 1000; i++ {
		id, err := NewClientID()
		require.NoError(t, err)
		assert.False(t, seen[id], "generated id collided")
		seen[id] = true
	}
}
