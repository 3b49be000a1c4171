package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAESCipherRequiresSecret(t *testing.T) {
	_, err := NewAESCipher("", "10")
	require.Error(t, err)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c, err := NewAESCipher("test-secret", "10")
	require.NoError(t, err)

	for _, plaintext := range []string{
		"sub_1MowQVLkdIwHu7ixeRlqHVzs",
		"a@b.com",
		"",
		"exactly sixteen!",
	} {
		enc, err := c.Encrypt(plaintext)
		require.NoError(t, err)
		dec, err := c.Decrypt(enc)
		require.NoError(t, err)
		assert.Equal(t, plaintext, dec, "plaintext %q", plaintext)
	}
}

func TestEncryptIsDeterministic(t *testing.T) {
	// Encrypted emails are compared with SQL equality, so the same input
	// must always produce the same ciphertext.
	c, err := NewAESCipher("test-secret", "10")
	require.NoError(t, err)

	first, err := c.Encrypt("a@b.com")
	require.NoError(t, err)
	second, err := c.Encrypt("a@b.com")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDifferentSecretsProduceDifferentCiphertext(t *testing.T) {
	c1, err := NewAESCipher("secret-one", "10")
	require.NoError(t, err)
	c2, err := NewAESCipher("secret-two", "10")
	require.NoError(t, err)

	e1, err := c1.Encrypt("a@b.com")
	require.NoError(t, err)
	e2, err := c2.Encrypt("a@b.com")
	require.NoError(t, err)
	assert.NotEqual(t, e1, e2)

	// Decrypting with the wrong key must not silently succeed.
	_, err = c2.Decrypt(e1)
	if err == nil {
		dec, decErr := c2.Decrypt(e1)
		require.NoError(t, decErr)
		assert.NotEqual(t, "a@b.com", dec)
	}
}

func TestDecryptRejectsMalformedInput(t *testing.T) {
	c, err := NewAESCipher("test-secret", "10")
	require.NoError(t, err)

	_, err = c.Decrypt("not-hex!")
	assert.Error(t, err)

	_, err = c.Decrypt("abcdef") // not block aligned
	assert.Error(t, err)
}
