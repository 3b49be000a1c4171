// Package secrets provides the cipher used for values that are encrypted at
// rest: billing subscription identifiers and user email addresses.
//
// The cipher is deliberately deterministic (fixed key-derived IV): encrypting
// the same plaintext twice yields the same ciphertext, so encrypted emails
// remain comparable in SQL equality predicates. It is constructed once from
// configuration and injected into the services that need it; there is no
// package-level singleton.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Cipher encrypts and decrypts short strings
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

const (
	keyLen     = 32
	pbkdf2Iter = 4096
)

// AESCipher is a deterministic AES-256-CBC cipher with a PBKDF2-derived key
type AESCipher struct {
	key []byte
	iv  []byte
}

var _ Cipher = (*AESCipher)(nil)

// NewAESCipher derives the key from secret and salt. The IV is derived from
// the key, which is what makes the cipher deterministic.
func NewAESCipher(secret, salt string) (*AESCipher, error) {
	if secret == "" {
		return nil, fmt.Errorf("secret must not be empty")
	}
	key := pbkdf2.Key([]byte(secret), []byte(salt), pbkdf2Iter, keyLen, sha256.New)
	ivSeed := sha256.Sum256(key)
	return &AESCipher{
		key: key,
		iv:  ivSeed[:aes.BlockSize],
	}, nil
}

// Encrypt returns the hex-encoded AES-CBC encryption of plaintext
func (c *AESCipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to init cipher: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, c.iv).CryptBlocks(out, padded)

	return hex.EncodeToString(out), nil
}

// Decrypt reverses Encrypt
func (c *AESCipher) Decrypt(ciphertext string) (string, error) {
	raw, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("malformed ciphertext: %w", err)
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", fmt.Errorf("malformed ciphertext: not block aligned")
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to init cipher: %w", err)
	}

	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(block, c.iv).CryptBlocks(out, raw)

	unpadded, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padding)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padding)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("malformed ciphertext: empty")
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return nil, fmt.Errorf("malformed ciphertext: bad padding")
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("malformed ciphertext: bad padding")
		}
	}
	return data[:len(data)-padding], nil
}
