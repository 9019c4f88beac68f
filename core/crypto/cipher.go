package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrDecrypt means the ciphertext/IV/key combination did not authenticate:
// tampering, a rotated key, or corrupted storage. Callers must treat it as
// "credential unusable, force reconnection" and never as "no token stored".
var ErrDecrypt = errors.New("crypto: ciphertext authentication failed")

const keySize = 32

// Cipher encrypts OAuth token strings at rest with AES-256-GCM. The key is
// process-wide configuration; a fresh 96-bit nonce is generated per Encrypt
// call, so a single Cipher is safe for concurrent use.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher decodes a base64-encoded 32-byte key.
func NewCipher(encodedKey string) (*Cipher, error) {
	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: key is not valid base64: %w", err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("crypto: key must be %d bytes, got %d", keySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt returns base64-encoded ciphertext and IV. The IV is stored in its
// own column so legacy rows (no IV) remain distinguishable as plaintext.
func (c *Cipher) Encrypt(plaintext string) (ciphertext, iv string, err error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", "", err
	}
	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), base64.StdEncoding.EncodeToString(nonce), nil
}

func (c *Cipher) Decrypt(ciphertext, iv string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecrypt
	}
	nonce, err := base64.StdEncoding.DecodeString(iv)
	if err != nil {
		return "", ErrDecrypt
	}
	if len(nonce) != c.aead.NonceSize() {
		return "", ErrDecrypt
	}
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}
