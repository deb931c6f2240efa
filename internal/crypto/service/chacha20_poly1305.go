package service

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ChaCha20Poly1305Cipher implements the AEAD interface using ChaCha20-Poly1305.
//
// ChaCha20-Poly1305 pairs the ChaCha20 stream cipher with the Poly1305 MAC.
// Its constant-time software implementation makes it the better choice on
// platforms without AES-NI hardware acceleration. Uses a 256-bit key,
// 12-byte random nonce, and 16-byte authentication tag.
//
// Stateless and safe for concurrent use.
type ChaCha20Poly1305Cipher struct {
	key []byte
}

// NewChaCha20Poly1305 creates a new ChaCha20-Poly1305 cipher instance.
// The key must be exactly 32 bytes (256 bits).
func NewChaCha20Poly1305(key []byte) (*ChaCha20Poly1305Cipher, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, errors.New("key must be exactly 32 bytes")
	}

	keyCopy := make([]byte, len(key))
	copy(keyCopy, key)

	return &ChaCha20Poly1305Cipher{key: keyCopy}, nil
}

// Encrypt encrypts plaintext with a fresh random 12-byte nonce, authenticating
// the optional AAD. The returned ciphertext has the Poly1305 tag appended.
func (c *ChaCha20Poly1305Cipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	aead, err := chacha20poly1305.New(c.key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create chacha20-poly1305: %w", err)
	}

	nonce = make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext = aead.Seal(nil, nonce, plaintext, aad)
	return ciphertext, nonce, nil
}

// Decrypt decrypts ciphertext using the provided nonce and AAD. Verification
// happens before any plaintext is returned.
func (c *ChaCha20Poly1305Cipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create chacha20-poly1305: %w", err)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}
