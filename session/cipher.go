package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// Cipher encrypts stored records at rest.
type Cipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// ErrCiphertext is returned when a stored record cannot be decrypted.
var ErrCiphertext = errors.New("session: malformed ciphertext")

// scrypt cost parameters for deriving the AES-256 key from a secret.
const (
	scryptN   = 1 << 15
	scryptR   = 8
	scryptP   = 1
	keyLength = 32
	saltSize  = 16
)

type aesCipher struct {
	aead cipher.AEAD
}

// NewAESCipher derives an AES-256-GCM key from secret with scrypt and a
// random salt. The salt lives only in memory, so records sealed by one
// cipher can only be opened by the same instance.
func NewAESCipher(secret string) (Cipher, error) {
	if secret == "" {
		return nil, &ConfigError{Field: "Secret", Reason: "must not be empty"}
	}
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("session: read salt: %w", err)
	}
	key, err := scrypt.Key([]byte(secret), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return nil, fmt.Errorf("session: derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &aesCipher{aead: aead}, nil
}

// Encrypt returns nonce || sealed(plaintext).
func (c *aesCipher) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (c *aesCipher) Decrypt(ciphertext []byte) ([]byte, error) {
	ns := c.aead.NonceSize()
	if len(ciphertext) < ns+c.aead.Overhead() {
		return nil, ErrCiphertext
	}
	plain, err := c.aead.Open(nil, ciphertext[:ns], ciphertext[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCiphertext, err)
	}
	return plain, nil
}
