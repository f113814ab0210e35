package secrets

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"

	kerrors "github.com/PolarWolf314/refuge/internal/errors"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	KeySize   = 32
	nonceSize = 24
)

// envelopeMagic prefixes every sealed payload.
var envelopeMagic = []byte{'R', 'F', 'G', 0x01}

// CreateSymmetricKey generates a new random symmetric key.
func CreateSymmetricKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// IsSealed reports whether payload carries the envelope prefix.
func IsSealed(payload []byte) bool {
	return bytes.HasPrefix(payload, envelopeMagic)
}

// Seal encrypts plaintext with key into the envelope format.
func Seal(key, plaintext []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("expected %d bytes, got %d: %w", KeySize, len(key), kerrors.ErrInvalidKeyLength)
	}

	var k [KeySize]byte
	copy(k[:], key)

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, len(envelopeMagic)+nonceSize+len(plaintext)+secretbox.Overhead)
	out = append(out, envelopeMagic...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plaintext, &nonce, &k), nil
}

// Open authenticates and decrypts an envelope produced by Seal.
func Open(key, payload []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("expected %d bytes, got %d: %w", KeySize, len(key), kerrors.ErrInvalidKeyLength)
	}
	if !IsSealed(payload) || len(payload) < len(envelopeMagic)+nonceSize+secretbox.Overhead {
		return nil, kerrors.ErrDecryptionFailed
	}

	var k [KeySize]byte
	copy(k[:], key)

	var nonce [nonceSize]byte
	copy(nonce[:], payload[len(envelopeMagic):])

	plaintext, ok := secretbox.Open(nil, payload[len(envelopeMagic)+nonceSize:], &nonce, &k)
	if !ok {
		return nil, kerrors.ErrDecryptionFailed
	}
	return plaintext, nil
}
