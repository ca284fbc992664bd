// Package crypto hashes account passwords with Argon2id.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32

	// SaltLen is the per-account salt size in bytes.
	SaltLen = 16
)

// Hash derives the stored key for password and salt.
func Hash(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// NewCredentials draws a fresh salt and hashes password with it.
func NewCredentials(password string) (hash, salt []byte, err error) {
	salt = make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("salt: %w", err)
	}
	return Hash(password, salt), salt, nil
}

// Verify compares in constant time.
func Verify(password string, salt, expected []byte) bool {
	return subtle.ConstantTimeCompare(Hash(password, salt), expected) == 1
}
