package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLen    = 16
	iterations = 210_000
	keyLen     = 32
)

// GenerateSalt returns a fresh random salt for a new account.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// HashPassword derives the stored hash from a password and its salt.
func HashPassword(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, keyLen, sha256.New)
}

// Verify reports whether password matches the stored salt+hash pair.
func Verify(password string, salt, hash []byte) bool {
	derived := HashPassword(password, salt)
	return subtle.ConstantTimeCompare(derived, hash) == 1
}
