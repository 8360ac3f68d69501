package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// HashToken hashes a shared secret using bcrypt.
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckTokenHash compares a plaintext secret with a bcrypt hash.
func CheckTokenHash(token, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}
