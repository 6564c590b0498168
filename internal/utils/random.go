package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// NewPasswordResetToken returns a random hex token for the email link and
// the sha256 hex digest to store.
func NewPasswordResetToken() (plain string, hashed string, err error) {
	b := make([]byte, PasswordResetBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	plain = hex.EncodeToString(b)
	return plain, HashToken(plain), nil
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
