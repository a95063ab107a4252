package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a staff user's plaintext password with bcrypt at the
// default cost. Stored hashes are what login compares against.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPasswordHash reports whether the plaintext password matches the
// stored bcrypt hash. It never reveals why a mismatch occurred.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
