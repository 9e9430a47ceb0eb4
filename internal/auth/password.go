package auth

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost matches bcrypt's own recommended default; raising it
// trades login latency for resistance against offline brute force.
const DefaultBcryptCost = bcrypt.DefaultCost

// HashPassword salts and hashes password. Every call produces a distinct
// hash for the same input since bcrypt generates a fresh salt each time.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), DefaultBcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
