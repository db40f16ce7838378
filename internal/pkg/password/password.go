package password

import (
	"crypto/sha256"
	"encoding/hex"
	"sync/atomic"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt cost new hashes use unless SetCost changes it
const DefaultCost = 12

var cost atomic.Int32

func init() {
	cost.Store(DefaultCost)
}

// SetCost changes the cost of future hashes; values outside bcrypt's range are ignored
func SetCost(c int) {
	if c < bcrypt.MinCost || c > bcrypt.MaxCost {
		return
	}
	cost.Store(int32(c))
}

// Cost returns the cost new hashes use
func Cost() int {
	return int(cost.Load())
}

// Hash hashes an officer password
func Hash(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), Cost())
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a password with a hash
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// NeedsRehash reports whether the hash was made with a different cost than the current one
func NeedsRehash(hash string) bool {
	c, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return c != Cost()
}

// HashToken hashes a refresh token for storage; tokens are random so SHA256 suffices
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
