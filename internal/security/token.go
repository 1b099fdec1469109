package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	lockTokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	LockTokenLength   = 32
)

var (
	errNegativeLength = errors.New("length must be non-negative")
	errEmptyAlphabet  = errors.New("alphabet must not be empty")
)

// NewLockToken returns the owner token stored in a distributed lock key.
// Only the holder of the token may release the lock.
func NewLockToken() (string, error) {
	return RandomString(LockTokenLength, lockTokenAlphabet)
}

// RandomString returns a cryptographically secure, unbiased string of the requested length.
func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", errNegativeLength
	}
	if length == 0 {
		return "", nil
	}
	if len(alphabet) == 0 {
		return "", errEmptyAlphabet
	}

	limit := big.NewInt(int64(len(alphabet)))
	value := make([]byte, length)
	for index := range value {
		position, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		value[index] = alphabet[position.Int64()]
	}

	return string(value), nil
}
