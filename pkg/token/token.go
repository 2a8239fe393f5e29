package token

import (
	"crypto/rand"
	"math/big"
)

// Length is the number of characters in a token.
const Length = 7

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

var alphabetSize = big.NewInt(int64(len(alphabet)))

// New returns a random base-36 token of Length characters. Tokens are
// opaque session handles, not credentials; callers that need uniqueness
// check them against their registry.
func New() (string, error) {
	b := make([]byte, Length)
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b), nil
}

// Valid reports whether s has the shape of a token issued by New.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'z') {
			return false
		}
	}
	return true
}
