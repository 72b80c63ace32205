package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// NewCode returns a uniformly random 6-digit numeric code as a zero-padded
// string. Leading zeros are allowed, so the code is always exactly six
// characters.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
