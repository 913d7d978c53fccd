package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// NewOTPCode generates a random 6-digit numeric one-time code, zero-padded.
func NewOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
