package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewTransactionID returns 128 random bits, hex encoded.
func NewTransactionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate transaction id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
