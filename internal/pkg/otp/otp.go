package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// DefaultLength is the code length used when none is configured.
	DefaultLength = 6

	maxLength = 10
)

// Generator defines the contract for producing one-time codes.
type Generator interface {
	// Generate returns a fresh code.
	Generate() (string, error)
}

// Numeric generates fixed-length numeric codes from crypto/rand.
//
// Codes are drawn uniformly from [0, 10^length) and zero-padded, so leading
// zeros are possible and every code has exactly the configured length.
type Numeric struct {
	length int
	max    *big.Int
}

// NewNumeric constructs a Numeric generator.
//
// A non-positive or oversized length falls back to DefaultLength.
func NewNumeric(length int) *Numeric {
	if length <= 0 || length > maxLength {
		length = DefaultLength
	}

	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)

	return &Numeric{length: length, max: max}
}

// Length returns the configured code length.
func (g *Numeric) Length() int {
	return g.length
}

// Generate returns a fresh numeric code.
func (g *Numeric) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, g.max)
	if err != nil {
		return "", fmt.Errorf("otp: generate random code: %w", err)
	}

	return fmt.Sprintf("%0*d", g.length, n), nil
}
