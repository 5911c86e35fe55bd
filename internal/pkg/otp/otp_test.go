package otp

import (
	"strings"
	"testing"
)

func TestNumericGenerateLength(t *testing.T) {
	// Arrange
	gen := NewNumeric(6)

	// Act & Assert
	for range 200 {
		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q has length %d, want 6", code, len(code))
		}
		if strings.Trim(code, "0123456789") != "" {
			t.Fatalf("code %q contains non-digit characters", code)
		}
	}
}

func TestNumericFallbackLength(t *testing.T) {
	// Arrange
	gen := NewNumeric(0)

	// Act
	code, err := gen.Generate()

	// Assert
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(code) != DefaultLength {
		t.Fatalf("code %q has length %d, want %d", code, len(code), DefaultLength)
	}
	if gen.Length() != DefaultLength {
		t.Fatalf("Length() = %d, want %d", gen.Length(), DefaultLength)
	}
}
