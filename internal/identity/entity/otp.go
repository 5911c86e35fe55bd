package entity

import (
	"errors"
	"time"
)

var (
	// ErrOTPNotFound indicates no live code exists for the identity.
	ErrOTPNotFound = errors.New("identity: otp not found")

	// ErrOTPExpired indicates the code outlived its ttl and has been purged.
	ErrOTPExpired = errors.New("identity: otp expired")

	// ErrOTPTooManyAttempts indicates the failed-attempt ceiling was reached
	// and the code has been purged.
	ErrOTPTooManyAttempts = errors.New("identity: otp too many attempts")

	// ErrOTPMismatch indicates the submitted code does not match.
	ErrOTPMismatch = errors.New("identity: otp mismatch")

	// ErrEmailDelivery indicates the code could not be emailed. The stored
	// code stays valid; the user may retry or resend.
	ErrEmailDelivery = errors.New("identity: otp email delivery failed")
)

// OTPRecord is a live one-time code issued to a single identity (email).
// The store owns all records; callers only ever see copies.
type OTPRecord struct {
	Identity string
	Code     string
	IssuedAt time.Time
	Attempts int
}

// Expired reports whether the record outlived ttl at the given instant.
func (r OTPRecord) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.IssuedAt) > ttl
}

// ExceededAttempts reports whether the failed-attempt counter reached the ceiling.
func (r OTPRecord) ExceededAttempts(maxAttempts int) bool {
	return r.Attempts >= maxAttempts
}
