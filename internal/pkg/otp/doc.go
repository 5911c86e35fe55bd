// Package otp provides helpers for generating one-time passwords (OTP).
//
// This is typically used for email verification flows: generate a short
// numeric code, deliver it out of band, then compare the user-provided code
// against the stored one.
package otp
