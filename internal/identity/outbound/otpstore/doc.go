// Package otpstore keeps live one-time codes in process memory, keyed by the
// user's email address. At most one record exists per identity; issuing a new
// code replaces the old one. Records disappear on successful verification,
// expiry, attempt-limit lockout, or superseding re-issuance.
package otpstore
