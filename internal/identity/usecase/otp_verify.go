package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"github.com/libascollective/shophub/internal/identity/entity"
	"github.com/libascollective/shophub/internal/pkg/goerror"
)

type OtpVerifyInput struct {
	Identity string `validate:"required,email"`
	Code     string `validate:"required"`
}

// OtpVerify checks the submitted code against the outstanding record. The
// checks are ordered: absence, expiry, attempt ceiling, then code comparison.
// An expired or locked-out record is purged, never charged as a mismatch.
func (s *Usecase) OtpVerify(ctx context.Context, in OtpVerifyInput) error {
	ctx, span := s.startSpan(ctx, "OtpVerify")
	defer span.End()

	in.Identity = strings.TrimSpace(strings.ToLower(in.Identity))
	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	rec, ok := s.otpStore.Get(in.Identity)
	if !ok {
		return entity.ErrOTPNotFound
	}

	if rec.Expired(s.clock.Now(), s.otpStore.TTL()) {
		s.otpStore.Remove(in.Identity)
		return entity.ErrOTPExpired
	}

	if rec.ExceededAttempts(s.otpStore.MaxAttempts()) {
		s.otpStore.Remove(in.Identity)
		return entity.ErrOTPTooManyAttempts
	}

	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(in.Code)) != 1 {
		count, found := s.otpStore.RecordFailedAttempt(in.Identity)
		if !found {
			return entity.ErrOTPNotFound
		}
		if count >= s.otpStore.MaxAttempts() {
			return entity.ErrOTPTooManyAttempts
		}
		return entity.ErrOTPMismatch
	}

	s.otpStore.Remove(in.Identity)
	s.activateVerifiedUser(ctx, in.Identity)

	return nil
}

// activateVerifiedUser flips a pending registration to active and announces
// it. Verification of an identity with no pending account is still a success;
// account creation happens downstream.
func (s *Usecase) activateVerifiedUser(ctx context.Context, email string) {
	user, err := s.repoDB.GetUserByEmail(ctx, email)
	if errors.Is(err, goerror.ErrNotFound) {
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", email, "error", err)
		return
	}

	if user.Status.Ensure() != entity.UserStatusUnverified {
		return
	}

	if err := s.repoDB.ActivateUser(ctx, user.ID, entity.UserStatusUnverified, entity.UserStatusActive); err != nil {
		slog.ErrorContext(ctx, "failed to repo activate user", "user_id", user.ID, "error", err)
		return
	}

	// Request teardown must not drop the announcement.
	s.goroutine.Go(context.WithoutCancel(ctx), func(pCtx context.Context) error {
		if err := s.repoMessaging.PublishUserVerified(pCtx, UserVerifiedEvent{
			UserID:   user.ID,
			Email:    user.Email,
			FullName: user.FullName,
		}); err != nil {
			slog.ErrorContext(pCtx, "failed to publish user verified", "user_id", user.ID, "error", err)
		}
		return nil
	})
}
