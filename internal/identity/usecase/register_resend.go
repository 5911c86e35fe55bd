package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/libascollective/shophub/internal/identity/entity"
	"github.com/libascollective/shophub/internal/pkg/goerror"
)

type RegisterResendInput struct {
	Email string `validate:"required,email"`
}

// RegisterResend re-issues the verification code for a pending registration.
// It answers the same way whether or not the account exists, so it cannot be
// used to probe registered emails.
func (s *Usecase) RegisterResend(ctx context.Context, in RegisterResendInput) error {
	ctx, span := s.startSpan(ctx, "RegisterResend")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	if user.Status.Ensure() != entity.UserStatusUnverified {
		return nil
	}

	return s.issueOTP(ctx, user.Email, user.FullName)
}
