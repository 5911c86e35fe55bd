package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/libascollective/shophub/internal/identity/entity"
	"github.com/libascollective/shophub/internal/pkg/goerror"
)

type RegisterInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=72"`
	FullName string `validate:"required,min=5,max=100,alphaspace"`
}

// Register creates an unverified account and emails a verification code. The
// account stays unverified until the code is confirmed via OtpVerify.
func (s *Usecase) Register(ctx context.Context, in RegisterInput) error {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	return s.idemp.Exec(ctx, "identity:register:"+in.Email, func(ctx context.Context) error {
		user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
		if err == nil {
			switch user.Status.Ensure() {
			case entity.UserStatusActive:
				return goerror.NewBusiness("Email already registered", goerror.CodeConflict)
			case entity.UserStatusUnverified:
				return goerror.NewBusiness("Account not verified", goerror.CodeConflict)
			default:
				return goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
			}
		}
		if !errors.Is(err, goerror.ErrNotFound) {
			slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
			return goerror.NewServer(err)
		}

		hashedPassword, err := s.bcrypt.Hash(in.Password)
		if err != nil {
			slog.ErrorContext(ctx, "failed to hash password", "error", err)
			return goerror.NewServer(err)
		}

		newUserID := s.uid.Generate()
		newUser := entity.NewUser{
			ID:        newUserID,
			CreatedBy: newUserID,
			UpdatedBy: newUserID,
			Email:     in.Email,
			FullName:  in.FullName,
			Status:    entity.UserStatusUnverified,
		}

		if err := s.repoDB.NewRegistration(ctx, newUser, string(hashedPassword)); err != nil {
			slog.ErrorContext(ctx, "failed to repo new registration", "email", in.Email, "error", err)
			return goerror.NewServer(err)
		}

		return s.issueOTP(ctx, in.Email, in.FullName)
	})
}
