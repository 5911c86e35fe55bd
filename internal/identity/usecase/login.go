package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/libascollective/shophub/internal/identity/entity"
	"github.com/libascollective/shophub/internal/pkg/goerror"
)

type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type LoginOutput struct {
	AccessToken string
}

// Login authenticates a verified account and issues an access token.
func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	info, err := s.repoDB.GetUserLoginInfo(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Invalid email or password", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user login info", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.bcrypt.Verify(info.Password, in.Password) {
		return nil, goerror.NewBusiness("Invalid email or password", goerror.CodeUnauthorized)
	}

	switch info.Status.Ensure() {
	case entity.UserStatusActive:
	case entity.UserStatusUnverified:
		return nil, goerror.NewBusiness("Email not verified", goerror.CodeForbidden)
	default:
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	token, err := s.jwt.Generate(info.ID, info.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access token", "user_id", info.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &LoginOutput{AccessToken: token}, nil
}
