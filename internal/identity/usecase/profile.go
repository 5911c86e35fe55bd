package usecase

import (
	"context"
	"log/slog"

	"github.com/libascollective/shophub/internal/pkg/goerror"
	"github.com/libascollective/shophub/internal/pkg/jwt"
)

type ProfileOutput struct {
	ID       int64
	Email    string
	FullName string
	Status   string
}

// Profile returns the authenticated user's account details.
func (s *Usecase) Profile(ctx context.Context) (*ProfileOutput, error) {
	ctx, span := s.startSpan(ctx, "Profile")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	user, err := s.repoDB.GetUserByID(ctx, clm.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ProfileOutput{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Status:   user.Status.String(),
	}, nil
}
