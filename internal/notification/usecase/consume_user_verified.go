package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/libascollective/shophub/internal/pkg/mail"
	"github.com/sethvargo/go-retry"
)

type ConsumeUserVerifiedInput struct {
	UserID   int64  `validate:"required,gt=0"`
	Email    string `validate:"required,email"`
	FullName string `validate:"required,min=5,max=100,alphaspace"`
}

// ConsumeUserVerified sends the welcome email once an account has confirmed
// its verification code. Delivery is retried with backoff; the SMTP relay is
// the flakiest dependency in this path.
func (s *Usecase) ConsumeUserVerified(ctx context.Context, in ConsumeUserVerifiedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeUserVerified")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	msg := mail.Message{
		To:      []string{in.Email},
		Subject: "Welcome to ShopHub",
		TextBody: fmt.Sprintf(
			"Hi %s,\n\nYour email has been verified and your ShopHub account is ready. Happy shopping!\n\nVisit %s to get started.",
			in.FullName, s.cfg.GetString("app.web"),
		),
		HTMLBody: fmt.Sprintf(
			`<p>Hi %s,</p><p>Your email has been verified and your ShopHub account is ready. Happy shopping!</p><p><a href="%s">Get started</a></p>`,
			in.FullName, s.cfg.GetString("app.web"),
		),
	}

	b := retry.NewFibonacci(500 * time.Millisecond)
	b = retry.WithCappedDuration(10*time.Second, b)
	b = retry.WithMaxRetries(3, b)

	if err := retry.Do(ctx, b, func(ctx context.Context) error {
		if err := s.repoMail.Send(ctx, msg); err != nil {
			slog.WarnContext(ctx, "failed to send welcome email, will retry", "user_id", in.UserID, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		slog.ErrorContext(ctx, "failed to send welcome email", "user_id", in.UserID, "error", err)
		return err
	}

	return nil
}
