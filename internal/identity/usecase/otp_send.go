package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/libascollective/shophub/internal/identity/entity"
	"github.com/libascollective/shophub/internal/pkg/goerror"
)

type OtpSendInput struct {
	Identity    string `validate:"required,email"`
	DisplayName string `validate:"omitempty,max=100"`
}

// OtpSend issues a fresh verification code for the identity and emails it.
// Re-issuing replaces any outstanding code and resets its attempts and ttl.
func (s *Usecase) OtpSend(ctx context.Context, in OtpSendInput) error {
	ctx, span := s.startSpan(ctx, "OtpSend")
	defer span.End()

	in.Identity = strings.TrimSpace(strings.ToLower(in.Identity))
	in.DisplayName = strings.TrimSpace(in.DisplayName)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	return s.issueOTP(ctx, in.Identity, in.DisplayName)
}

// issueOTP generates a code, stores it, and emails it. A delivery failure
// leaves the stored code valid; the user may not have received the email but
// the code itself is fine.
func (s *Usecase) issueOTP(ctx context.Context, identity, displayName string) error {
	code, err := s.codeGen.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "identity", identity, "error", err)
		return goerror.NewServer(err)
	}

	s.otpStore.Put(identity, code)

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.GetSecond("modules.identity.otp_email_timeout_seconds"))
	defer cancel()

	if err := s.repoEmail.SendOTPCode(sendCtx, identity, displayName, code, s.otpStore.TTL()); err != nil {
		slog.ErrorContext(ctx, "failed to send otp email", "identity", identity, "error", err)
		return entity.ErrEmailDelivery
	}

	return nil
}
