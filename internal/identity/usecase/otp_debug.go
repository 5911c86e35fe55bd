package usecase

import (
	"context"

	"github.com/libascollective/shophub/internal/identity/entity"
	"github.com/libascollective/shophub/internal/pkg/goerror"
	"github.com/samber/lo"
)

type OtpDebugEntry struct {
	Identity     string
	IssuedAt     int64
	Attempts     int
	AttemptsLeft int
}

type OtpDebugOutput struct {
	Count   int
	Entries []OtpDebugEntry
}

// OtpDebug lists outstanding codes without revealing them. Disabled unless
// explicitly turned on, so it never leaks code metadata in production.
func (s *Usecase) OtpDebug(ctx context.Context) (*OtpDebugOutput, error) {
	_, span := s.startSpan(ctx, "OtpDebug")
	defer span.End()

	if !s.cfg.GetBool("modules.identity.otp_debug") {
		return nil, goerror.NewBusiness("endpoint not found", goerror.CodeNotFound)
	}

	maxAttempts := s.otpStore.MaxAttempts()
	records := s.otpStore.Snapshot()

	entries := lo.Map(records, func(rec entity.OTPRecord, _ int) OtpDebugEntry {
		left := maxAttempts - rec.Attempts
		if left < 0 {
			left = 0
		}
		return OtpDebugEntry{
			Identity:     rec.Identity,
			IssuedAt:     rec.IssuedAt.Unix(),
			Attempts:     rec.Attempts,
			AttemptsLeft: left,
		}
	})

	return &OtpDebugOutput{Count: len(entries), Entries: entries}, nil
}
