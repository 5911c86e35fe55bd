package email

import (
	"context"
	"fmt"
	"time"

	"github.com/libascollective/shophub/internal/pkg/instrument"
	"github.com/libascollective/shophub/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

type Mail struct {
	client mail.Mail
	ins    instrument.Instrumentation
}

func New(client mail.Mail, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, ins: ins}
}

// SendOTPCode emails the verification code to the given address.
func (m *Mail) SendOTPCode(ctx context.Context, to, displayName, code string, ttl time.Duration) error {
	ctx, span := m.ins.Tracer("identity.outbound.email").Start(ctx, "SendOTPCode")
	defer span.End()

	minutes := int(ttl.Minutes())
	greeting := "Hi"
	if displayName != "" {
		greeting = "Hi " + displayName
	}

	msg := mail.Message{
		To:      []string{to},
		Subject: "Your ShopHub verification code",
		TextBody: fmt.Sprintf(
			"%s,\n\nYour ShopHub verification code is %s. It expires in %d minutes.\n\nIf you did not request this code, you can ignore this email.",
			greeting, code, minutes,
		),
		HTMLBody: fmt.Sprintf(
			`<p>%s,</p><p>Your ShopHub verification code is <strong>%s</strong>. It expires in %d minutes.</p><p>If you did not request this code, you can ignore this email.</p>`,
			greeting, code, minutes,
		),
	}

	if err := m.client.Send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
