package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/libascollective/shophub/internal/notification/usecase"
	"github.com/libascollective/shophub/internal/pkg/instrument"
	"github.com/libascollective/shophub/internal/pkg/messaging"
	"github.com/libascollective/shophub/internal/pkg/uid"
	"github.com/libascollective/shophub/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) UserVerifiedNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "UserVerifiedNotification")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: user verified notification", "msg_body", string(body))

	var payload event.UserVerifiedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of user verified notification", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeUserVerified(ctx, usecase.ConsumeUserVerifiedInput{
		UserID:   payload.UserID,
		Email:    payload.Email,
		FullName: payload.FullName,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume user verified", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}
