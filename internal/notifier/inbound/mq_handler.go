package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tasklet-app/tasklet/internal/notifier/usecase"
	"github.com/tasklet-app/tasklet/internal/pkg/instrument"
	"github.com/tasklet-app/tasklet/internal/pkg/messaging"
	"github.com/tasklet-app/tasklet/internal/pkg/uid"
	"github.com/tasklet-app/tasklet/internal/shared/event"
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

func (h *MQHandler) OtpSmsNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notifier.inbound.mq").Start(ctx, "OtpSmsNotification")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: otp sms notification")

	var payload event.OtpSmsMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp sms notification", "error", err)
		return nil
	}

	if err := h.uc.ConsumeOtpSms(ctx, usecase.ConsumeOtpSmsInput{
		Phone:   payload.Phone,
		Purpose: payload.Purpose,
		Code:    payload.Code,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume otp sms", "error", err)
		return err
	}

	return nil
}
