package mq

import (
	"context"
	"encoding/json"

	"github.com/tasklet-app/tasklet/internal/auth/usecase"
	"github.com/tasklet-app/tasklet/internal/pkg/instrument"
	"github.com/tasklet-app/tasklet/internal/pkg/messaging"
	"github.com/tasklet-app/tasklet/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishOtpSms(ctx context.Context, msg usecase.OtpSmsEvent) error {
	ctx, span := m.ins.Tracer("auth.outbound.mq").Start(ctx, "PublishOtpSms")
	defer span.End()

	body, err := json.Marshal(event.OtpSmsMessage{
		Phone:   msg.Phone,
		Purpose: string(msg.Purpose),
		Code:    msg.Code,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.OtpSmsDestination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
