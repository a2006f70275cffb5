package usecase

import (
	"context"
	"log/slog"

	"github.com/tasklet-app/tasklet/internal/pkg/sms"
)

type ConsumeOtpSmsInput struct {
	Phone   string `validate:"required,phone"`
	Purpose string `validate:"required,oneof=login register"`
	Code    string `validate:"required,numeric"`
}

// ConsumeOtpSms texts the one-time code to the phone number.
//
// Validation failures drop the message instead of returning an error so a
// malformed event is not redelivered forever.
func (s *Usecase) ConsumeOtpSms(ctx context.Context, in ConsumeOtpSmsInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeOtpSms")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	if err := s.sms.Send(ctx, sms.Message{
		To:   in.Phone,
		Text: in.Purpose + " with " + in.Code,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to send otp sms", "phone", in.Phone, "error", err)
		return err
	}

	slog.InfoContext(ctx, "otp sms delivered", "phone", in.Phone, "purpose", in.Purpose)

	return nil
}
