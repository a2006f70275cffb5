package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/tasklet-app/tasklet/internal/auth/entity"
	"github.com/tasklet-app/tasklet/internal/pkg/goerror"
)

type StartAuthenticationInput struct {
	Phone string `validate:"required,phone"`
}

type StartAuthenticationOutput struct {
	// Cooldown is how long the caller must wait before a new code can be
	// requested for the same phone. Equal to the OTP time-to-live.
	Cooldown time.Duration
}

// StartAuthentication issues a one-time code for the phone number and hands it
// to the SMS notifier. An unseen phone gets a register code, a known phone a
// login code. While a code is still active for the phone, a new request is
// rejected as locked so clients wait instead of retrying.
func (s *Usecase) StartAuthentication(ctx context.Context, in StartAuthenticationInput) (*StartAuthenticationOutput, error) {
	ctx, span := s.startSpan(ctx, "StartAuthentication")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	phone := strings.TrimSpace(in.Phone)

	purpose := entity.RegisterPurpose(phone)
	user, err := s.repoDB.GetUserByPhone(ctx, phone)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by phone", "error", err)
		return nil, goerror.NewServer(err)
	}
	if user != nil {
		purpose = entity.LoginPurpose(user.ID)
	}

	code, err := s.otp.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	saved, err := s.otp.Save(ctx, phone, code, purpose.ToExtra())
	if err != nil {
		slog.ErrorContext(ctx, "failed to save otp record", "error", err)
		return nil, goerror.NewServer(err)
	}
	if !saved {
		return nil, goerror.NewBusiness("an OTP is already active for this phone, wait before requesting a new one", goerror.CodeLocked)
	}

	// Delivery is best effort. The record is already saved, so a failed
	// dispatch must not be reported as a failed start.
	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.PublishOtpSms(ctx, OtpSmsEvent{
			Phone:   phone,
			Purpose: purpose.Kind,
			Code:    code,
		}); err != nil {
			slog.WarnContext(ctx, "failed to publish otp sms event", "error", err)
		}
		return nil
	})

	return &StartAuthenticationOutput{Cooldown: s.otp.Expiration()}, nil
}
