package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/tasklet-app/tasklet/internal/pkg/instrument"
	"github.com/tasklet-app/tasklet/internal/pkg/sms"
	"github.com/tasklet-app/tasklet/internal/pkg/validator"
)

type fakeSMS struct {
	sent []sms.Message
	err  error
}

func (f *fakeSMS) Send(_ context.Context, msg sms.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSMS) Close() error { return nil }

func newTestUsecase(t *testing.T, sender *fakeSMS) *Usecase {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("expected no error building validator, got %v", err)
	}

	return New(Dependency{
		SMS:        sender,
		Validator:  v,
		Instrument: instrument.NewNoop(),
	})
}

func TestConsumeOtpSmsSendsMessage(t *testing.T) {
	// Arrange
	sender := &fakeSMS{}
	uc := newTestUsecase(t, sender)

	// Act
	err := uc.ConsumeOtpSms(context.Background(), ConsumeOtpSmsInput{
		Phone:   "09123456789",
		Purpose: "login",
		Code:    "123456",
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one sms, got %d", len(sender.sent))
	}
	if sender.sent[0].To != "09123456789" {
		t.Fatalf("expected the sms to target the phone, got %q", sender.sent[0].To)
	}
	if sender.sent[0].Text != "login with 123456" {
		t.Fatalf("expected the purpose and code in the text, got %q", sender.sent[0].Text)
	}
}

func TestConsumeOtpSmsDropsMalformedEvent(t *testing.T) {
	// Arrange
	sender := &fakeSMS{}
	uc := newTestUsecase(t, sender)

	cases := []ConsumeOtpSmsInput{
		{Phone: "12345", Purpose: "login", Code: "123456"},
		{Phone: "09123456789", Purpose: "reset", Code: "123456"},
		{Phone: "09123456789", Purpose: "login", Code: "12a456"},
		{},
	}

	for _, in := range cases {
		// Act
		err := uc.ConsumeOtpSms(context.Background(), in)

		// Assert: dropped, not bounced back for redelivery.
		if err != nil {
			t.Fatalf("expected a malformed event to be dropped silently, got %v", err)
		}
	}

	if len(sender.sent) != 0 {
		t.Fatalf("expected no sms for malformed events, got %d", len(sender.sent))
	}
}

func TestConsumeOtpSmsPropagatesSendFailure(t *testing.T) {
	// Arrange
	sendErr := errors.New("gateway down")
	uc := newTestUsecase(t, &fakeSMS{err: sendErr})

	// Act
	err := uc.ConsumeOtpSms(context.Background(), ConsumeOtpSmsInput{
		Phone:   "09123456789",
		Purpose: "register",
		Code:    "123456",
	})

	// Assert: a delivery failure surfaces so the broker can redeliver.
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected the send error to propagate, got %v", err)
	}
}
