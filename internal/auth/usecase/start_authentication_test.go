package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/tasklet-app/tasklet/internal/auth/entity"
	"github.com/tasklet-app/tasklet/internal/pkg/goerror"
)

func TestStartAuthenticationForUnseenPhone(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	// Act
	out, err := f.uc.StartAuthentication(ctx, StartAuthenticationInput{Phone: "09123456789"})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Cooldown != 2*time.Minute {
		t.Fatalf("expected cooldown equal to the otp ttl, got %v", out.Cooldown)
	}

	if err := f.g.Wait(); err != nil {
		t.Fatalf("expected dispatch goroutine to finish cleanly, got %v", err)
	}

	events := f.msgs.published()
	if len(events) != 1 {
		t.Fatalf("expected one sms event, got %d", len(events))
	}
	if events[0].Purpose != entity.PurposeRegister {
		t.Fatalf("expected a register code for an unseen phone, got %q", events[0].Purpose)
	}
	if events[0].Phone != "09123456789" {
		t.Fatalf("expected the event to target the phone, got %q", events[0].Phone)
	}
	if len(events[0].Code) != 6 {
		t.Fatalf("expected a 6-digit code, got %q", events[0].Code)
	}
	if events[0].Code != f.activeCode(t, "09123456789") {
		t.Fatal("expected the dispatched code to match the stored one")
	}
}

func TestStartAuthenticationForKnownPhone(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.seedUser(7, "09123456789", entity.UserStatusActive)

	// Act
	_, err := f.uc.StartAuthentication(context.Background(), StartAuthenticationInput{Phone: "09123456789"})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := f.g.Wait(); err != nil {
		t.Fatalf("expected dispatch goroutine to finish cleanly, got %v", err)
	}

	events := f.msgs.published()
	if len(events) != 1 || events[0].Purpose != entity.PurposeLogin {
		t.Fatalf("expected one login sms event, got %+v", events)
	}
}

func TestStartAuthenticationRejectsMalformedPhone(t *testing.T) {
	// Arrange
	f := newFixture(t)

	for _, phone := range []string{"", "12345", "areg", "08123456789"} {
		// Act
		_, err := f.uc.StartAuthentication(context.Background(), StartAuthenticationInput{Phone: phone})

		// Assert
		assertCode(t, err, goerror.CodeInvalidInput)
	}

	if err := f.g.Wait(); err != nil {
		t.Fatalf("expected no goroutine errors, got %v", err)
	}
	if len(f.msgs.published()) != 0 {
		t.Fatal("expected no sms events for rejected requests")
	}
}

func TestStartAuthenticationWhileCodeIsActive(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.uc.StartAuthentication(ctx, StartAuthenticationInput{Phone: "09123456789"}); err != nil {
		t.Fatalf("expected first start to succeed, got %v", err)
	}
	firstCode := f.activeCode(t, "09123456789")

	// Act
	_, err := f.uc.StartAuthentication(ctx, StartAuthenticationInput{Phone: "09123456789"})

	// Assert
	assertCode(t, err, goerror.CodeLocked)

	if got := f.activeCode(t, "09123456789"); got != firstCode {
		t.Fatal("expected the original code to stay active after a locked start")
	}

	if err := f.g.Wait(); err != nil {
		t.Fatalf("expected no goroutine errors, got %v", err)
	}
	if len(f.msgs.published()) != 1 {
		t.Fatalf("expected only the first start to dispatch an sms, got %d events", len(f.msgs.published()))
	}
}

func TestStartAuthenticationAfterExpiryIssuesNewCode(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.uc.StartAuthentication(ctx, StartAuthenticationInput{Phone: "09123456789"}); err != nil {
		t.Fatalf("expected first start to succeed, got %v", err)
	}

	f.cache.mu.Lock()
	f.cache.now = f.cache.now.Add(3 * time.Minute)
	f.cache.mu.Unlock()

	// Act
	out, err := f.uc.StartAuthentication(ctx, StartAuthenticationInput{Phone: "09123456789"})

	// Assert
	if err != nil {
		t.Fatalf("expected a new code after expiry, got %v", err)
	}
	if out.Cooldown != 2*time.Minute {
		t.Fatalf("expected cooldown equal to the otp ttl, got %v", out.Cooldown)
	}
}
