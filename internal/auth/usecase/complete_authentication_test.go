package usecase

import (
	"context"
	"testing"

	"github.com/tasklet-app/tasklet/internal/auth/entity"
	"github.com/tasklet-app/tasklet/internal/pkg/goerror"
	"github.com/tasklet-app/tasklet/internal/pkg/jwt"
)

func TestCompleteAuthenticationRegistersNewUser(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.uc.StartAuthentication(ctx, StartAuthenticationInput{Phone: "09123456789"}); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	code := f.activeCode(t, "09123456789")

	// Act
	out, err := f.uc.CompleteAuthentication(ctx, CompleteAuthenticationInput{Phone: "09123456789", Code: code})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !out.Registered {
		t.Fatal("expected a new user to be registered")
	}

	user, err := f.repo.GetUserByPhone(ctx, "09123456789")
	if err != nil {
		t.Fatalf("expected the user to exist, got %v", err)
	}
	if user.Status != entity.UserStatusActive {
		t.Fatalf("expected a freshly registered user to be active, got %v", user.Status)
	}
	if out.User.ID != user.ID || out.User.Phone != "09123456789" {
		t.Fatalf("expected the output to identify the new user, got %+v", out.User)
	}

	claims, err := f.jwt.Verify(out.TokenPair.AccessToken, jwt.TypeAccess)
	if err != nil {
		t.Fatalf("expected a valid access token, got %v", err)
	}
	if claims.UserID != user.ID || claims.Phone != "09123456789" {
		t.Fatalf("expected access claims for the new user, got %+v", claims)
	}

	if _, err := f.jwt.Verify(out.TokenPair.RefreshToken, jwt.TypeRefresh); err != nil {
		t.Fatalf("expected a valid refresh token, got %v", err)
	}

	rec := f.refreshRecord(t, out.TokenPair.RefreshToken)
	if rec.UserID != user.ID || rec.IsBlacklisted() {
		t.Fatalf("expected an outstanding ledger row for the user, got %+v", rec)
	}
	if !rec.ExpiresAt.Equal(out.TokenPair.RefreshExpiresAt) {
		t.Fatalf("expected ledger expiry %v, got %v", out.TokenPair.RefreshExpiresAt, rec.ExpiresAt)
	}
}

func TestCompleteAuthenticationConsumesCode(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.uc.StartAuthentication(ctx, StartAuthenticationInput{Phone: "09123456789"}); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	code := f.activeCode(t, "09123456789")

	if _, err := f.uc.CompleteAuthentication(ctx, CompleteAuthenticationInput{Phone: "09123456789", Code: code}); err != nil {
		t.Fatalf("expected first completion to succeed, got %v", err)
	}

	// Act
	_, err := f.uc.CompleteAuthentication(ctx, CompleteAuthenticationInput{Phone: "09123456789", Code: code})

	// Assert
	assertCode(t, err, goerror.CodeNotFound)
}

func TestCompleteAuthenticationLoginRotatesSessions(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(7, "09123456789", entity.UserStatusActive)

	login := func() *CompleteAuthenticationOutput {
		t.Helper()
		if _, err := f.uc.StartAuthentication(ctx, StartAuthenticationInput{Phone: "09123456789"}); err != nil {
			t.Fatalf("expected start to succeed, got %v", err)
		}
		out, err := f.uc.CompleteAuthentication(ctx, CompleteAuthenticationInput{
			Phone: "09123456789",
			Code:  f.activeCode(t, "09123456789"),
		})
		if err != nil {
			t.Fatalf("expected completion to succeed, got %v", err)
		}
		return out
	}

	first := login()

	// Act
	second := login()

	// Assert
	if first.Registered || second.Registered {
		t.Fatal("expected logins for an existing user, not registrations")
	}

	oldRec := f.refreshRecord(t, first.TokenPair.RefreshToken)
	if !oldRec.IsBlacklisted() {
		t.Fatal("expected the earlier refresh token to be blacklisted by the new login")
	}

	newRec := f.refreshRecord(t, second.TokenPair.RefreshToken)
	if newRec.IsBlacklisted() {
		t.Fatal("expected the fresh refresh token to be outstanding")
	}
}

func TestCompleteAuthenticationWrongCode(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.uc.StartAuthentication(ctx, StartAuthenticationInput{Phone: "09123456789"}); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	code := f.activeCode(t, "09123456789")

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	// Act
	_, err := f.uc.CompleteAuthentication(ctx, CompleteAuthenticationInput{Phone: "09123456789", Code: wrong})

	// Assert
	assertCode(t, err, goerror.CodeNotAcceptable)

	// A wrong guess does not burn the code.
	if _, err := f.uc.CompleteAuthentication(ctx, CompleteAuthenticationInput{Phone: "09123456789", Code: code}); err != nil {
		t.Fatalf("expected the correct code to still work, got %v", err)
	}
}

func TestCompleteAuthenticationWithoutActiveCode(t *testing.T) {
	// Arrange
	f := newFixture(t)

	// Act
	_, err := f.uc.CompleteAuthentication(context.Background(), CompleteAuthenticationInput{
		Phone: "09123456789",
		Code:  "123456",
	})

	// Assert
	assertCode(t, err, goerror.CodeNotFound)
}

func TestCompleteAuthenticationRejectsMalformedInput(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	cases := []CompleteAuthenticationInput{
		{Phone: "", Code: "123456"},
		{Phone: "12345", Code: "123456"},
		{Phone: "09123456789", Code: ""},
		{Phone: "09123456789", Code: "12a456"},
	}

	for _, in := range cases {
		// Act
		_, err := f.uc.CompleteAuthentication(ctx, in)

		// Assert
		assertCode(t, err, goerror.CodeInvalidInput)
	}
}

func TestCompleteAuthenticationInactiveUser(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(7, "09123456789", entity.UserStatusInactive)

	if _, err := f.uc.StartAuthentication(ctx, StartAuthenticationInput{Phone: "09123456789"}); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	code := f.activeCode(t, "09123456789")

	// Act
	_, err := f.uc.CompleteAuthentication(ctx, CompleteAuthenticationInput{Phone: "09123456789", Code: code})

	// Assert
	assertCode(t, err, goerror.CodeForbidden)

	// The code was consumed before the status check, so a retry starts over.
	_, err = f.uc.CompleteAuthentication(ctx, CompleteAuthenticationInput{Phone: "09123456789", Code: code})
	assertCode(t, err, goerror.CodeNotFound)
}

func TestCompleteAuthenticationRotationFailureKeepsOldSessions(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(7, "09123456789", entity.UserStatusActive)

	if _, err := f.uc.StartAuthentication(ctx, StartAuthenticationInput{Phone: "09123456789"}); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	first, err := f.uc.CompleteAuthentication(ctx, CompleteAuthenticationInput{
		Phone: "09123456789",
		Code:  f.activeCode(t, "09123456789"),
	})
	if err != nil {
		t.Fatalf("expected first login to succeed, got %v", err)
	}

	f.repo.mu.Lock()
	f.repo.failRotate = true
	f.repo.mu.Unlock()

	if _, err := f.uc.StartAuthentication(ctx, StartAuthenticationInput{Phone: "09123456789"}); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}

	// Act
	_, err = f.uc.CompleteAuthentication(ctx, CompleteAuthenticationInput{
		Phone: "09123456789",
		Code:  f.activeCode(t, "09123456789"),
	})

	// Assert
	assertCode(t, err, goerror.CodeInternal)

	rec := f.refreshRecord(t, first.TokenPair.RefreshToken)
	if rec.IsBlacklisted() {
		t.Fatal("expected the earlier session to survive a failed rotation")
	}
}
