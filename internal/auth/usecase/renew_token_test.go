package usecase

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/tasklet-app/tasklet/internal/auth/entity"
	"github.com/tasklet-app/tasklet/internal/pkg/goerror"
	"github.com/tasklet-app/tasklet/internal/pkg/jwt"
)

// register runs the full start+complete flow for the phone and returns the
// minted token pair.
func register(t *testing.T, f *fixture, phone string) *CompleteAuthenticationOutput {
	t.Helper()
	ctx := context.Background()

	if _, err := f.uc.StartAuthentication(ctx, StartAuthenticationInput{Phone: phone}); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}

	out, err := f.uc.CompleteAuthentication(ctx, CompleteAuthenticationInput{
		Phone: phone,
		Code:  f.activeCode(t, phone),
	})
	if err != nil {
		t.Fatalf("expected completion to succeed, got %v", err)
	}

	return out
}

func TestRenewTokenIssuesFreshAccessToken(t *testing.T) {
	// Arrange
	f := newFixture(t)
	pair := register(t, f, "09123456789")

	// Act
	out, err := f.uc.RenewToken(context.Background(), RenewTokenInput{RefreshToken: pair.TokenPair.RefreshToken})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	claims, err := f.jwt.Verify(out.AccessToken, jwt.TypeAccess)
	if err != nil {
		t.Fatalf("expected a valid access token, got %v", err)
	}
	if claims.Phone != "09123456789" {
		t.Fatalf("expected access claims for the user, got %+v", claims)
	}
	if want := f.now.Add(15 * time.Minute); !out.AccessExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, out.AccessExpiresAt)
	}

	// The refresh token itself stays outstanding.
	if rec := f.refreshRecord(t, pair.TokenPair.RefreshToken); rec.IsBlacklisted() {
		t.Fatal("expected the refresh token to remain outstanding after renewal")
	}
}

func TestRenewTokenRejectsAccessToken(t *testing.T) {
	// Arrange
	f := newFixture(t)
	pair := register(t, f, "09123456789")

	// Act
	_, err := f.uc.RenewToken(context.Background(), RenewTokenInput{RefreshToken: pair.TokenPair.AccessToken})

	// Assert
	assertCode(t, err, goerror.CodeForbidden)
}

func TestRenewTokenRejectsMalformedToken(t *testing.T) {
	// Arrange
	f := newFixture(t)

	// Act
	_, err := f.uc.RenewToken(context.Background(), RenewTokenInput{RefreshToken: "not-a-jwt"})

	// Assert
	assertCode(t, err, goerror.CodeForbidden)
}

func TestRenewTokenRejectsExpiredToken(t *testing.T) {
	// Arrange: a signer sharing the key but minting far in the past.
	f := newFixture(t)

	past, err := jwt.NewHS512(jwt.Config{
		Secret:     bytes.Repeat([]byte("s"), 64),
		Issuer:     "tasklet",
		Audiences:  []string{"tasklet-api"},
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 30 * 24 * time.Hour,
		Clock:      fixedClock{now: f.now.Add(-31 * 24 * time.Hour)},
		UUID:       staticUUID{},
	})
	if err != nil {
		t.Fatalf("expected no error building jwt, got %v", err)
	}

	token, _, err := past.GenerateRefresh(7, "09123456789")
	if err != nil {
		t.Fatalf("expected no error generating, got %v", err)
	}

	// Act
	_, err = f.uc.RenewToken(context.Background(), RenewTokenInput{RefreshToken: token})

	// Assert
	assertCode(t, err, goerror.CodeUnauthorized)
}

func TestRenewTokenRejectsUnrecordedToken(t *testing.T) {
	// Arrange: a well-formed refresh token that never went through a login.
	f := newFixture(t)

	token, _, err := f.jwt.GenerateRefresh(7, "09123456789")
	if err != nil {
		t.Fatalf("expected no error generating, got %v", err)
	}

	// Act
	_, err = f.uc.RenewToken(context.Background(), RenewTokenInput{RefreshToken: token})

	// Assert
	assertCode(t, err, goerror.CodeUnauthorized)
}

func TestRenewTokenRejectsBlacklistedToken(t *testing.T) {
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
	second := login()

	// Act
	_, errOld := f.uc.RenewToken(ctx, RenewTokenInput{RefreshToken: first.TokenPair.RefreshToken})
	outNew, errNew := f.uc.RenewToken(ctx, RenewTokenInput{RefreshToken: second.TokenPair.RefreshToken})

	// Assert
	assertCode(t, errOld, goerror.CodeUnauthorized)
	if errNew != nil {
		t.Fatalf("expected the current refresh token to renew, got %v", errNew)
	}
	if outNew.AccessToken == "" {
		t.Fatal("expected a fresh access token")
	}
}

func TestRenewTokenRejectsLedgerExpiredToken(t *testing.T) {
	// Arrange: the signed token is still inside its JWT window but the ledger
	// row has already lapsed.
	f := newFixture(t)
	pair := register(t, f, "09123456789")

	rec := f.refreshRecord(t, pair.TokenPair.RefreshToken)
	f.repo.mu.Lock()
	rec.ExpiresAt = f.now.Add(-time.Minute)
	f.repo.tokens[rec.TokenHash] = rec
	f.repo.mu.Unlock()

	// Act
	_, err := f.uc.RenewToken(context.Background(), RenewTokenInput{RefreshToken: pair.TokenPair.RefreshToken})

	// Assert
	assertCode(t, err, goerror.CodeUnauthorized)
}

func TestRenewTokenUnknownUser(t *testing.T) {
	// Arrange
	f := newFixture(t)
	pair := register(t, f, "09123456789")

	f.repo.mu.Lock()
	for id := range f.repo.users {
		delete(f.repo.users, id)
	}
	f.repo.mu.Unlock()

	// Act
	_, err := f.uc.RenewToken(context.Background(), RenewTokenInput{RefreshToken: pair.TokenPair.RefreshToken})

	// Assert
	assertCode(t, err, goerror.CodeNotFound)
}

func TestRenewTokenAllowsInactiveUser(t *testing.T) {
	// Arrange: deactivation alone does not revoke sessions; only a new login
	// rotates them. An outstanding refresh token therefore keeps working.
	f := newFixture(t)
	pair := register(t, f, "09123456789")

	f.repo.mu.Lock()
	for id, u := range f.repo.users {
		u.Status = entity.UserStatusInactive
		f.repo.users[id] = u
	}
	f.repo.mu.Unlock()

	// Act
	out, err := f.uc.RenewToken(context.Background(), RenewTokenInput{RefreshToken: pair.TokenPair.RefreshToken})

	// Assert
	if err != nil {
		t.Fatalf("expected renewal to succeed, got %v", err)
	}
	if out.AccessToken == "" {
		t.Fatal("expected a fresh access token")
	}
}

func TestRenewTokenRejectsEmptyInput(t *testing.T) {
	// Arrange
	f := newFixture(t)

	// Act
	_, err := f.uc.RenewToken(context.Background(), RenewTokenInput{})

	// Assert
	assertCode(t, err, goerror.CodeInvalidInput)
}
