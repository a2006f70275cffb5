package jwt

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type staticUUID struct{}

func (staticUUID) Generate() string { return "test-jti" }

func newTestJWT(t *testing.T, now time.Time) *Symmetric {
	t.Helper()

	s, err := NewHS512(Config{
		Secret:     bytes.Repeat([]byte("s"), 64),
		Issuer:     "tasklet",
		Audiences:  []string{"tasklet-api"},
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 30 * 24 * time.Hour,
		Clock:      fixedClock{now: now},
		UUID:       staticUUID{},
	})
	if err != nil {
		t.Fatalf("expected no error building jwt, got %v", err)
	}

	return s
}

func TestNewHS512RejectsShortKey(t *testing.T) {
	// Act
	_, err := NewHS512(Config{Secret: bytes.Repeat([]byte("s"), 63)})

	// Assert
	if !errors.Is(err, ErrSigningKeyTooShort) {
		t.Fatalf("expected ErrSigningKeyTooShort, got %v", err)
	}
}

func TestGenerateAndVerifyAccessToken(t *testing.T) {
	// Arrange
	now := time.Now()
	s := newTestJWT(t, now)

	// Act
	token, expiresAt, err := s.GenerateAccess(42, "09123456789")
	if err != nil {
		t.Fatalf("expected no error generating, got %v", err)
	}
	claims, err := s.Verify(token, TypeAccess)

	// Assert
	if err != nil {
		t.Fatalf("expected no error verifying, got %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("expected user id 42, got %d", claims.UserID)
	}
	if claims.Phone != "09123456789" {
		t.Fatalf("expected phone claim, got %q", claims.Phone)
	}
	if claims.TokenType != TypeAccess {
		t.Fatalf("expected access token type, got %q", claims.TokenType)
	}
	if want := now.Add(15 * time.Minute); !expiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, expiresAt)
	}
}

func TestVerifyRejectsWrongTokenType(t *testing.T) {
	// Arrange
	s := newTestJWT(t, time.Now())

	access, _, err := s.GenerateAccess(42, "09123456789")
	if err != nil {
		t.Fatalf("expected no error generating, got %v", err)
	}
	refresh, _, err := s.GenerateRefresh(42, "09123456789")
	if err != nil {
		t.Fatalf("expected no error generating, got %v", err)
	}

	// Act
	_, errAccess := s.Verify(access, TypeRefresh)
	_, errRefresh := s.Verify(refresh, TypeAccess)

	// Assert
	if !errors.Is(errAccess, ErrWrongTokenType) {
		t.Fatalf("expected ErrWrongTokenType for access token, got %v", errAccess)
	}
	if !errors.Is(errRefresh, ErrWrongTokenType) {
		t.Fatalf("expected ErrWrongTokenType for refresh token, got %v", errRefresh)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	// Arrange: mint in the past so the token is already beyond its TTL.
	past := newTestJWT(t, time.Now().Add(-48*time.Hour))
	fresh := newTestJWT(t, time.Now())

	token, _, err := past.GenerateAccess(42, "09123456789")
	if err != nil {
		t.Fatalf("expected no error generating, got %v", err)
	}

	// Act
	_, err = fresh.Verify(token, TypeAccess)

	// Assert
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyRejectsMalformedToken(t *testing.T) {
	// Arrange
	s := newTestJWT(t, time.Now())

	// Act
	_, err := s.Verify("definitely.not.a-token", TypeAccess)

	// Assert
	if err == nil {
		t.Fatal("expected an error for a malformed token")
	}
	if errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected a parse failure, got ErrTokenExpired: %v", err)
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	// Arrange
	s := newTestJWT(t, time.Now())

	other, err := NewHS512(Config{
		Secret:     bytes.Repeat([]byte("x"), 64),
		Issuer:     "tasklet",
		Audiences:  []string{"tasklet-api"},
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 30 * 24 * time.Hour,
		Clock:      fixedClock{now: time.Now()},
		UUID:       staticUUID{},
	})
	if err != nil {
		t.Fatalf("expected no error building jwt, got %v", err)
	}

	token, _, err := other.GenerateAccess(42, "09123456789")
	if err != nil {
		t.Fatalf("expected no error generating, got %v", err)
	}

	// Act
	_, err = s.Verify(token, TypeAccess)

	// Assert
	if err == nil {
		t.Fatal("expected an error for a token signed with a different key")
	}
}
