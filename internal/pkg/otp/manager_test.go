package otp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/tasklet-app/tasklet/internal/pkg/cache"
	"github.com/tasklet-app/tasklet/internal/pkg/crypt"
)

type fakeEntry struct {
	value     []byte
	expiresAt time.Time
}

// fakeCache is an in-memory cache.Cache with a movable clock so expiry can be
// tested without sleeping.
type fakeCache struct {
	now     time.Time
	entries map[string]fakeEntry
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		now:     time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC),
		entries: map[string]fakeEntry{},
	}
}

func (c *fakeCache) live(key string) (fakeEntry, bool) {
	e, ok := c.entries[key]
	if !ok || c.now.After(e.expiresAt) {
		return fakeEntry{}, false
	}
	return e, true
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := c.live(key)
	if !ok {
		return nil, cache.ErrNotFound
	}
	return e.value, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.entries[key] = fakeEntry{value: value, expiresAt: c.now.Add(ttl)}
	return nil
}

func (c *fakeCache) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if _, ok := c.live(key); ok {
		return false, nil
	}
	c.entries[key] = fakeEntry{value: value, expiresAt: c.now.Add(ttl)}
	return true, nil
}

func (c *fakeCache) Delete(_ context.Context, key string) (bool, error) {
	_, ok := c.live(key)
	delete(c.entries, key)
	return ok, nil
}

func (c *fakeCache) Close() error { return nil }

func newTestManager(t *testing.T, c cache.Cache) *Manager {
	t.Helper()

	enc, err := crypt.NewAESGCM(bytes.Repeat([]byte("k"), 32))
	if err != nil {
		t.Fatalf("expected no error building encryptor, got %v", err)
	}

	m, err := NewManager(c, enc, 6, 2*time.Minute)
	if err != nil {
		t.Fatalf("expected no error building manager, got %v", err)
	}

	return m
}

func TestNewManagerRejectsBadSettings(t *testing.T) {
	// Arrange
	enc, _ := crypt.NewAESGCM(bytes.Repeat([]byte("k"), 32))

	// Act
	_, errDigits := NewManager(newFakeCache(), enc, 1, time.Minute)
	_, errTTL := NewManager(newFakeCache(), enc, 6, 500*time.Millisecond)

	// Assert
	if !errors.Is(errDigits, ErrInvalidDigits) {
		t.Fatalf("expected ErrInvalidDigits, got %v", errDigits)
	}
	if !errors.Is(errTTL, ErrInvalidExpiration) {
		t.Fatalf("expected ErrInvalidExpiration, got %v", errTTL)
	}
}

func TestGenerateCodeLengthAndRange(t *testing.T) {
	// Arrange
	enc, _ := crypt.NewAESGCM(bytes.Repeat([]byte("k"), 32))

	for digits := 2; digits <= 8; digits++ {
		m, err := NewManager(newFakeCache(), enc, digits, time.Minute)
		if err != nil {
			t.Fatalf("expected no error building manager, got %v", err)
		}

		for i := 0; i < 20; i++ {
			// Act
			code, err := m.Generate()

			// Assert
			if err != nil {
				t.Fatalf("expected no error generating code, got %v", err)
			}
			if len(code) != digits {
				t.Fatalf("expected code of %d digits, got %q", digits, code)
			}
			if code[0] == '0' {
				t.Fatalf("expected non-zero leading digit, got %q", code)
			}
			if _, err := strconv.ParseUint(code, 10, 64); err != nil {
				t.Fatalf("expected numeric code, got %q", code)
			}
		}
	}
}

func TestSaveRejectsWrongLengthCode(t *testing.T) {
	// Arrange
	m := newTestManager(t, newFakeCache())

	// Act
	saved, err := m.Save(context.Background(), "09123456789", "123", nil)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if saved {
		t.Fatal("expected save of wrong-length code to be rejected")
	}
}

func TestSaveRejectsSecondActiveCode(t *testing.T) {
	// Arrange
	m := newTestManager(t, newFakeCache())
	ctx := context.Background()

	saved, err := m.Save(ctx, "09123456789", "111111", nil)
	if err != nil || !saved {
		t.Fatalf("expected first save to win, got saved=%v err=%v", saved, err)
	}

	// Act
	savedAgain, err := m.Save(ctx, "09123456789", "222222", nil)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if savedAgain {
		t.Fatal("expected second save to be rejected while a code is active")
	}

	ok, reason, _, err := m.Validate(ctx, "09123456789", "111111")
	if err != nil || !ok {
		t.Fatalf("expected first code to remain valid, got ok=%v reason=%q err=%v", ok, reason, err)
	}
}

func TestValidateWrongCodeDoesNotConsume(t *testing.T) {
	// Arrange
	m := newTestManager(t, newFakeCache())
	ctx := context.Background()

	if saved, err := m.Save(ctx, "09123456789", "111111", nil); err != nil || !saved {
		t.Fatalf("expected save to succeed, got saved=%v err=%v", saved, err)
	}

	// Act
	ok, reason, _, err := m.Validate(ctx, "09123456789", "999999")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok || reason != ReasonInvalidToken {
		t.Fatalf("expected ReasonInvalidToken, got ok=%v reason=%q", ok, reason)
	}

	ok, reason, _, err = m.Validate(ctx, "09123456789", "111111")
	if err != nil || !ok {
		t.Fatalf("expected correct code to still validate, got ok=%v reason=%q err=%v", ok, reason, err)
	}
}

func TestValidateWithoutActiveCode(t *testing.T) {
	// Arrange
	m := newTestManager(t, newFakeCache())

	// Act
	ok, reason, extra, err := m.Validate(context.Background(), "09123456789", "111111")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok || reason != ReasonNoActiveOTP {
		t.Fatalf("expected ReasonNoActiveOTP, got ok=%v reason=%q", ok, reason)
	}
	if extra == nil {
		t.Fatal("expected empty extra map, got nil")
	}
}

func TestValidateAfterExpiry(t *testing.T) {
	// Arrange
	c := newFakeCache()
	m := newTestManager(t, c)
	ctx := context.Background()

	if saved, err := m.Save(ctx, "09123456789", "111111", nil); err != nil || !saved {
		t.Fatalf("expected save to succeed, got saved=%v err=%v", saved, err)
	}
	c.now = c.now.Add(3 * time.Minute)

	// Act
	ok, reason, _, err := m.Validate(ctx, "09123456789", "111111")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok || reason != ReasonNoActiveOTP {
		t.Fatalf("expected expired code to read as ReasonNoActiveOTP, got ok=%v reason=%q", ok, reason)
	}
}

func TestCancelConsumesRecord(t *testing.T) {
	// Arrange
	m := newTestManager(t, newFakeCache())
	ctx := context.Background()

	if saved, err := m.Save(ctx, "09123456789", "111111", nil); err != nil || !saved {
		t.Fatalf("expected save to succeed, got saved=%v err=%v", saved, err)
	}

	// Act
	deleted, err := m.Cancel(ctx, "09123456789")

	// Assert
	if err != nil || !deleted {
		t.Fatalf("expected cancel to delete the record, got deleted=%v err=%v", deleted, err)
	}

	ok, reason, _, _ := m.Validate(ctx, "09123456789", "111111")
	if ok || reason != ReasonNoActiveOTP {
		t.Fatalf("expected no active code after cancel, got ok=%v reason=%q", ok, reason)
	}

	deletedAgain, err := m.Cancel(ctx, "09123456789")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if deletedAgain {
		t.Fatal("expected second cancel to report nothing deleted")
	}
}

func TestValidateMalformedRecord(t *testing.T) {
	// Arrange
	c := newFakeCache()
	m := newTestManager(t, c)
	ctx := context.Background()

	if err := c.Set(ctx, "09123456789-otp", []byte("not json"), time.Minute); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Act
	ok, reason, _, err := m.Validate(ctx, "09123456789", "111111")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok || reason != ReasonMismatch {
		t.Fatalf("expected ReasonMismatch, got ok=%v reason=%q", ok, reason)
	}
}

func TestValidateRecordWithoutToken(t *testing.T) {
	// Arrange
	c := newFakeCache()
	m := newTestManager(t, c)
	ctx := context.Background()

	body, _ := json.Marshal(map[string]any{"purpose": "login"})
	if err := c.Set(ctx, "09123456789-otp", body, time.Minute); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Act
	ok, reason, extra, err := m.Validate(ctx, "09123456789", "111111")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok || reason != ReasonNoTokenFound {
		t.Fatalf("expected ReasonNoTokenFound, got ok=%v reason=%q", ok, reason)
	}
	if extra["purpose"] != "login" {
		t.Fatalf("expected surviving fields to be returned, got %v", extra)
	}
}

func TestValidateUndecryptableTokenKeepsRecord(t *testing.T) {
	// Arrange
	c := newFakeCache()
	m := newTestManager(t, c)
	ctx := context.Background()

	body, _ := json.Marshal(map[string]any{
		"token": base64.StdEncoding.EncodeToString([]byte("garbage ciphertext bytes")),
	})
	if err := c.Set(ctx, "09123456789-otp", body, time.Minute); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Act
	ok, reason, _, err := m.Validate(ctx, "09123456789", "111111")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok || reason != ReasonDecryptFailed {
		t.Fatalf("expected ReasonDecryptFailed, got ok=%v reason=%q", ok, reason)
	}

	// The record is left in place so the outcome is stable across retries.
	ok, reason, _, _ = m.Validate(ctx, "09123456789", "111111")
	if ok || reason != ReasonDecryptFailed {
		t.Fatalf("expected the record to remain, got ok=%v reason=%q", ok, reason)
	}
}

func TestValidateReturnsSavedExtra(t *testing.T) {
	// Arrange
	m := newTestManager(t, newFakeCache())
	ctx := context.Background()

	extra := map[string]any{"purpose": "register", "phone": "09123456789"}
	if saved, err := m.Save(ctx, "09123456789", "111111", extra); err != nil || !saved {
		t.Fatalf("expected save to succeed, got saved=%v err=%v", saved, err)
	}

	// Act
	ok, _, got, err := m.Validate(ctx, "09123456789", "111111")

	// Assert
	if err != nil || !ok {
		t.Fatalf("expected validation to succeed, got ok=%v err=%v", ok, err)
	}
	if got["purpose"] != "register" || got["phone"] != "09123456789" {
		t.Fatalf("expected saved extra fields back, got %v", got)
	}
	if _, leaked := got["token"]; leaked {
		t.Fatal("expected token field to be stripped from extra")
	}
}
