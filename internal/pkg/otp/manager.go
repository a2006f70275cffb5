package otp

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/tasklet-app/tasklet/internal/pkg/cache"
	"github.com/tasklet-app/tasklet/internal/pkg/crypt"
)

// Reason describes why a restore or validate operation did not succeed.
type Reason string

const (
	// ReasonNone is the zero reason used on success.
	ReasonNone Reason = ""
	// ReasonNoActiveOTP means no record exists for the indicator. Never saved,
	// cancelled, and expired through the cache TTL are indistinguishable.
	ReasonNoActiveOTP Reason = "NO_ACTIVE_OTP"
	// ReasonMismatch means the cached value is not a well-formed record.
	ReasonMismatch Reason = "OTP_MISMATCH"
	// ReasonNoTokenFound means the record exists but carries no token field.
	ReasonNoTokenFound Reason = "NO_TOKEN_FOUND"
	// ReasonDecryptFailed means the stored token could not be decrypted.
	ReasonDecryptFailed Reason = "FAILED_TO_DECRYPT_OTP"
	// ReasonInvalidToken means the candidate code does not match the stored one.
	ReasonInvalidToken Reason = "INVALID_OTP_TOKEN"
)

var (
	// ErrInvalidDigits indicates a code length below the supported minimum.
	ErrInvalidDigits = errors.New("otp: digits must be at least 2")
	// ErrInvalidExpiration indicates a TTL below the supported minimum.
	ErrInvalidExpiration = errors.New("otp: expiration must be at least 1 second")
)

// tokenField is the record key holding the encrypted code.
const tokenField = "token"

// Manager generates, stores, and validates one-time codes per indicator.
//
// All expected outcomes are reported through the boolean/Reason results; the
// error return carries only backend failures (cache I/O).
type Manager struct {
	cache      cache.Cache
	encryptor  crypt.Encryptor
	digits     int
	expiration time.Duration
}

// NewManager validates the settings eagerly and returns a Manager.
//
// Invalid digits or expiration are configuration errors; callers treat them
// as fatal at startup.
func NewManager(c cache.Cache, enc crypt.Encryptor, digits int, expiration time.Duration) (*Manager, error) {
	if digits < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDigits, digits)
	}
	if expiration < time.Second {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidExpiration, expiration)
	}

	return &Manager{
		cache:      c,
		encryptor:  enc,
		digits:     digits,
		expiration: expiration,
	}, nil
}

// Digits returns the configured code length.
func (m *Manager) Digits() int {
	return m.digits
}

// Expiration returns the configured code time-to-live.
func (m *Manager) Expiration() time.Duration {
	return m.expiration
}

// Generate returns a uniformly random numeric code of exactly the configured
// length. The first digit is never zero because codes are drawn from
// [10^(d-1), 10^d - 1]. Pure function, no state is touched.
func (m *Manager) Generate() (string, error) {
	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(m.digits-1)), nil)
	span := new(big.Int).Mul(low, big.NewInt(9)) // 10^d - 10^(d-1)

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("otp: random source failed: %w", err)
	}

	return n.Add(n, low).String(), nil
}

// Save encrypts the code and writes it, together with the extra fields, as a
// single record with the configured TTL.
//
// It returns false without mutating anything when the code has the wrong
// length or when an unexpired record already exists for the indicator. The
// existence check and the write are one atomic conditional set, so two
// concurrent saves for the same indicator cannot both win.
func (m *Manager) Save(ctx context.Context, indicator, code string, extra map[string]any) (bool, error) {
	if len(code) != m.digits {
		return false, nil
	}

	sealed, err := m.encryptor.Encrypt([]byte(code))
	if err != nil {
		return false, fmt.Errorf("otp: encrypt code: %w", err)
	}

	record := make(map[string]any, len(extra)+1)
	for k, v := range extra {
		record[k] = v
	}
	record[tokenField] = base64.StdEncoding.EncodeToString(sealed)

	body, err := json.Marshal(record)
	if err != nil {
		return false, fmt.Errorf("otp: encode record: %w", err)
	}

	return m.cache.SetNX(ctx, m.key(indicator), body, m.expiration)
}

// Restore reads the record for the indicator without consuming it.
//
// On success it returns the encrypted token bytes plus the extra fields saved
// alongside it. Failure reasons: ReasonNoActiveOTP when nothing is stored,
// ReasonMismatch when the stored value is not a record, ReasonNoTokenFound
// when the record has no token field (the remaining fields are still
// returned).
func (m *Manager) Restore(ctx context.Context, indicator string) (bool, Reason, []byte, map[string]any, error) {
	body, err := m.cache.Get(ctx, m.key(indicator))
	if errors.Is(err, cache.ErrNotFound) {
		return false, ReasonNoActiveOTP, nil, map[string]any{}, nil
	}
	if err != nil {
		return false, ReasonNone, nil, nil, fmt.Errorf("otp: read record: %w", err)
	}

	var record map[string]any
	if err := json.Unmarshal(body, &record); err != nil || record == nil {
		return false, ReasonMismatch, nil, map[string]any{}, nil
	}

	raw, ok := record[tokenField]
	if !ok {
		return false, ReasonNoTokenFound, nil, record, nil
	}
	delete(record, tokenField)

	encoded, ok := raw.(string)
	if !ok {
		return false, ReasonNoTokenFound, nil, record, nil
	}

	token, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		// Corrupted token material: hand the raw bytes to the caller so the
		// decrypt step reports it as a decryption failure.
		token = []byte(encoded)
	}

	return true, ReasonNone, token, record, nil
}

// Validate restores the record, decrypts the stored token, and compares it to
// the candidate by exact string equality.
//
// Restore failures propagate unchanged. A decryption failure yields
// ReasonDecryptFailed and leaves the record in place so the caller may retry.
// A successful validation does NOT consume the record; cancelling after use
// is the caller's responsibility.
func (m *Manager) Validate(ctx context.Context, indicator, candidate string) (bool, Reason, map[string]any, error) {
	ok, reason, token, extra, err := m.Restore(ctx, indicator)
	if err != nil {
		return false, ReasonNone, nil, err
	}
	if !ok {
		return false, reason, extra, nil
	}

	plain, err := m.encryptor.Decrypt(token)
	if err != nil {
		return false, ReasonDecryptFailed, map[string]any{}, nil
	}

	if string(plain) != candidate {
		return false, ReasonInvalidToken, map[string]any{}, nil
	}

	return true, ReasonNone, extra, nil
}

// Cancel removes the record for the indicator. It reports true only when a
// record existed and was deleted.
func (m *Manager) Cancel(ctx context.Context, indicator string) (bool, error) {
	deleted, err := m.cache.Delete(ctx, m.key(indicator))
	if err != nil {
		return false, fmt.Errorf("otp: delete record: %w", err)
	}

	return deleted, nil
}

func (m *Manager) key(indicator string) string {
	return indicator + "-otp"
}
