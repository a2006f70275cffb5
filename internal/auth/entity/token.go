package entity

import "time"

// TokenPair is a freshly minted access and refresh token with their expiries.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// RefreshRecord is a ledger row tracking one outstanding refresh token.
//
// Only the keyed hash of the token is stored. A non-nil BlacklistedAt means
// the token was revoked before its natural expiry.
type RefreshRecord struct {
	ID            int64
	UserID        int64
	TokenHash     string
	ExpiresAt     time.Time
	BlacklistedAt *time.Time
	CreatedAt     time.Time
}

// IsBlacklisted reports whether the token was explicitly revoked.
func (r RefreshRecord) IsBlacklisted() bool {
	return r.BlacklistedAt != nil
}
