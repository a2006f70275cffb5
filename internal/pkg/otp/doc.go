// Package otp manages short-lived numeric one-time passwords keyed by an
// indicator (typically a phone number).
//
// Codes are encrypted before they reach the cache and expire purely through
// the cache's own TTL; there is no explicit expiry bookkeeping. At most one
// active code exists per indicator, enforced with the cache's atomic
// conditional set.
package otp
