// Package hash provides helpers for hashing and verifying secrets.
//
// Typical usage is fingerprinting tokens at rest: store only the keyed hash,
// then verify a presented token by comparing it against the stored hash in
// constant time. Implementations (like HMAC-SHA256) live in this package
// behind a small interface.
package hash
