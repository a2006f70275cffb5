// Package crypt provides symmetric encryption for short secrets kept at rest,
// such as one-time-password codes stored in the cache.
//
// Business code should depend on the Encryptor interface; the AES-GCM
// implementation lives in this package.
package crypt

// Encryptor defines the interface for encrypting/decrypting short byte strings.
type Encryptor interface {
	// Encrypt returns ciphertext for the given plaintext.
	Encrypt(plaintext []byte) (ciphertext []byte, err error)
	// Decrypt returns plaintext for the given ciphertext.
	//
	// Malformed, truncated, or foreign ciphertext yields ErrDecryptFailed;
	// callers treat it as a validation failure, never a crash.
	Decrypt(ciphertext []byte) (plaintext []byte, err error)
}
