package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Ciphertext format (binary):
// [0..1]   uint16 version (currently 1)
// [2..13]  12-byte nonce
// [14..]   gcm.Seal output (ciphertext + tag)
const aesGCMVersion uint16 = 1

const (
	gcmNonceSize = 12
	aesKeyLen    = 32
)

var (
	// ErrInvalidKeyLength indicates the key is not 32 bytes (AES-256).
	ErrInvalidKeyLength = errors.New("crypt: key must be 32 bytes (AES-256)")
	// ErrPlaintextEmpty indicates an empty plaintext input.
	ErrPlaintextEmpty = errors.New("crypt: plaintext is empty")
	// ErrDecryptFailed indicates decryption failure.
	ErrDecryptFailed = errors.New("crypt: decrypt failed")
)

// AESGCM implements Encryptor using AES-256-GCM with a single shared key.
type AESGCM struct {
	gcm cipher.AEAD
}

// NewAESGCM constructs an AES-GCM encryptor from raw key material.
//
// The key must be exactly 32 bytes; anything else is a configuration error.
func NewAESGCM(key []byte) (*AESGCM, error) {
	if len(key) != aesKeyLen {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeyLength, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypt: aes init failed: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypt: gcm init failed: %w", err)
	}

	return &AESGCM{gcm: gcm}, nil
}

// Encrypt seals plaintext with a fresh random nonce.
func (e *AESGCM) Encrypt(plaintext []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, ErrPlaintextEmpty
	}

	nonce := make([]byte, gcmNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("crypt: nonce generation failed: %w", err)
	}

	sealed := e.gcm.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 2+gcmNonceSize+len(sealed))
	binary.BigEndian.PutUint16(out[0:2], aesGCMVersion)
	copy(out[2:2+gcmNonceSize], nonce)
	copy(out[2+gcmNonceSize:], sealed)

	return out, nil
}

// Decrypt opens a ciphertext produced by Encrypt.
func (e *AESGCM) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < 2+gcmNonceSize+1 {
		return nil, ErrDecryptFailed
	}

	if binary.BigEndian.Uint16(ciphertext[0:2]) != aesGCMVersion {
		return nil, ErrDecryptFailed
	}

	nonce := ciphertext[2 : 2+gcmNonceSize]
	sealed := ciphertext[2+gcmNonceSize:]

	plain, err := e.gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		// Do not leak whether it was "wrong key" vs "tampered".
		return nil, ErrDecryptFailed
	}

	return plain, nil
}
