package hash

import (
	"bytes"
	"testing"
)

func TestHashIsDeterministic(t *testing.T) {
	// Arrange
	h := NewHMACSHA256("secret")

	// Act
	first, err := h.Hash("refresh-token")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := h.Hash("refresh-token")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("expected the same input to hash to the same digest")
	}
}

func TestHashDependsOnSecret(t *testing.T) {
	// Arrange
	a := NewHMACSHA256("secret-a")
	b := NewHMACSHA256("secret-b")

	// Act
	hashA, _ := a.Hash("refresh-token")
	hashB, _ := b.Hash("refresh-token")

	// Assert
	if bytes.Equal(hashA, hashB) {
		t.Fatal("expected different secrets to produce different digests")
	}
}

func TestVerify(t *testing.T) {
	// Arrange
	h := NewHMACSHA256("secret")
	hashed, _ := h.Hash("refresh-token")

	// Act + Assert
	if !h.Verify(string(hashed), "refresh-token") {
		t.Fatal("expected matching input to verify")
	}
	if h.Verify(string(hashed), "another-token") {
		t.Fatal("expected non-matching input to fail verification")
	}
}
