package hashing

import (
	"errors"
	"testing"

	"bragawork/internal/config"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	h := NewHasher(config.HashingConfig{BcryptCost: bcrypt.MinCost})

	hash, err := h.HashPassword("admin123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "admin123" {
		t.Fatal("hash equals plaintext")
	}

	if err := h.ComparePassword(hash, "admin123"); err != nil {
		t.Fatalf("ComparePassword(correct): %v", err)
	}
	if err := h.ComparePassword(hash, "wrong"); !errors.Is(err, ErrMismatch) {
		t.Fatalf("ComparePassword(wrong) = %v, want ErrMismatch", err)
	}
}

func TestCompareMalformedHash(t *testing.T) {
	h := NewHasher(config.HashingConfig{BcryptCost: bcrypt.MinCost})
	err := h.ComparePassword("not-a-bcrypt-hash", "x")
	if err == nil || errors.Is(err, ErrMismatch) {
		t.Fatalf("err = %v, want a non-mismatch error", err)
	}
}

func TestCostIsClamped(t *testing.T) {
	if got := NewHasher(config.HashingConfig{BcryptCost: 0}).cost; got != bcrypt.DefaultCost {
		t.Errorf("cost 0 -> %d, want %d", got, bcrypt.DefaultCost)
	}
	if got := NewHasher(config.HashingConfig{BcryptCost: 99}).cost; got != bcrypt.MaxCost {
		t.Errorf("cost 99 -> %d, want %d", got, bcrypt.MaxCost)
	}
}
