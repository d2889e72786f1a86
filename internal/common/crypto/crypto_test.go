package crypto

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("password1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "password1" {
		t.Fatal("expected hash to differ from plaintext")
	}
	if err := h.Compare(hash, "password1"); err != nil {
		t.Errorf("expected match, got %v", err)
	}
	if err := h.Compare(hash, "password2"); err == nil {
		t.Error("expected mismatch for wrong password")
	}
}

func TestBcryptHasher_Salted(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	a, _ := h.Hash("same-password1")
	b, _ := h.Hash("same-password1")
	if a == b {
		t.Error("expected distinct digests for the same password")
	}
}

func TestBcryptHasher_RejectsOverlongPassword(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	if _, err := h.Hash(strings.Repeat("é", 37)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong for 74 bytes, got %v", err)
	}
	if _, err := h.Hash(strings.Repeat("é", 36)); err != nil {
		t.Fatalf("expected 72 bytes to hash, got %v", err)
	}
}

func TestNewBcryptHasher_InvalidCostFallsBack(t *testing.T) {
	h := NewBcryptHasher(100)
	if h.cost != bcrypt.DefaultCost {
		t.Errorf("expected default cost, got %d", h.cost)
	}
}

func TestUUIDGenerator_UniqueIDs(t *testing.T) {
	g := NewUUIDGenerator()
	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		id, err := g.NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if _, err := uuid.Parse(id); err != nil {
			t.Fatalf("expected uuid, got %q", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}
