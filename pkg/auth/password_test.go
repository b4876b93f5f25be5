package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func testHasher() *PasswordHasher {
	// MinCost keeps the bcrypt latency out of the test suite.
	return NewPasswordHasher(bcrypt.MinCost)
}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := testHasher()

	for _, plaintext := range []string{"secret123", "p@ss w0rd", "ümläüts-ünd-zö"} {
		hashed, err := h.Hash(plaintext)
		if err != nil {
			t.Fatalf("Hash(%q): %v", plaintext, err)
		}
		if hashed == plaintext {
			t.Fatal("hash equals plaintext")
		}
		if !h.Verify(plaintext, hashed) {
			t.Errorf("Verify(%q) = false after hashing it", plaintext)
		}
	}
}

func TestPasswordHasher_WrongPassword(t *testing.T) {
	h := testHasher()

	hashed, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h.Verify("secret124", hashed) {
		t.Error("wrong password verified")
	}
	if h.Verify("", hashed) {
		t.Error("empty password verified")
	}
}

func TestPasswordHasher_SaltedOutput(t *testing.T) {
	h := testHasher()

	h1, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	h2, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same plaintext are identical; salt missing")
	}

	// Both still verify despite differing.
	if !h.Verify("secret123", h1) || !h.Verify("secret123", h2) {
		t.Error("salted hashes do not verify")
	}
}

func TestPasswordHasher_GarbageHash(t *testing.T) {
	h := testHasher()

	// Verify must return false, not panic, on a malformed stored hash.
	if h.Verify("secret123", "not-a-bcrypt-hash") {
		t.Error("garbage hash verified")
	}
}

func TestNewPasswordHasher_DefaultCost(t *testing.T) {
	h := NewPasswordHasher(0)
	if h.cost != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want bcrypt.DefaultCost (%d)", h.cost, bcrypt.DefaultCost)
	}
}
