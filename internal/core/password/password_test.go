package password

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "secret1" {
		t.Fatalf("hash equals plaintext")
	}
	if !h.Verify("secret1", hash) {
		t.Fatalf("Verify rejected the original password")
	}
	if h.Verify("secret2", hash) {
		t.Fatalf("Verify accepted a different password")
	}
}

func TestHasher_SaltRandomness(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash("same-input")
	if err != nil {
		t.Fatalf("first hash: %v", err)
	}
	second, err := h.Hash("same-input")
	if err != nil {
		t.Fatalf("second hash: %v", err)
	}
	if first == second {
		t.Fatalf("two hashes of the same input are identical")
	}
	if !h.Verify("same-input", first) || !h.Verify("same-input", second) {
		t.Fatalf("both hashes should verify")
	}
}

func TestHasher_MalformedHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	for _, stored := range []string{"", "not-a-bcrypt-hash", "$2a$garbage"} {
		if h.Verify("anything", stored) {
			t.Fatalf("Verify accepted malformed hash %q", stored)
		}
	}
}

func TestNewHasher_ClampsCost(t *testing.T) {
	h := NewHasher(-1)
	if h.cost != DefaultCost {
		t.Fatalf("expected cost %d, got %d", DefaultCost, h.cost)
	}

	h = NewHasher(100)
	if h.cost != DefaultCost {
		t.Fatalf("expected cost %d, got %d", DefaultCost, h.cost)
	}
}
