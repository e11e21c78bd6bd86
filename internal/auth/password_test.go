package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashNeverEqualsPlaintext(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	digest, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if digest == "password123" {
		t.Fatal("digest equals plaintext")
	}
	if !h.Verify("password123", digest) {
		t.Fatal("Verify failed for correct plaintext")
	}
	if h.Verify("password124", digest) {
		t.Fatal("Verify succeeded for wrong plaintext")
	}
}

func TestHashesAreSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	second, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password are identical")
	}
}

func TestNewHasherClampsInvalidCost(t *testing.T) {
	h := NewHasher(99)
	if h.cost != bcrypt.DefaultCost {
		t.Fatalf("cost = %d, want %d", h.cost, bcrypt.DefaultCost)
	}
}

func TestPasswordPolicyErrors(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantPart string
	}{
		{"too short", "Ab1", "at least 8 characters"},
		{"no uppercase", "abcdefg1", "uppercase letter"},
		{"no lowercase", "ABCDEFG1", "lowercase letter"},
		{"no digit", "Abcdefgh", "one digit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := PasswordPolicyErrors(tt.password)
			if len(errs) == 0 {
				t.Fatalf("expected a policy error for %q", tt.password)
			}
			found := false
			for _, msg := range errs {
				if strings.Contains(msg, tt.wantPart) {
					found = true
				}
			}
			if !found {
				t.Fatalf("errors %v do not mention %q", errs, tt.wantPart)
			}
		})
	}
}

func TestPasswordPolicyAcceptsValidPassword(t *testing.T) {
	if errs := PasswordPolicyErrors("Abcdefg1"); len(errs) != 0 {
		t.Fatalf("expected no policy errors, got %v", errs)
	}
}
