package auth

import (
	"encoding/hex"
	"testing"
)

func TestGenerateToken(t *testing.T) {
	first, err := generateToken()
	if err != nil {
		t.Fatalf("generateToken returned error: %v", err)
	}

	raw, err := hex.DecodeString(first)
	if err != nil {
		t.Fatalf("token is not hex: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("token is %d bytes, want 32", len(raw))
	}

	second, err := generateToken()
	if err != nil {
		t.Fatalf("generateToken returned error: %v", err)
	}
	if first == second {
		t.Fatal("two tokens are identical")
	}
}

func TestIsSafeRedirect(t *testing.T) {
	tests := []struct {
		target string
		want   bool
	}{
		{"/", true},
		{"/admin", true},
		{"/account/orders", true},
		{"", false},
		{"//evil.example.com", false},
		{"https://evil.example.com", false},
		{"relative/path", false},
	}

	for _, tt := range tests {
		if got := isSafeRedirect(tt.target); got != tt.want {
			t.Errorf("isSafeRedirect(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}
