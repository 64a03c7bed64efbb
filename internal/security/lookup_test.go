package security_test

import (
	"testing"

	"github.com/Rrens/chatbot-pro/internal/security"
)

func TestNewLookupCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		code, err := security.NewLookupCode()
		if err != nil {
			t.Fatalf("failed to generate code: %v", err)
		}
		if !security.IsLookupCode(code) {
			t.Fatalf("generated code %q has wrong shape", code)
		}
		if seen[code] {
			t.Fatalf("duplicate code %q", code)
		}
		seen[code] = true
	}
}

func TestIsLookupCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"abcDEF123_-x", true},
		{"short", false},
		{"abcDEF123_-x1", false},
		{"abcDEF123_/x", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := security.IsLookupCode(tt.code); got != tt.want {
			t.Errorf("IsLookupCode(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
