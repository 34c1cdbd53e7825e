package utils

import (
	"strings"
	"testing"
)

func TestNewOneTimeCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := NewOneTimeCode(6)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 chars, got %q", code)
		}
		for _, ch := range code {
			if !strings.ContainsRune(oneTimeCharset, ch) {
				t.Fatalf("character %q outside charset in %q", ch, code)
			}
		}
		seen[code] = true
	}
	// 50 draws from a 36^6 space colliding down to a handful would
	// mean the generator is broken.
	if len(seen) < 40 {
		t.Fatalf("suspiciously many duplicate codes: %d unique of 50", len(seen))
	}
}
