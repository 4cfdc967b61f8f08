package server

import (
	"strings"
	"testing"
)

func TestJoinCodeShape(t *testing.T) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	for i := 0; i < 200; i++ {
		code := newJoinCode()
		if len(code) != 6 {
			t.Fatalf("expected 6 characters, got %q", code)
		}
		for _, r := range code {
			if !strings.ContainsRune(alphabet, r) {
				t.Fatalf("character %q outside alphabet in %q", r, code)
			}
		}
	}
}

func TestJoinCodeVaries(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		seen[newJoinCode()] = struct{}{}
	}
	if len(seen) < 2 {
		t.Fatal("join codes show no variation")
	}
}
