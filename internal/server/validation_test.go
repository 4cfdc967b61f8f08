package server

import (
	"strings"
	"testing"
	"time"
)

func TestValidateTextCollapsesWhitespace(t *testing.T) {
	got, err := validatePlayerName("  Ada   Lovelace  ")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got != "Ada Lovelace" {
		t.Fatalf("expected collapsed name, got %q", got)
	}
	if _, err := validatePlayerName("   "); err == nil {
		t.Fatal("blank name accepted")
	}
	if _, err := validatePlayerName(strings.Repeat("a", 21)); err == nil {
		t.Fatal("over-length name accepted")
	}
}

func TestValidateDescriptionAllowsEmpty(t *testing.T) {
	got, err := validateDescription("")
	if err != nil || got != "" {
		t.Fatalf("empty description should pass, got %q err=%v", got, err)
	}
	if _, err := validateDescription(strings.Repeat("x", 1001)); err == nil {
		t.Fatal("over-length description accepted")
	}
}

func TestValidateEmoji(t *testing.T) {
	got, err := validateEmoji(" 🎉 ")
	if err != nil || got != "🎉" {
		t.Fatalf("emoji trim failed: %q err=%v", got, err)
	}
	if _, err := validateEmoji(""); err == nil {
		t.Fatal("empty emoji accepted")
	}
	if _, err := validateEmoji(strings.Repeat("🎉", 10)); err == nil {
		t.Fatal("oversized emoji accepted")
	}
}

func TestRateLimiterPerKey(t *testing.T) {
	limiter := newRateLimiter()
	if !limiter.Allow("1.2.3.4", time.Minute) {
		t.Fatal("first call must pass")
	}
	if limiter.Allow("1.2.3.4", time.Minute) {
		t.Fatal("second call inside interval must fail")
	}
	if !limiter.Allow("5.6.7.8", time.Minute) {
		t.Fatal("different key must not be throttled")
	}
	if !limiter.Allow("1.2.3.4", 0) {
		t.Fatal("zero interval must always pass")
	}
}
