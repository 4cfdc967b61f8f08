package server

import (
	"encoding/json"
	"testing"
)

func TestParseDeckShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"card objects", `[{"label":"1"},{"label":"2"}]`, []string{"1", "2"}},
		{"bare labels", `["XS","S","M"]`, []string{"XS", "S", "M"}},
		{"json-encoded string", `"[\"1\",\"2\",\"3\"]"`, []string{"1", "2", "3"}},
		{"trims and dedupes", `[" 5","5","","8"]`, []string{"5", "8"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deck, ok := ParseDeck(json.RawMessage(tt.raw))
			if !ok {
				t.Fatalf("expected parse to succeed for %s", tt.raw)
			}
			if len(deck) != len(tt.want) {
				t.Fatalf("expected %d cards, got %d", len(tt.want), len(deck))
			}
			for i, label := range tt.want {
				if deck[i].Label != label {
					t.Fatalf("card %d: expected %q, got %q", i, label, deck[i].Label)
				}
			}
		})
	}
}

func TestParseDeckRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "null", "42", `{"label":"1"}`, `[""]`, "not json"} {
		if _, ok := ParseDeck(json.RawMessage(raw)); ok {
			t.Fatalf("expected parse to fail for %q", raw)
		}
	}
}

func TestDeckPresets(t *testing.T) {
	for _, deckType := range []string{deckTypeFibonacci, deckTypeTShirt, deckTypePowersOf2, deckTypeSequential} {
		deck, ok := deckForType(deckType)
		if !ok || len(deck) == 0 {
			t.Fatalf("expected preset deck for %s", deckType)
		}
	}
	if _, ok := deckForType("tarot"); ok {
		t.Fatal("expected unknown preset to fail")
	}
}

func TestDeckContains(t *testing.T) {
	deck, _ := deckForType(deckTypeTShirt)
	if !deck.Contains("XL") {
		t.Fatal("expected deck to contain XL")
	}
	if deck.Contains("XXS") {
		t.Fatal("expected deck to not contain XXS")
	}
}
