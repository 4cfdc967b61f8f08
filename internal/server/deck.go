package server

import (
	"encoding/json"
	"strings"
)

var deckPresets = map[string][]string{
	deckTypeFibonacci:  {"0", "1", "2", "3", "5", "8", "13", "21", "34", "55", "89", "?", "☕"},
	deckTypeTShirt:     {"XS", "S", "M", "L", "XL", "XXL", "?", "☕"},
	deckTypePowersOf2:  {"1", "2", "4", "8", "16", "32", "64", "?", "☕"},
	deckTypeSequential: {"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "?", "☕"},
}

func deckForType(deckType string) (Deck, bool) {
	labels, ok := deckPresets[deckType]
	if !ok {
		return nil, false
	}
	deck := make(Deck, 0, len(labels))
	for _, label := range labels {
		deck = append(deck, Card{Label: label})
	}
	return deck, true
}

// ParseDeck accepts the deck in any of the shapes clients have historically
// sent: an array of cards, an array of labels, or either of those wrapped in
// a JSON-encoded string. It never trusts the input shape.
func ParseDeck(raw json.RawMessage) (Deck, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = json.RawMessage(encoded)
	}
	var cards []Card
	if err := json.Unmarshal(raw, &cards); err == nil {
		deck := normalizeDeck(cards)
		if len(deck) > 0 {
			return deck, true
		}
	}
	var labels []string
	if err := json.Unmarshal(raw, &labels); err == nil {
		cards = cards[:0]
		for _, label := range labels {
			cards = append(cards, Card{Label: label})
		}
		deck := normalizeDeck(cards)
		if len(deck) > 0 {
			return deck, true
		}
	}
	return nil, false
}

// normalizeDeck trims labels and drops blanks and duplicates while keeping
// the original card order.
func normalizeDeck(cards []Card) Deck {
	seen := make(map[string]struct{}, len(cards))
	deck := make(Deck, 0, len(cards))
	for _, card := range cards {
		label := strings.TrimSpace(card.Label)
		if label == "" {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		deck = append(deck, Card{Label: label})
	}
	return deck
}
