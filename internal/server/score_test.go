package server

import "testing"

func votesOf(values ...string) []VoteEntry {
	votes := make([]VoteEntry, 0, len(values))
	for i, value := range values {
		votes = append(votes, VoteEntry{PlayerID: string(rune('a' + i)), Value: value})
	}
	return votes
}

func TestFinalScoreMajority(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   float64
	}{
		{"unanimous", []string{"5", "5", "5"}, 5},
		{"numeric majority", []string{"3", "3", "5"}, 3},
		{"majority late in cast order", []string{"8", "13", "13"}, 13},
		{"tie falls back to mean", []string{"1", "3"}, 2},
		{"non-numeric winner averages numerics", []string{"?", "?", "4", "8"}, 6},
		{"fractional mean", []string{"1", "2"}, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := finalScoreFor(votesOf(tt.values...))
			if got == nil {
				t.Fatalf("expected score %v, got nil", tt.want)
			}
			if *got != tt.want {
				t.Fatalf("expected score %v, got %v", tt.want, *got)
			}
		})
	}
}

func TestFinalScoreNil(t *testing.T) {
	tests := []struct {
		name   string
		values []string
	}{
		{"no votes", nil},
		{"non-numeric majority without numerics", []string{"XS", "XS", "M"}},
		{"non-numeric tie without numerics", []string{"?", "☕"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := finalScoreFor(votesOf(tt.values...)); got != nil {
				t.Fatalf("expected nil score, got %v", *got)
			}
		})
	}
}

// A three-way tie must not pick any single winner regardless of cast order.
func TestFinalScoreThreeWayTie(t *testing.T) {
	got := finalScoreFor(votesOf("2", "5", "8"))
	if got == nil {
		t.Fatal("expected mean fallback, got nil")
	}
	if *got != 5 {
		t.Fatalf("expected mean 5, got %v", *got)
	}
}

func TestFinalScoreDeterministicAcrossRuns(t *testing.T) {
	votes := votesOf("3", "5", "3", "5", "8", "3")
	first := finalScoreFor(votes)
	for i := 0; i < 100; i++ {
		again := finalScoreFor(votes)
		if again == nil || first == nil || *again != *first {
			t.Fatalf("score changed between runs: %v vs %v", first, again)
		}
	}
	if *first != 3 {
		t.Fatalf("expected majority 3, got %v", *first)
	}
}
