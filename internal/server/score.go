package server

import "strconv"

// finalScoreFor computes the completion score for a story's votes.
//
// The most common value wins when its count is strictly higher than every
// other value's. A numeric winner becomes the score directly. A tie, or a
// non-numeric winner, falls back to the arithmetic mean of all numeric
// votes. With no votes, or no numeric votes to average, the score is nil.
// Counts are tallied in cast order so the result never depends on map
// iteration order.
func finalScoreFor(votes []VoteEntry) *float64 {
	if len(votes) == 0 {
		return nil
	}
	order := make([]string, 0, len(votes))
	counts := make(map[string]int, len(votes))
	for _, vote := range votes {
		if _, seen := counts[vote.Value]; !seen {
			order = append(order, vote.Value)
		}
		counts[vote.Value]++
	}

	winner := ""
	best := 0
	tied := false
	for _, value := range order {
		switch {
		case counts[value] > best:
			winner = value
			best = counts[value]
			tied = false
		case counts[value] == best:
			tied = true
		}
	}

	if !tied {
		if score, err := strconv.ParseFloat(winner, 64); err == nil {
			return &score
		}
	}

	sum := 0.0
	numeric := 0
	for _, vote := range votes {
		value, err := strconv.ParseFloat(vote.Value, 64)
		if err != nil {
			continue
		}
		sum += value
		numeric++
	}
	if numeric == 0 {
		return nil
	}
	mean := sum / float64(numeric)
	return &mean
}
