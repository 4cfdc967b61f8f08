package server

const (
	storyIdle      = "idle"
	storyActive    = "active"
	storyCompleted = "completed"
)

const (
	deckTypeFibonacci  = "fibonacci"
	deckTypeTShirt     = "t-shirt"
	deckTypePowersOf2  = "powers-of-2"
	deckTypeSequential = "sequential"
	deckTypeCustom     = "custom"
)

type Card struct {
	Label string `json:"label"`
}

type Deck []Card

func (d Deck) Contains(label string) bool {
	for _, card := range d {
		if card.Label == label {
			return true
		}
	}
	return false
}

type RoomSummary struct {
	ID       string `json:"id"`
	JoinCode string `json:"joinCode"`
	Name     string `json:"name"`
	Players  int    `json:"players"`
}

type Room struct {
	ID                  string
	JoinCode            string
	Name                string
	DeckType            string
	DeckTheme           string
	Deck                Deck
	ActiveStoryID       string
	AutoRevealVotes     bool
	CelebrationsEnabled bool
	EmojisEnabled       bool
	EventSeq            uint64
	Players             []Player
	Stories             []Story
}

type Player struct {
	ID          string
	Name        string
	IsHost      bool
	AvatarStyle string
	AvatarSeed  string
}

type Story struct {
	ID             string
	Title          string
	Description    string
	Status         string
	VotesRevealed  bool
	FinalScore     *float64
	ManualOverride bool
	Votes          []VoteEntry
}

type VoteEntry struct {
	PlayerID string
	Value    string
}

func findStory(room *Room, storyID string) *Story {
	for i := range room.Stories {
		if room.Stories[i].ID == storyID {
			return &room.Stories[i]
		}
	}
	return nil
}

func findPlayer(room *Room, playerID string) *Player {
	for i := range room.Players {
		if room.Players[i].ID == playerID {
			return &room.Players[i]
		}
	}
	return nil
}

func activeStory(room *Room) *Story {
	if room.ActiveStoryID == "" {
		return nil
	}
	return findStory(room, room.ActiveStoryID)
}

// upsertVote overwrites the player's existing vote in place so that the
// cast order of first occurrence is preserved, or appends a new entry.
func upsertVote(story *Story, playerID, value string) {
	for i := range story.Votes {
		if story.Votes[i].PlayerID == playerID {
			story.Votes[i].Value = value
			return
		}
	}
	story.Votes = append(story.Votes, VoteEntry{PlayerID: playerID, Value: value})
}

func removeVoteEntry(story *Story, playerID string) bool {
	for i := range story.Votes {
		if story.Votes[i].PlayerID == playerID {
			story.Votes = append(story.Votes[:i], story.Votes[i+1:]...)
			return true
		}
	}
	return false
}

// purgePlayerVotes removes a departing player's votes from every story in
// the room so no orphaned entries survive a kick or leave.
func purgePlayerVotes(room *Room, playerID string) {
	for i := range room.Stories {
		removeVoteEntry(&room.Stories[i], playerID)
	}
}
