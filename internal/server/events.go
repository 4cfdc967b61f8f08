package server

const (
	eventPlayerJoined        = "player-joined"
	eventPlayerUpdated       = "player-updated"
	eventPlayerKicked        = "player-kicked"
	eventPlayerLeft          = "player-left"
	eventHostTransferred     = "host-transferred"
	eventStoryAdded          = "story-added"
	eventStoryUpdated        = "story-updated"
	eventActiveStoryChanged  = "active-story-changed"
	eventStoryCompleted      = "story-completed"
	eventStoryDeleted        = "story-deleted"
	eventVoteSubmitted       = "vote-submitted"
	eventVoteRemoved         = "vote-removed"
	eventVotesRevealed       = "votes-revealed"
	eventVotesReset          = "votes-reset"
	eventDeckUpdated         = "deck-updated"
	eventRoomSettingsUpdated = "room-settings-updated"
	eventRoomNameUpdated     = "room-name-updated"
	eventCelebrationsUpdated = "celebrations-enabled-updated"
	eventEmojisUpdated       = "emojis-enabled-updated"
	eventPlayerReaction      = "player-reaction"
	eventEmojiSent           = "emoji-sent"
	eventPlayerOnline        = "player-online"
	eventPlayerOffline       = "player-offline"
	eventRoomSync            = "room-sync"
)

// Event is one named realtime message on a room channel. Seq increases
// monotonically per room so clients can recognize stale incremental events
// that arrive after a newer full-state one.
type Event struct {
	Name     string        `json:"event"`
	Seq      uint64        `json:"seq,omitempty"`
	RoomID   string        `json:"-"`
	Payload  EventPayload  `json:"payload"`
	Snapshot *RoomSnapshot `json:"snapshot,omitempty"`
}

type EventPayload struct {
	ID                  string       `json:"id,omitempty"`
	PlayerID            string       `json:"playerId,omitempty"`
	PlayerName          string       `json:"playerName,omitempty"`
	Name                string       `json:"name,omitempty"`
	AvatarStyle         string       `json:"avatarStyle,omitempty"`
	AvatarSeed          string       `json:"avatarSeed,omitempty"`
	NewHostID           string       `json:"newHostId,omitempty"`
	OldHostID           string       `json:"oldHostId,omitempty"`
	NewHostName         string       `json:"newHostName,omitempty"`
	Title               string       `json:"title,omitempty"`
	Description         string       `json:"description,omitempty"`
	Status              string       `json:"status,omitempty"`
	VotesRevealed       *bool        `json:"votesRevealed,omitempty"`
	FinalScore          *float64     `json:"finalScore,omitempty"`
	ResetCurrentStory   bool         `json:"resetCurrentStory,omitempty"`
	StoryID             string       `json:"storyId,omitempty"`
	Value               string       `json:"value,omitempty"`
	TotalVotes          int          `json:"totalVotes,omitempty"`
	TotalPlayers        int          `json:"totalPlayers,omitempty"`
	IsComplete          bool         `json:"isComplete,omitempty"`
	Votes               []VoteReveal `json:"votes,omitempty"`
	DeckType            string       `json:"deckType,omitempty"`
	Deck                Deck         `json:"deck,omitempty"`
	DeckTheme           string       `json:"deckTheme,omitempty"`
	AutoRevealVotes     *bool        `json:"autoRevealVotes,omitempty"`
	CelebrationsEnabled *bool        `json:"celebrationsEnabled,omitempty"`
	EmojisEnabled       *bool        `json:"emojisEnabled,omitempty"`
	FromPlayerID        string       `json:"fromPlayerId,omitempty"`
	ToPlayerID          string       `json:"toPlayerId,omitempty"`
	Emoji               string       `json:"emoji,omitempty"`
}

// VoteReveal carries one revealed vote with voter identity. The
// votes-revealed payload always holds the complete list, never a delta.
type VoteReveal struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Value      string `json:"value"`
}

// nextEvent stamps a room-scoped sequence number. Callers hold the store
// lock for the room when building events.
func nextEvent(room *Room, name string, payload EventPayload) Event {
	room.EventSeq++
	return Event{
		Name:    name,
		Seq:     room.EventSeq,
		RoomID:  room.ID,
		Payload: payload,
	}
}

func revealedVotes(room *Room, story *Story) []VoteReveal {
	votes := make([]VoteReveal, 0, len(story.Votes))
	for _, vote := range story.Votes {
		name := ""
		if player := findPlayer(room, vote.PlayerID); player != nil {
			name = player.Name
		}
		votes = append(votes, VoteReveal{
			PlayerID:   vote.PlayerID,
			PlayerName: name,
			Value:      vote.Value,
		})
	}
	return votes
}

func boolPtr(value bool) *bool {
	return &value
}
