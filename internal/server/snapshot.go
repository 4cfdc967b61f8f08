package server

// RoomSnapshot is the full-room state sent on websocket connect, in the
// periodic room-sync push, and from the snapshot endpoint. It is the
// authoritative view a client seeds its reconciler from.
type RoomSnapshot struct {
	RoomID              string           `json:"roomId"`
	JoinCode            string           `json:"joinCode"`
	Name                string           `json:"name"`
	DeckType            string           `json:"deckType"`
	DeckTheme           string           `json:"deckTheme,omitempty"`
	Deck                Deck             `json:"deck"`
	AutoRevealVotes     bool             `json:"autoRevealVotes"`
	CelebrationsEnabled bool             `json:"celebrationsEnabled"`
	EmojisEnabled       bool             `json:"emojisEnabled"`
	Seq                 uint64           `json:"seq"`
	Players             []PlayerSnapshot `json:"players"`
	Stories             []StorySnapshot  `json:"stories"`
	CurrentStory        *StorySnapshot   `json:"currentStory,omitempty"`
	Votes               []VoteReveal     `json:"votes,omitempty"`
}

type PlayerSnapshot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsHost      bool   `json:"isHost"`
	AvatarStyle string `json:"avatarStyle,omitempty"`
	AvatarSeed  string `json:"avatarSeed,omitempty"`
	Online      bool   `json:"online"`
	HasVoted    bool   `json:"hasVoted"`
	Vote        string `json:"vote,omitempty"`
}

type StorySnapshot struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	Status         string   `json:"status"`
	VotesRevealed  bool     `json:"votesRevealed"`
	FinalScore     *float64 `json:"finalScore,omitempty"`
	ManualOverride bool     `json:"manualOverride,omitempty"`
}

// buildSnapshot masks vote values until the active story is revealed; only
// the has-voted flag leaks before that point.
func buildSnapshot(room *Room, online map[string]bool) RoomSnapshot {
	snap := RoomSnapshot{
		RoomID:              room.ID,
		JoinCode:            room.JoinCode,
		Name:                room.Name,
		DeckType:            room.DeckType,
		DeckTheme:           room.DeckTheme,
		Deck:                room.Deck,
		AutoRevealVotes:     room.AutoRevealVotes,
		CelebrationsEnabled: room.CelebrationsEnabled,
		EmojisEnabled:       room.EmojisEnabled,
		Seq:                 room.EventSeq,
	}

	current := activeStory(room)
	voted := make(map[string]string)
	if current != nil {
		for _, vote := range current.Votes {
			voted[vote.PlayerID] = vote.Value
		}
	}

	for _, player := range room.Players {
		entry := PlayerSnapshot{
			ID:          player.ID,
			Name:        player.Name,
			IsHost:      player.IsHost,
			AvatarStyle: player.AvatarStyle,
			AvatarSeed:  player.AvatarSeed,
			Online:      online[player.ID],
		}
		if value, ok := voted[player.ID]; ok {
			entry.HasVoted = true
			if current.VotesRevealed {
				entry.Vote = value
			}
		}
		snap.Players = append(snap.Players, entry)
	}

	for i := range room.Stories {
		story := storySnapshot(&room.Stories[i])
		snap.Stories = append(snap.Stories, story)
		if room.Stories[i].ID == room.ActiveStoryID {
			active := story
			snap.CurrentStory = &active
		}
	}

	if current != nil && current.VotesRevealed {
		snap.Votes = revealedVotes(room, current)
	}
	return snap
}

func storySnapshot(story *Story) StorySnapshot {
	return StorySnapshot{
		ID:             story.ID,
		Title:          story.Title,
		Description:    story.Description,
		Status:         story.Status,
		VotesRevealed:  story.VotesRevealed,
		FinalScore:     story.FinalScore,
		ManualOverride: story.ManualOverride,
	}
}

// Snapshot builds the current full-room view for the given room id.
func (s *Server) Snapshot(roomID string) (RoomSnapshot, error) {
	var snap RoomSnapshot
	online := s.ws.OnlinePlayers(roomID)
	_, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		snap = buildSnapshot(room, online)
		return nil
	})
	if err != nil {
		return RoomSnapshot{}, err
	}
	return snap, nil
}
