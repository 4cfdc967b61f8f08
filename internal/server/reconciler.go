package server

// RoomView is the client-side room state, seeded from a RoomSnapshot and
// patched by applyRoomEvent. Each connected browser runs one of these; the
// reducer shape keeps the out-of-order tolerance unit-testable without a
// live bus.
type RoomView struct {
	RoomID              string
	Name                string
	DeckType            string
	DeckTheme           string
	Deck                Deck
	AutoRevealVotes     bool
	CelebrationsEnabled bool
	EmojisEnabled       bool
	CurrentStory        *StorySnapshot
	Stories             []StorySnapshot
	Players             map[string]PlayerView
	VotesRevealed       bool
	SelectedVote        string
	// AuthSeq is the sequence of the newest full-state event applied;
	// incremental events older than it are discarded as stale.
	AuthSeq uint64
}

type PlayerView struct {
	ID          string
	Name        string
	AvatarStyle string
	AvatarSeed  string
	IsHost      bool
	Online      bool
	HasVoted    bool
	Vote        string
}

// NewRoomView seeds a view from a full snapshot.
func NewRoomView(snap RoomSnapshot) RoomView {
	view := RoomView{
		RoomID:              snap.RoomID,
		Name:                snap.Name,
		DeckType:            snap.DeckType,
		DeckTheme:           snap.DeckTheme,
		Deck:                append(Deck(nil), snap.Deck...),
		AutoRevealVotes:     snap.AutoRevealVotes,
		CelebrationsEnabled: snap.CelebrationsEnabled,
		EmojisEnabled:       snap.EmojisEnabled,
		Stories:             append([]StorySnapshot(nil), snap.Stories...),
		Players:             make(map[string]PlayerView, len(snap.Players)),
		AuthSeq:             snap.Seq,
	}
	if snap.CurrentStory != nil {
		current := *snap.CurrentStory
		view.CurrentStory = &current
		view.VotesRevealed = current.VotesRevealed
	}
	for _, player := range snap.Players {
		view.Players[player.ID] = PlayerView{
			ID:          player.ID,
			Name:        player.Name,
			AvatarStyle: player.AvatarStyle,
			AvatarSeed:  player.AvatarSeed,
			IsHost:      player.IsHost,
			Online:      player.Online,
			HasVoted:    player.HasVoted,
			Vote:        player.Vote,
		}
	}
	return view
}

func (v RoomView) clone() RoomView {
	next := v
	next.Deck = append(Deck(nil), v.Deck...)
	next.Stories = append([]StorySnapshot(nil), v.Stories...)
	next.Players = make(map[string]PlayerView, len(v.Players))
	for id, player := range v.Players {
		next.Players[id] = player
	}
	if v.CurrentStory != nil {
		current := *v.CurrentStory
		next.CurrentStory = &current
	}
	return next
}

func fullStateEvent(name string) bool {
	switch name {
	case eventVotesRevealed, eventVotesReset, eventActiveStoryChanged, eventStoryCompleted, eventRoomSync:
		return true
	}
	return false
}

// applyRoomEvent is a pure reducer: it returns the next view and never
// mutates its input. Delivery is at-least-once and may reorder, so anything
// sequenced at or below the newest full-state event already applied is
// discarded as stale, and full-state payloads always replace rather than
// merge.
func applyRoomEvent(view RoomView, ev Event) RoomView {
	if ev.Seq != 0 && ev.Seq <= view.AuthSeq {
		// A full-state event at or below AuthSeq is a redelivered duplicate
		// or arrived behind a newer full-state event; applying it would
		// regress state the newer event already settled. Stale incremental
		// vote events lose for the same reason.
		if fullStateEvent(ev.Name) {
			return view
		}
		switch ev.Name {
		case eventVoteSubmitted, eventVoteRemoved:
			return view
		}
	}

	next := view.clone()
	if fullStateEvent(ev.Name) && ev.Seq > next.AuthSeq {
		next.AuthSeq = ev.Seq
	}

	switch ev.Name {
	case eventVoteSubmitted:
		if player, ok := next.Players[ev.Payload.PlayerID]; ok {
			player.HasVoted = true
			if next.VotesRevealed {
				player.Vote = ev.Payload.Value
			}
			next.Players[player.ID] = player
		}

	case eventVoteRemoved:
		if player, ok := next.Players[ev.Payload.PlayerID]; ok {
			player.HasVoted = false
			player.Vote = ""
			next.Players[player.ID] = player
		}

	case eventVotesRevealed:
		// Authoritative full list: a player absent from the payload did
		// not vote, so wipe before applying rather than merging.
		next.VotesRevealed = true
		if next.CurrentStory != nil {
			next.CurrentStory.VotesRevealed = true
		}
		next.clearVotes()
		for _, vote := range ev.Payload.Votes {
			if player, ok := next.Players[vote.PlayerID]; ok {
				player.HasVoted = true
				player.Vote = vote.Value
				next.Players[player.ID] = player
			}
		}

	case eventVotesReset:
		next.VotesRevealed = false
		next.SelectedVote = ""
		if next.CurrentStory != nil {
			next.CurrentStory.VotesRevealed = false
		}
		next.clearVotes()

	case eventActiveStoryChanged:
		current := StorySnapshot{
			ID:          ev.Payload.ID,
			Title:       ev.Payload.Title,
			Description: ev.Payload.Description,
			Status:      ev.Payload.Status,
		}
		if ev.Payload.VotesRevealed != nil {
			current.VotesRevealed = *ev.Payload.VotesRevealed
		}
		next.CurrentStory = &current
		next.VotesRevealed = current.VotesRevealed
		next.SelectedVote = ""
		next.clearVotes()
		next.patchStory(current)

	case eventStoryCompleted:
		// The server is authoritative: clear the current story even if the
		// completed id does not match the one tracked locally.
		next.CurrentStory = nil
		next.VotesRevealed = false
		next.SelectedVote = ""
		next.clearVotes()
		for i := range next.Stories {
			if next.Stories[i].ID == ev.Payload.ID {
				next.Stories[i].Status = ev.Payload.Status
				next.Stories[i].FinalScore = ev.Payload.FinalScore
			}
		}

	case eventStoryAdded:
		next.Stories = append(next.Stories, StorySnapshot{
			ID:          ev.Payload.ID,
			Title:       ev.Payload.Title,
			Description: ev.Payload.Description,
			Status:      storyIdle,
		})

	case eventStoryUpdated:
		for i := range next.Stories {
			if next.Stories[i].ID == ev.Payload.ID {
				next.Stories[i].Title = ev.Payload.Title
				next.Stories[i].Description = ev.Payload.Description
			}
		}
		if next.CurrentStory != nil && next.CurrentStory.ID == ev.Payload.ID {
			next.CurrentStory.Title = ev.Payload.Title
			next.CurrentStory.Description = ev.Payload.Description
		}

	case eventStoryDeleted:
		for i := range next.Stories {
			if next.Stories[i].ID == ev.Payload.ID {
				next.Stories = append(next.Stories[:i], next.Stories[i+1:]...)
				break
			}
		}
		if next.CurrentStory != nil && next.CurrentStory.ID == ev.Payload.ID {
			next.CurrentStory = nil
			next.VotesRevealed = false
			next.clearVotes()
		}

	case eventPlayerJoined:
		next.Players[ev.Payload.PlayerID] = PlayerView{
			ID:          ev.Payload.PlayerID,
			Name:        ev.Payload.PlayerName,
			AvatarStyle: ev.Payload.AvatarStyle,
			AvatarSeed:  ev.Payload.AvatarSeed,
		}

	case eventPlayerUpdated:
		if player, ok := next.Players[ev.Payload.ID]; ok {
			player.Name = ev.Payload.Name
			player.AvatarStyle = ev.Payload.AvatarStyle
			player.AvatarSeed = ev.Payload.AvatarSeed
			next.Players[player.ID] = player
		}

	case eventPlayerKicked, eventPlayerLeft:
		delete(next.Players, ev.Payload.PlayerID)

	case eventHostTransferred:
		if player, ok := next.Players[ev.Payload.OldHostID]; ok {
			player.IsHost = false
			next.Players[player.ID] = player
		}
		if player, ok := next.Players[ev.Payload.NewHostID]; ok {
			player.IsHost = true
			next.Players[player.ID] = player
		}

	case eventDeckUpdated:
		next.DeckType = ev.Payload.DeckType
		next.DeckTheme = ev.Payload.DeckTheme
		next.Deck = append(Deck(nil), ev.Payload.Deck...)

	case eventRoomNameUpdated:
		next.Name = ev.Payload.Name

	case eventRoomSettingsUpdated:
		if ev.Payload.AutoRevealVotes != nil {
			next.AutoRevealVotes = *ev.Payload.AutoRevealVotes
		}

	case eventCelebrationsUpdated:
		if ev.Payload.CelebrationsEnabled != nil {
			next.CelebrationsEnabled = *ev.Payload.CelebrationsEnabled
		}

	case eventEmojisUpdated:
		if ev.Payload.EmojisEnabled != nil {
			next.EmojisEnabled = *ev.Payload.EmojisEnabled
		}

	case eventPlayerOnline, eventPlayerOffline:
		// Presence is tracked apart from vote state and only these two
		// events touch it.
		if player, ok := next.Players[ev.Payload.PlayerID]; ok {
			player.Online = ev.Name == eventPlayerOnline
			next.Players[player.ID] = player
		}

	case eventRoomSync:
		if ev.Snapshot != nil {
			selected := next.SelectedVote
			next = NewRoomView(*ev.Snapshot)
			next.SelectedVote = selected
		}
	}
	return next
}

// patchStory writes the newly active story into the backlog list and
// demotes whichever story was active before it.
func (v *RoomView) patchStory(current StorySnapshot) {
	for i := range v.Stories {
		switch {
		case v.Stories[i].ID == current.ID:
			v.Stories[i] = current
		case v.Stories[i].Status == storyActive:
			v.Stories[i].Status = storyIdle
			v.Stories[i].VotesRevealed = false
		}
	}
}

func (v *RoomView) clearVotes() {
	for id, player := range v.Players {
		player.HasVoted = false
		player.Vote = ""
		v.Players[id] = player
	}
}

// voteCommand is the optimistic local vote selection: Apply records the
// prior state and shows the new pick immediately, and Rollback restores the
// prior state when the submit call fails.
type voteCommand struct {
	PlayerID string
	Value    string

	priorSelected string
	priorPlayer   PlayerView
	hadPlayer     bool
	applied       bool
}

func (c *voteCommand) Apply(view *RoomView) {
	c.priorSelected = view.SelectedVote
	c.priorPlayer, c.hadPlayer = view.Players[c.PlayerID]
	c.applied = true

	view.SelectedVote = c.Value
	if player, ok := view.Players[c.PlayerID]; ok {
		player.HasVoted = true
		if view.VotesRevealed {
			player.Vote = c.Value
		}
		view.Players[c.PlayerID] = player
	}
}

// Commit discards the saved prior state once the server accepted the vote,
// after which Rollback becomes a no-op.
func (c *voteCommand) Commit() {
	c.applied = false
	c.priorSelected = ""
	c.priorPlayer = PlayerView{}
	c.hadPlayer = false
}

func (c *voteCommand) Rollback(view *RoomView) {
	if !c.applied {
		return
	}
	view.SelectedVote = c.priorSelected
	if c.hadPlayer {
		view.Players[c.PlayerID] = c.priorPlayer
	} else {
		delete(view.Players, c.PlayerID)
	}
	c.applied = false
}
