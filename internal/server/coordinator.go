package server

import (
	"encoding/json"
	"log"
)

// CreateRoom provisions a room with its first player as host. No events are
// emitted: the room channel has no subscribers yet.
func (s *Server) CreateRoom(roomName, hostName, deckType string, customDeck json.RawMessage) (*Room, *Player, error) {
	deck, resolvedType, err := resolveDeck(deckType, customDeck, s.cfg.DefaultDeckType)
	if err != nil {
		return nil, nil, err
	}
	room, host := s.store.CreateRoom(roomName, hostName, resolvedType, deck)
	log.Printf("room created room_id=%s join_code=%s host=%s", room.ID, room.JoinCode, host.Name)
	s.persistRoom(room)
	return room, host, nil
}

func resolveDeck(deckType string, customDeck json.RawMessage, fallback string) (Deck, string, error) {
	if deckType == deckTypeCustom || (deckType == "" && len(customDeck) > 0) {
		deck, ok := ParseDeck(customDeck)
		if !ok {
			return nil, "", ErrInvalidVote
		}
		return deck, deckTypeCustom, nil
	}
	if deckType == "" {
		deckType = fallback
	}
	deck, ok := deckForType(deckType)
	if !ok {
		return nil, "", ErrInvalidVote
	}
	return deck, deckType, nil
}

// JoinRoom adds a player by join code. Rejoining under a known name reclaims
// the existing seat without a duplicate player-joined event.
func (s *Server) JoinRoom(code, name, avatarStyle, avatarSeed string) (*Room, *Player, []Event, error) {
	room, player, created, err := s.store.AddPlayer(code, name, avatarStyle, avatarSeed, s.cfg.MaxRoomPlayers)
	if err != nil {
		return nil, nil, nil, err
	}
	var events []Event
	if created {
		_, err = s.store.UpdateRoom(room.ID, func(room *Room) error {
			events = append(events, nextEvent(room, eventPlayerJoined, EventPayload{
				PlayerID:    player.ID,
				PlayerName:  player.Name,
				AvatarStyle: player.AvatarStyle,
				AvatarSeed:  player.AvatarSeed,
			}))
			return nil
		})
		if err != nil {
			return nil, nil, nil, err
		}
		log.Printf("player joined room_id=%s player_id=%s name=%s", room.ID, player.ID, player.Name)
		s.persistPlayer(room, player)
	}
	return room, player, events, nil
}

// UpdateProfile changes the caller's own name or avatar.
func (s *Server) UpdateProfile(ctx SessionContext, name, avatarStyle, avatarSeed string) ([]Event, error) {
	var events []Event
	var updated Player
	room, err := s.store.UpdateRoom(ctx.RoomID, func(room *Room) error {
		player := findPlayer(room, ctx.PlayerID)
		if player == nil {
			return ErrUnauthenticated
		}
		if name != "" {
			player.Name = name
		}
		if avatarStyle != "" {
			player.AvatarStyle = avatarStyle
		}
		if avatarSeed != "" {
			player.AvatarSeed = avatarSeed
		}
		updated = *player
		events = append(events, nextEvent(room, eventPlayerUpdated, EventPayload{
			ID:          player.ID,
			Name:        player.Name,
			AvatarStyle: player.AvatarStyle,
			AvatarSeed:  player.AvatarSeed,
		}))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persistPlayerProfile(room, &updated)
	return events, nil
}

// KickPlayer removes another player and purges their votes across every
// story. The victim's name is captured before deletion because the payload
// still needs it once the row is gone.
func (s *Server) KickPlayer(ctx SessionContext, targetID string) ([]Event, error) {
	var events []Event
	room, err := s.store.UpdateRoom(ctx.RoomID, func(room *Room) error {
		if _, err := hostPlayer(room, ctx.PlayerID); err != nil {
			return err
		}
		if targetID == ctx.PlayerID {
			return ErrInvalidState
		}
		target := findPlayer(room, targetID)
		if target == nil {
			return ErrNotFound
		}
		targetName := target.Name
		removePlayer(room, targetID)
		purgePlayerVotes(room, targetID)
		events = append(events, nextEvent(room, eventPlayerKicked, EventPayload{
			PlayerID:   targetID,
			PlayerName: targetName,
		}))
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("player kicked room_id=%s player_id=%s", room.ID, targetID)
	s.deletePlayerRecord(room, targetID)
	return events, nil
}

// LeaveRoom removes the caller. A departing host must designate a remaining
// player as the new host; the transfer flips both host flags atomically
// before the old host's row is deleted. The last player leaving deletes the
// whole room.
func (s *Server) LeaveRoom(ctx SessionContext, newHostID string) ([]Event, bool, error) {
	var events []Event
	var roomDeleted bool
	room, err := s.store.UpdateRoom(ctx.RoomID, func(room *Room) error {
		player := findPlayer(room, ctx.PlayerID)
		if player == nil {
			return ErrUnauthenticated
		}
		leavingName := player.Name

		if player.IsHost && len(room.Players) > 1 {
			successor := findPlayer(room, newHostID)
			if successor == nil || successor.ID == player.ID {
				return ErrInvalidState
			}
			player.IsHost = false
			successor.IsHost = true
			events = append(events, nextEvent(room, eventHostTransferred, EventPayload{
				NewHostID:   successor.ID,
				OldHostID:   player.ID,
				NewHostName: successor.Name,
			}))
		}

		removePlayer(room, ctx.PlayerID)
		purgePlayerVotes(room, ctx.PlayerID)
		if len(room.Players) == 0 {
			roomDeleted = true
			return nil
		}
		events = append(events, nextEvent(room, eventPlayerLeft, EventPayload{
			PlayerID:   ctx.PlayerID,
			PlayerName: leavingName,
		}))
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if roomDeleted {
		s.store.DeleteRoom(room.ID)
		s.stopRoomSync(room.ID)
		log.Printf("room deleted room_id=%s reason=last_player_left", room.ID)
		s.deleteRoomRecord(room.ID)
		return nil, true, nil
	}
	s.persistLeave(room, ctx.PlayerID, newHostID)
	return events, false, nil
}

func removePlayer(room *Room, playerID string) {
	for i := range room.Players {
		if room.Players[i].ID == playerID {
			room.Players = append(room.Players[:i], room.Players[i+1:]...)
			return
		}
	}
}

// UpdateSettings applies the host's room settings; each changed setting
// emits its own catalogue event.
type SettingsChange struct {
	Name                *string
	AutoRevealVotes     *bool
	CelebrationsEnabled *bool
	EmojisEnabled       *bool
}

func (s *Server) UpdateSettings(ctx SessionContext, change SettingsChange) ([]Event, error) {
	var events []Event
	room, err := s.store.UpdateRoom(ctx.RoomID, func(room *Room) error {
		if _, err := hostPlayer(room, ctx.PlayerID); err != nil {
			return err
		}
		if change.Name != nil {
			room.Name = *change.Name
			events = append(events, nextEvent(room, eventRoomNameUpdated, EventPayload{
				Name: room.Name,
			}))
		}
		if change.AutoRevealVotes != nil {
			room.AutoRevealVotes = *change.AutoRevealVotes
			events = append(events, nextEvent(room, eventRoomSettingsUpdated, EventPayload{
				AutoRevealVotes: boolPtr(room.AutoRevealVotes),
			}))
		}
		if change.CelebrationsEnabled != nil {
			room.CelebrationsEnabled = *change.CelebrationsEnabled
			events = append(events, nextEvent(room, eventCelebrationsUpdated, EventPayload{
				CelebrationsEnabled: boolPtr(room.CelebrationsEnabled),
			}))
		}
		if change.EmojisEnabled != nil {
			room.EmojisEnabled = *change.EmojisEnabled
			events = append(events, nextEvent(room, eventEmojisUpdated, EventPayload{
				EmojisEnabled: boolPtr(room.EmojisEnabled),
			}))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persistRoomSettings(room)
	return events, nil
}

// UpdateDeck swaps the room's deck for a preset or a custom card list.
func (s *Server) UpdateDeck(ctx SessionContext, deckType, deckTheme string, customDeck json.RawMessage) ([]Event, error) {
	deck, resolvedType, err := resolveDeck(deckType, customDeck, s.cfg.DefaultDeckType)
	if err != nil {
		return nil, err
	}
	var events []Event
	room, err := s.store.UpdateRoom(ctx.RoomID, func(room *Room) error {
		if _, err := hostPlayer(room, ctx.PlayerID); err != nil {
			return err
		}
		room.Deck = deck
		room.DeckType = resolvedType
		room.DeckTheme = deckTheme
		events = append(events, nextEvent(room, eventDeckUpdated, EventPayload{
			DeckType:  room.DeckType,
			Deck:      room.Deck,
			DeckTheme: room.DeckTheme,
		}))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.persistRoomSettings(room)
	return events, nil
}

// SendReaction broadcasts an ephemeral emoji. Nothing is persisted; a
// targeted reaction becomes player-reaction, an untargeted one emoji-sent.
func (s *Server) SendReaction(ctx SessionContext, targetID, emoji string) ([]Event, error) {
	var events []Event
	_, err := s.store.UpdateRoom(ctx.RoomID, func(room *Room) error {
		player := findPlayer(room, ctx.PlayerID)
		if player == nil {
			return ErrUnauthenticated
		}
		if !room.EmojisEnabled {
			return ErrInvalidState
		}
		if targetID != "" {
			if findPlayer(room, targetID) == nil {
				return ErrNotFound
			}
			events = append(events, nextEvent(room, eventPlayerReaction, EventPayload{
				FromPlayerID: player.ID,
				ToPlayerID:   targetID,
				Emoji:        emoji,
			}))
			return nil
		}
		events = append(events, nextEvent(room, eventEmojiSent, EventPayload{
			Emoji:      emoji,
			PlayerID:   player.ID,
			PlayerName: player.Name,
		}))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}
