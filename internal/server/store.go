package server

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Store holds the authoritative in-memory room state. Every mutation runs
// under the store mutex, so the closure passed to UpdateRoom is the
// transaction boundary: either the whole closure commits or, when it
// returns an error, no state change is observed by anyone.
type Store struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func NewStore() *Store {
	return &Store{rooms: make(map[string]*Room)}
}

func (s *Store) CreateRoom(name, hostName, deckType string, deck Deck) (*Room, *Player) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := &Room{
		ID:                  uuid.NewString(),
		JoinCode:            s.uniqueJoinCode(),
		Name:                name,
		DeckType:            deckType,
		Deck:                deck,
		CelebrationsEnabled: true,
		EmojisEnabled:       true,
	}
	host := Player{
		ID:     uuid.NewString(),
		Name:   hostName,
		IsHost: true,
	}
	room.Players = append(room.Players, host)
	s.rooms[room.ID] = room
	return room, &room.Players[0]
}

func (s *Store) uniqueJoinCode() string {
	for {
		code := newJoinCode()
		taken := false
		for _, room := range s.rooms {
			if room.JoinCode == code {
				taken = true
				break
			}
		}
		if !taken {
			return code
		}
	}
}

func (s *Store) GetRoom(id string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	return room, ok
}

func (s *Store) FindRoomByJoinCode(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, room := range s.rooms {
		if room.JoinCode == code {
			return room, true
		}
	}
	return nil, false
}

// UpdateRoom applies update under the store lock. A non-nil error from the
// closure aborts the whole mutation; events built inside the closure must
// only be published after UpdateRoom returns successfully.
func (s *Store) UpdateRoom(id string, update func(room *Room) error) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := update(room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *Store) DeleteRoom(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
}

// AddPlayer joins a player to the room identified by id or join code. A
// player rejoining under the same name reclaims the existing seat instead
// of creating a duplicate.
func (s *Store) AddPlayer(roomIDOrCode, name, avatarStyle, avatarSeed string, maxPlayers int) (*Room, *Player, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomIDOrCode]
	if !ok {
		code := strings.ToUpper(strings.TrimSpace(roomIDOrCode))
		for _, candidate := range s.rooms {
			if candidate.JoinCode == code {
				room = candidate
				ok = true
				break
			}
		}
	}
	if !ok {
		return nil, nil, false, ErrNotFound
	}

	for i := range room.Players {
		if strings.EqualFold(room.Players[i].Name, name) {
			if avatarStyle != "" {
				room.Players[i].AvatarStyle = avatarStyle
			}
			if avatarSeed != "" {
				room.Players[i].AvatarSeed = avatarSeed
			}
			return room, &room.Players[i], false, nil
		}
	}
	if maxPlayers > 0 && len(room.Players) >= maxPlayers {
		return nil, nil, false, ErrInvalidState
	}

	player := Player{
		ID:          uuid.NewString(),
		Name:        name,
		AvatarStyle: avatarStyle,
		AvatarSeed:  avatarSeed,
	}
	room.Players = append(room.Players, player)
	return room, &room.Players[len(room.Players)-1], true, nil
}

func (s *Store) GetPlayer(roomID, playerID string) (*Room, *Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, nil, false
	}
	player := findPlayer(room, playerID)
	if player == nil {
		return room, nil, false
	}
	return room, player, true
}

// RestoreRoom places a room loaded from the database back into memory,
// typically at process startup.
func (s *Store) RestoreRoom(room *Room) error {
	if room == nil {
		return ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.ID]; ok {
		return ErrInvalidState
	}
	for _, existing := range s.rooms {
		if existing.JoinCode == room.JoinCode {
			return ErrInvalidState
		}
	}
	s.rooms[room.ID] = room
	return nil
}

func (s *Store) ListRoomSummaries() []RoomSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]RoomSummary, 0, len(s.rooms))
	for _, room := range s.rooms {
		list = append(list, RoomSummary{
			ID:       room.ID,
			JoinCode: room.JoinCode,
			Name:     room.Name,
			Players:  len(room.Players),
		})
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].JoinCode < list[j].JoinCode
	})
	return list
}
