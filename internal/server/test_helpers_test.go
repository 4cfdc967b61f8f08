package server

import (
	"testing"

	"planning-poker/internal/config"
)

func newTestServer() *Server {
	return New(nil, config.Default())
}

// setupRoom creates a room whose first named player is the host and joins
// the rest, returning the room id and player ids in name order.
func setupRoom(t *testing.T, s *Server, names ...string) (string, []string) {
	t.Helper()
	room, host, err := s.CreateRoom("Sprint 12", names[0], deckTypeFibonacci, nil)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	ids := []string{host.ID}
	for _, name := range names[1:] {
		_, player, _, err := s.JoinRoom(room.JoinCode, name, "", "")
		if err != nil {
			t.Fatalf("join room as %s: %v", name, err)
		}
		ids = append(ids, player.ID)
	}
	return room.ID, ids
}

func hostCtx(roomID, hostID string) SessionContext {
	return SessionContext{PlayerID: hostID, RoomID: roomID}
}

// addActiveStory adds a story as host and makes it active.
func addActiveStory(t *testing.T, s *Server, roomID, hostID, title string) string {
	t.Helper()
	ctx := hostCtx(roomID, hostID)
	events, err := s.AddStory(ctx, title, "")
	if err != nil {
		t.Fatalf("add story: %v", err)
	}
	storyID := events[0].Payload.ID
	if _, err := s.SetActiveStory(ctx, storyID); err != nil {
		t.Fatalf("set active story: %v", err)
	}
	return storyID
}

func storyByID(t *testing.T, s *Server, roomID, storyID string) Story {
	t.Helper()
	var story Story
	_, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		found := findStory(room, storyID)
		if found == nil {
			t.Fatalf("story %s not found in room %s", storyID, roomID)
		}
		story = *found
		story.Votes = append([]VoteEntry(nil), found.Votes...)
		return nil
	})
	if err != nil {
		t.Fatalf("read story: %v", err)
	}
	return story
}

func roomState(t *testing.T, s *Server, roomID string) Room {
	t.Helper()
	var state Room
	_, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		state = *room
		state.Players = append([]Player(nil), room.Players...)
		state.Stories = append([]Story(nil), room.Stories...)
		return nil
	})
	if err != nil {
		t.Fatalf("read room: %v", err)
	}
	return state
}

func eventNames(events []Event) []string {
	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.Name)
	}
	return names
}
