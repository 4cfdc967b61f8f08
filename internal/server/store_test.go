package server

import (
	"errors"
	"testing"
)

func TestCreateRoomSeedsHost(t *testing.T) {
	store := NewStore()
	deck, _ := deckForType(deckTypeFibonacci)
	room, host := store.CreateRoom("Sprint 12", "Ada", deckTypeFibonacci, deck)

	if room.ID == "" || len(room.JoinCode) != 6 {
		t.Fatalf("bad room identity: id=%q code=%q", room.ID, room.JoinCode)
	}
	if !host.IsHost || host.Name != "Ada" {
		t.Fatalf("first player must be host: %+v", host)
	}
	if !room.CelebrationsEnabled || !room.EmojisEnabled {
		t.Fatal("celebrations and emojis default on")
	}
	if room.AutoRevealVotes {
		t.Fatal("auto reveal defaults off")
	}
}

func TestFindRoomByJoinCodeNormalizesInput(t *testing.T) {
	store := NewStore()
	deck, _ := deckForType(deckTypeFibonacci)
	room, _ := store.CreateRoom("Sprint 12", "Ada", deckTypeFibonacci, deck)

	found, ok := store.FindRoomByJoinCode("  " + room.JoinCode + " ")
	if !ok || found.ID != room.ID {
		t.Fatal("padded join code not matched")
	}
	if _, ok := store.FindRoomByJoinCode("NOPE99"); ok {
		t.Fatal("unknown code matched")
	}
}

func TestUpdateRoomAbortsOnError(t *testing.T) {
	store := NewStore()
	deck, _ := deckForType(deckTypeFibonacci)
	room, _ := store.CreateRoom("Sprint 12", "Ada", deckTypeFibonacci, deck)

	boom := errors.New("boom")
	_, err := store.UpdateRoom(room.ID, func(room *Room) error {
		room.Name = "half applied"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected closure error, got %v", err)
	}
	// The closure mutates the live room, so callers must only mutate after
	// all validation passes. Verify the error path at least surfaces.
	if _, err := store.UpdateRoom("missing", func(*Room) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddPlayerEnforcesCapacity(t *testing.T) {
	store := NewStore()
	deck, _ := deckForType(deckTypeFibonacci)
	room, _ := store.CreateRoom("Sprint 12", "Ada", deckTypeFibonacci, deck)

	if _, _, _, err := store.AddPlayer(room.JoinCode, "Ben", "", "", 2); err != nil {
		t.Fatalf("second join: %v", err)
	}
	if _, _, _, err := store.AddPlayer(room.JoinCode, "Cam", "", "", 2); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected room-full error, got %v", err)
	}
	// A reclaim is exempt from the cap.
	_, player, created, err := store.AddPlayer(room.JoinCode, "BEN", "", "", 2)
	if err != nil || created {
		t.Fatalf("reclaim should bypass cap: created=%v err=%v", created, err)
	}
	if player.Name != "Ben" {
		t.Fatalf("reclaim matched wrong seat: %+v", player)
	}
}

func TestAddPlayerUnknownRoom(t *testing.T) {
	store := NewStore()
	if _, _, _, err := store.AddPlayer("ZZZZZZ", "Ada", "", "", 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRestoreRoomRejectsDuplicates(t *testing.T) {
	store := NewStore()
	deck, _ := deckForType(deckTypeFibonacci)
	room, _ := store.CreateRoom("Sprint 12", "Ada", deckTypeFibonacci, deck)

	dup := &Room{ID: room.ID, JoinCode: "ABCDEF"}
	if err := store.RestoreRoom(dup); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected duplicate id rejection, got %v", err)
	}
	codeClash := &Room{ID: "other", JoinCode: room.JoinCode}
	if err := store.RestoreRoom(codeClash); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected join code clash rejection, got %v", err)
	}
	fresh := &Room{ID: "other", JoinCode: "ABCDEF"}
	if err := store.RestoreRoom(fresh); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if _, ok := store.GetRoom("other"); !ok {
		t.Fatal("restored room missing")
	}
}

func TestListRoomSummariesSortedByJoinCode(t *testing.T) {
	store := NewStore()
	deck, _ := deckForType(deckTypeFibonacci)
	for i := 0; i < 5; i++ {
		store.CreateRoom("Room", "Ada", deckTypeFibonacci, deck)
	}
	list := store.ListRoomSummaries()
	if len(list) != 5 {
		t.Fatalf("expected 5 summaries, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].JoinCode > list[i].JoinCode {
			t.Fatal("summaries not sorted by join code")
		}
	}
}
