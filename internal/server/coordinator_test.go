package server

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestJoinRoomReclaimsExistingSeat(t *testing.T) {
	s := newTestServer()
	roomID, ids := setupRoom(t, s, "Ada", "Ben")

	room, player, events, err := s.JoinRoom(roomState(t, s, roomID).JoinCode, "ben", "pixel", "seed-9")
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if room.ID != roomID || player.ID != ids[1] {
		t.Fatalf("expected existing seat %s, got %s", ids[1], player.ID)
	}
	if len(events) != 0 {
		t.Fatalf("expected no player-joined on reclaim, got %v", eventNames(events))
	}
	if len(roomState(t, s, roomID).Players) != 2 {
		t.Fatal("reclaim must not add a player")
	}
}

func TestKickCascadesVoteDeletion(t *testing.T) {
	s := newTestServer()
	roomID, ids := setupRoom(t, s, "Ada", "Ben")
	ctx := hostCtx(roomID, ids[0])

	first := addActiveStory(t, s, roomID, ids[0], "First")
	benCtx := SessionContext{PlayerID: ids[1], RoomID: roomID}
	if _, err := s.SubmitVote(benCtx, first, "3"); err != nil {
		t.Fatalf("vote first: %v", err)
	}
	second := addActiveStory(t, s, roomID, ids[0], "Second")
	if _, err := s.SubmitVote(benCtx, second, "5"); err != nil {
		t.Fatalf("vote second: %v", err)
	}

	events, err := s.KickPlayer(ctx, ids[1])
	if err != nil {
		t.Fatalf("kick: %v", err)
	}
	if events[0].Name != eventPlayerKicked || events[0].Payload.PlayerName != "Ben" {
		t.Fatalf("expected player-kicked with victim name, got %+v", events[0])
	}

	room := roomState(t, s, roomID)
	if len(room.Players) != 1 {
		t.Fatalf("expected 1 player left, got %d", len(room.Players))
	}
	for _, story := range room.Stories {
		for _, vote := range story.Votes {
			if vote.PlayerID == ids[1] {
				t.Fatalf("orphaned vote survived kick on story %s", story.ID)
			}
		}
	}
}

func TestKickRequiresHostAndRealTarget(t *testing.T) {
	s := newTestServer()
	roomID, ids := setupRoom(t, s, "Ada", "Ben")

	if _, err := s.KickPlayer(SessionContext{PlayerID: ids[1], RoomID: roomID}, ids[0]); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := s.KickPlayer(hostCtx(roomID, ids[0]), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.KickPlayer(hostCtx(roomID, ids[0]), ids[0]); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected self-kick to fail, got %v", err)
	}
}

func TestHostLeaveWithoutSuccessorFailsWithNoMutation(t *testing.T) {
	s := newTestServer()
	roomID, ids := setupRoom(t, s, "Ada", "Ben", "Cam")
	storyID := addActiveStory(t, s, roomID, ids[0], "Login flow")
	if _, err := s.SubmitVote(hostCtx(roomID, ids[0]), storyID, "3"); err != nil {
		t.Fatalf("vote: %v", err)
	}
	before := roomState(t, s, roomID)

	_, _, err := s.LeaveRoom(hostCtx(roomID, ids[0]), "")
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	after := roomState(t, s, roomID)
	if len(after.Players) != len(before.Players) {
		t.Fatal("players changed on failed leave")
	}
	if !after.Players[0].IsHost {
		t.Fatal("host flag changed on failed leave")
	}
	if len(storyByID(t, s, roomID, storyID).Votes) != 1 {
		t.Fatal("votes changed on failed leave")
	}
}

func TestHostLeaveTransfersHostThenDeparts(t *testing.T) {
	s := newTestServer()
	roomID, ids := setupRoom(t, s, "Ada", "Ben")

	events, roomDeleted, err := s.LeaveRoom(hostCtx(roomID, ids[0]), ids[1])
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if roomDeleted {
		t.Fatal("room must survive while players remain")
	}
	names := eventNames(events)
	if len(names) != 2 || names[0] != eventHostTransferred || names[1] != eventPlayerLeft {
		t.Fatalf("expected host-transferred then player-left, got %v", names)
	}
	if events[0].Payload.NewHostID != ids[1] || events[0].Payload.OldHostID != ids[0] || events[0].Payload.NewHostName != "Ben" {
		t.Fatalf("unexpected transfer payload: %+v", events[0].Payload)
	}

	room := roomState(t, s, roomID)
	if len(room.Players) != 1 || !room.Players[0].IsHost || room.Players[0].ID != ids[1] {
		t.Fatalf("expected Ben as sole host, got %+v", room.Players)
	}
}

func TestLastPlayerLeavingDeletesRoom(t *testing.T) {
	s := newTestServer()
	roomID, ids := setupRoom(t, s, "Ada")

	_, roomDeleted, err := s.LeaveRoom(hostCtx(roomID, ids[0]), "")
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if !roomDeleted {
		t.Fatal("expected room deletion for last player")
	}
	if _, ok := s.store.GetRoom(roomID); ok {
		t.Fatal("room still present after last leave")
	}
}

func TestExactlyOneHostAlways(t *testing.T) {
	s := newTestServer()
	roomID, ids := setupRoom(t, s, "Ada", "Ben", "Cam")

	countHosts := func() int {
		hosts := 0
		for _, player := range roomState(t, s, roomID).Players {
			if player.IsHost {
				hosts++
			}
		}
		return hosts
	}
	if countHosts() != 1 {
		t.Fatalf("expected one host after setup, got %d", countHosts())
	}
	if _, _, err := s.LeaveRoom(hostCtx(roomID, ids[0]), ids[2]); err != nil {
		t.Fatalf("host leave: %v", err)
	}
	if countHosts() != 1 {
		t.Fatalf("expected one host after transfer, got %d", countHosts())
	}
	if _, _, err := s.LeaveRoom(SessionContext{PlayerID: ids[1], RoomID: roomID}, ""); err != nil {
		t.Fatalf("member leave: %v", err)
	}
	if countHosts() != 1 {
		t.Fatalf("expected one host after member leave, got %d", countHosts())
	}
}

func TestUpdateSettingsEmitsPerSettingEvents(t *testing.T) {
	s := newTestServer()
	roomID, ids := setupRoom(t, s, "Ada")
	name := "Renamed room"

	events, err := s.UpdateSettings(hostCtx(roomID, ids[0]), SettingsChange{
		Name:                &name,
		AutoRevealVotes:     boolPtr(true),
		CelebrationsEnabled: boolPtr(false),
		EmojisEnabled:       boolPtr(false),
	})
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	names := eventNames(events)
	want := []string{eventRoomNameUpdated, eventRoomSettingsUpdated, eventCelebrationsUpdated, eventEmojisUpdated}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}

	room := roomState(t, s, roomID)
	if room.Name != name || !room.AutoRevealVotes || room.CelebrationsEnabled || room.EmojisEnabled {
		t.Fatalf("settings not applied: %+v", room)
	}
}

func TestUpdateDeckCustomCards(t *testing.T) {
	s := newTestServer()
	roomID, ids := setupRoom(t, s, "Ada")

	raw := json.RawMessage(`["1","2","3","banana"]`)
	events, err := s.UpdateDeck(hostCtx(roomID, ids[0]), deckTypeCustom, "dark", raw)
	if err != nil {
		t.Fatalf("deck update: %v", err)
	}
	ev := events[0]
	if ev.Name != eventDeckUpdated || ev.Payload.DeckType != deckTypeCustom || ev.Payload.DeckTheme != "dark" {
		t.Fatalf("unexpected deck event: %+v", ev)
	}
	if len(ev.Payload.Deck) != 4 {
		t.Fatalf("expected 4 cards, got %d", len(ev.Payload.Deck))
	}
	if !roomState(t, s, roomID).Deck.Contains("banana") {
		t.Fatal("custom card missing from room deck")
	}
}

func TestReactionsRespectEmojisEnabled(t *testing.T) {
	s := newTestServer()
	roomID, ids := setupRoom(t, s, "Ada", "Ben")
	ctx := SessionContext{PlayerID: ids[1], RoomID: roomID}

	events, err := s.SendReaction(ctx, ids[0], "🎉")
	if err != nil {
		t.Fatalf("reaction: %v", err)
	}
	if events[0].Name != eventPlayerReaction || events[0].Payload.FromPlayerID != ids[1] || events[0].Payload.ToPlayerID != ids[0] {
		t.Fatalf("unexpected reaction event: %+v", events[0])
	}

	broadcast, err := s.SendReaction(ctx, "", "👏")
	if err != nil {
		t.Fatalf("broadcast reaction: %v", err)
	}
	if broadcast[0].Name != eventEmojiSent || broadcast[0].Payload.PlayerName != "Ben" {
		t.Fatalf("unexpected emoji-sent event: %+v", broadcast[0])
	}

	if _, err := s.UpdateSettings(hostCtx(roomID, ids[0]), SettingsChange{EmojisEnabled: boolPtr(false)}); err != nil {
		t.Fatalf("disable emojis: %v", err)
	}
	if _, err := s.SendReaction(ctx, ids[0], "🎉"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected reaction blocked, got %v", err)
	}
}

func TestUpdateProfileEmitsPlayerUpdated(t *testing.T) {
	s := newTestServer()
	roomID, ids := setupRoom(t, s, "Ada", "Ben")

	events, err := s.UpdateProfile(SessionContext{PlayerID: ids[1], RoomID: roomID}, "Benjamin", "pixel", "seed-7")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	ev := events[0]
	if ev.Name != eventPlayerUpdated || ev.Payload.ID != ids[1] || ev.Payload.Name != "Benjamin" {
		t.Fatalf("unexpected player-updated: %+v", ev)
	}
	if ev.Payload.AvatarStyle != "pixel" || ev.Payload.AvatarSeed != "seed-7" {
		t.Fatalf("avatar not in payload: %+v", ev.Payload)
	}
}
