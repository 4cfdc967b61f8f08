package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"planning-poker/internal/config"
)

func postJoin(t *testing.T, s *Server, remoteAddr string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/rooms/join", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return payload.Error
}

func TestJoinRoomErrorMessages(t *testing.T) {
	cfg := config.Default()
	cfg.MaxRoomPlayers = 2
	s := New(nil, cfg)
	room, _, err := s.CreateRoom("Sprint 12", "Ada", deckTypeFibonacci, nil)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	rec := postJoin(t, s, "10.0.0.1:1111", `{"code":"`+room.JoinCode+`","playerName":"Ben"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("join: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = postJoin(t, s, "10.0.0.2:2222", `{"code":"`+room.JoinCode+`","playerName":"Cam"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("full room: status %d body %s", rec.Code, rec.Body.String())
	}
	if got := errorMessage(t, rec); got != "room is full" {
		t.Fatalf("full room message: %q", got)
	}

	rec = postJoin(t, s, "10.0.0.3:3333", `{"code":"ZZZZZZ","playerName":"Dee"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown code: status %d body %s", rec.Code, rec.Body.String())
	}
	if got := errorMessage(t, rec); got != "room not found" {
		t.Fatalf("unknown code message: %q", got)
	}
}
