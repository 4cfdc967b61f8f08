package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// wsHub is the realtime bus: one channel of connections per room, with
// presence derived from which players currently hold at least one
// connection. Gorilla allows one concurrent writer per connection, so every
// write goes through the connection's own write lock; handler publishes and
// the room-sync ticker may broadcast at the same time.
type wsHub struct {
	mu     sync.Mutex
	rooms  map[string]map[*websocket.Conn]string
	writes map[*websocket.Conn]*sync.Mutex
}

func newWSHub() *wsHub {
	return &wsHub{
		rooms:  make(map[string]map[*websocket.Conn]string),
		writes: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Add registers a connection and reports whether this made the player newly
// online.
func (h *wsHub) Add(roomID string, conn *websocket.Conn, playerID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.rooms[roomID]
	if group == nil {
		group = make(map[*websocket.Conn]string)
		h.rooms[roomID] = group
	}
	wasOnline := false
	for _, id := range group {
		if id == playerID {
			wasOnline = true
			break
		}
	}
	group[conn] = playerID
	h.writes[conn] = &sync.Mutex{}
	return !wasOnline
}

// Remove drops a connection and reports whether the player went offline
// with it.
func (h *wsHub) Remove(roomID string, conn *websocket.Conn) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.rooms[roomID]
	if group == nil {
		return "", false
	}
	playerID, ok := group[conn]
	if !ok {
		return "", false
	}
	delete(group, conn)
	delete(h.writes, conn)
	_ = conn.Close()
	if len(group) == 0 {
		delete(h.rooms, roomID)
	}
	for _, id := range group {
		if id == playerID {
			return playerID, false
		}
	}
	return playerID, true
}

func (h *wsHub) OnlinePlayers(roomID string) map[string]bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	online := make(map[string]bool)
	for _, playerID := range h.rooms[roomID] {
		online[playerID] = true
	}
	return online
}

func (h *wsHub) Send(roomID string, conn *websocket.Conn, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.write(roomID, conn, data)
}

func (h *wsHub) Broadcast(roomID string, payload any) {
	h.mu.Lock()
	group := h.rooms[roomID]
	conns := make([]*websocket.Conn, 0, len(group))
	for conn := range group {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for _, conn := range conns {
		h.write(roomID, conn, data)
	}
}

// write serializes writes per connection and drops the connection on write
// failure. A connection already removed from the hub is skipped.
func (h *wsHub) write(roomID string, conn *websocket.Conn, data []byte) {
	h.mu.Lock()
	lock := h.writes[conn]
	h.mu.Unlock()
	if lock == nil {
		return
	}
	lock.Lock()
	err := conn.WriteMessage(websocket.TextMessage, data)
	lock.Unlock()
	if err != nil {
		h.Remove(roomID, conn)
	}
}

// publish delivers events to the room channel and mirrors them to the audit
// log. Delivery failure never fails the mutation that produced the event;
// the periodic room-sync snapshot is the recovery path for clients that
// missed something.
func (s *Server) publish(events []Event) {
	for _, ev := range events {
		s.persistEvent(ev)
		s.ws.Broadcast(ev.RoomID, ev)
	}
}

func (s *Server) handleRoomSocket(c *gin.Context) {
	ctx, err := sessionFromRequest(c)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	roomID := c.Param("id")
	if roomID != ctx.RoomID {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	_, _, ok := s.store.GetPlayer(ctx.RoomID, ctx.PlayerID)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected room_id=%s player_id=%s remote=%s", roomID, ctx.PlayerID, c.Request.RemoteAddr)

	cameOnline := s.ws.Add(roomID, conn, ctx.PlayerID)
	s.startRoomSync(roomID)
	if snap, err := s.Snapshot(roomID); err == nil {
		s.ws.Send(roomID, conn, Event{Name: eventRoomSync, Seq: snap.Seq, RoomID: roomID, Snapshot: &snap})
	}
	if cameOnline {
		s.publishPresence(roomID, ctx.PlayerID, true)
	}
	go s.readRoomSocket(roomID, conn)
}

func (s *Server) readRoomSocket(roomID string, conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			playerID, wentOffline := s.ws.Remove(roomID, conn)
			log.Printf("ws disconnected room_id=%s player_id=%s error=%v", roomID, playerID, err)
			if wentOffline {
				s.publishPresence(roomID, playerID, false)
			}
			return
		}
	}
}

// publishPresence emits the bus member-added/member-removed primitive;
// presence never rides on vote events.
func (s *Server) publishPresence(roomID, playerID string, online bool) {
	name := eventPlayerOffline
	if online {
		name = eventPlayerOnline
	}
	s.ws.Broadcast(roomID, Event{Name: name, RoomID: roomID, Payload: EventPayload{PlayerID: playerID}})
}

// startRoomSync begins the periodic full-snapshot push for a room. Because
// bus publishes are fire-and-forget, this is what reconverges a client that
// missed an event.
func (s *Server) startRoomSync(roomID string) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	if _, running := s.syncStops[roomID]; running {
		return
	}
	stop := make(chan struct{})
	s.syncStops[roomID] = stop
	interval := time.Duration(s.cfg.RoomSyncIntervalSeconds) * time.Second
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				snap, err := s.Snapshot(roomID)
				if err != nil {
					return
				}
				s.ws.Broadcast(roomID, Event{Name: eventRoomSync, Seq: snap.Seq, RoomID: roomID, Snapshot: &snap})
			}
		}
	}()
}

// handleLobbySocket streams the open-room summary list so the home page can
// show live lobbies without polling. Unauthenticated by design: the summary
// exposes nothing beyond what the join form needs.
func (s *Server) handleLobbySocket(c *gin.Context) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	go func() {
		defer conn.Close()
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			payload := gin.H{"event": "lobby-sync", "rooms": s.store.ListRoomSummaries()}
			data, err := json.Marshal(payload)
			if err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
			<-ticker.C
		}
	}()
}

func (s *Server) stopRoomSync(roomID string) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	if stop, ok := s.syncStops[roomID]; ok {
		close(stop)
		delete(s.syncStops, roomID)
	}
}
