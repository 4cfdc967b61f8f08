package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	cookiePlayerID   = "playerId"
	cookieRoomID     = "roomId"
	cookiePlayerName = "playerName"
)

// SessionContext is the caller's identity for one request, read fresh from
// the session cookies every time. The playerId/roomId pair is the sole
// server-side authorization mechanism.
type SessionContext struct {
	PlayerID   string
	RoomID     string
	PlayerName string
}

func sessionFromRequest(c *gin.Context) (SessionContext, error) {
	playerID, err := c.Cookie(cookiePlayerID)
	if err != nil || playerID == "" {
		return SessionContext{}, ErrUnauthenticated
	}
	roomID, err := c.Cookie(cookieRoomID)
	if err != nil || roomID == "" {
		return SessionContext{}, ErrUnauthenticated
	}
	name, _ := c.Cookie(cookiePlayerName)
	return SessionContext{PlayerID: playerID, RoomID: roomID, PlayerName: name}, nil
}

func setSessionCookies(c *gin.Context, room *Room, player *Player) {
	for name, value := range map[string]string{
		cookiePlayerID:   player.ID,
		cookieRoomID:     room.ID,
		cookiePlayerName: player.Name,
	} {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			HttpOnly: name != cookiePlayerName,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func clearSessionCookies(c *gin.Context) {
	for _, name := range []string{cookiePlayerID, cookieRoomID, cookiePlayerName} {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:   name,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
	}
}
