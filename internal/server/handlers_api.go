package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type createRoomRequest struct {
	RoomName    string          `json:"roomName" binding:"required"`
	PlayerName  string          `json:"playerName" binding:"required"`
	DeckType    string          `json:"deckType"`
	Deck        json.RawMessage `json:"deck"`
	AvatarStyle string          `json:"avatarStyle"`
	AvatarSeed  string          `json:"avatarSeed"`
}

type joinRoomRequest struct {
	Code        string `json:"code" binding:"required"`
	PlayerName  string `json:"playerName"`
	AvatarStyle string `json:"avatarStyle"`
	AvatarSeed  string `json:"avatarSeed"`
}

type storyRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type completeStoryRequest struct {
	FinalScore *float64 `json:"finalScore"`
}

type voteRequest struct {
	Value string `json:"value" binding:"required"`
}

type kickRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
}

type leaveRequest struct {
	NewHostID string `json:"newHostId"`
}

type settingsRequest struct {
	Name                *string `json:"name"`
	AutoRevealVotes     *bool   `json:"autoRevealVotes"`
	CelebrationsEnabled *bool   `json:"celebrationsEnabled"`
	EmojisEnabled       *bool   `json:"emojisEnabled"`
}

type deckRequest struct {
	DeckType  string          `json:"deckType"`
	Deck      json.RawMessage `json:"deck"`
	DeckTheme string          `json:"deckTheme"`
}

type profileRequest struct {
	Name        string `json:"name"`
	AvatarStyle string `json:"avatarStyle"`
	AvatarSeed  string `json:"avatarSeed"`
}

type reactionRequest struct {
	ToPlayerID string `json:"toPlayerId"`
	Emoji      string `json:"emoji" binding:"required"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":  s.sessions.GetName(c.Writer, c.Request),
		"flash": s.sessions.PopFlash(c.Writer, c.Request),
	})
}

func (s *Server) handleListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": s.store.ListRoomSummaries()})
}

func (s *Server) handleCreateRoom(c *gin.Context) {
	if !s.limiter.Allow("create:"+c.ClientIP(), time.Second) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		return
	}
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	roomName, err := validateRoomName(req.RoomName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	playerName, err := validatePlayerName(req.PlayerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, host, err := s.CreateRoom(roomName, playerName, req.DeckType, req.Deck)
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": "unknown deck"})
		return
	}
	setSessionCookies(c, room, host)
	s.sessions.SetName(c.Writer, c.Request, host.Name)
	c.JSON(http.StatusCreated, gin.H{
		"roomId":   room.ID,
		"joinCode": room.JoinCode,
		"playerId": host.ID,
	})
}

func (s *Server) handleJoinRoom(c *gin.Context) {
	if !s.limiter.Allow("join:"+c.ClientIP(), 200*time.Millisecond) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		return
	}
	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name := req.PlayerName
	if name == "" {
		name = s.sessions.GetName(c.Writer, c.Request)
	}
	playerName, err := validatePlayerName(name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, player, events, err := s.JoinRoom(req.Code, playerName, req.AvatarStyle, req.AvatarSeed)
	if err != nil {
		message := "unable to join room"
		switch {
		case errors.Is(err, ErrNotFound):
			message = "room not found"
		case errors.Is(err, ErrInvalidState):
			message = "room is full"
		}
		c.JSON(httpStatusFor(err), gin.H{"error": message})
		return
	}
	setSessionCookies(c, room, player)
	s.sessions.SetName(c.Writer, c.Request, player.Name)
	s.publish(events)
	c.JSON(http.StatusOK, gin.H{
		"roomId":   room.ID,
		"playerId": player.ID,
	})
}

// roomSession authenticates a request against its room path parameter.
func (s *Server) roomSession(c *gin.Context) (SessionContext, bool) {
	ctx, err := sessionFromRequest(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session required"})
		return SessionContext{}, false
	}
	if ctx.RoomID != c.Param("id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "session does not match room"})
		return SessionContext{}, false
	}
	return ctx, true
}

func (s *Server) handleSnapshot(c *gin.Context) {
	ctx, ok := s.roomSession(c)
	if !ok {
		return
	}
	snap, err := s.Snapshot(ctx.RoomID)
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleAddStory(c *gin.Context) {
	ctx, ok := s.roomSession(c)
	if !ok {
		return
	}
	var req storyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	title, err := validateStoryTitle(req.Title)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	description, err := validateDescription(req.Description)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	events, err := s.AddStory(ctx, title, description)
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	s.publish(events)
	c.JSON(http.StatusCreated, gin.H{"id": events[0].Payload.ID})
}

func (s *Server) handleUpdateStory(c *gin.Context) {
	ctx, ok := s.roomSession(c)
	if !ok {
		return
	}
	var req storyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	title, err := validateStoryTitle(req.Title)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	description, err := validateDescription(req.Description)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	events, err := s.UpdateStory(ctx, c.Param("storyId"), title, description)
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	s.publish(events)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDeleteStory(c *gin.Context) {
	ctx, ok := s.roomSession(c)
	if !ok {
		return
	}
	events, err := s.DeleteStory(ctx, c.Param("storyId"))
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	s.publish(events)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleActivateStory(c *gin.Context) {
	ctx, ok := s.roomSession(c)
	if !ok {
		return
	}
	events, err := s.SetActiveStory(ctx, c.Param("storyId"))
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	s.publish(events)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleCompleteStory(c *gin.Context) {
	ctx, ok := s.roomSession(c)
	if !ok {
		return
	}
	var req completeStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	events, err := s.CompleteStory(ctx, c.Param("storyId"), req.FinalScore)
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	s.publish(events)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSubmitVote(c *gin.Context) {
	ctx, ok := s.roomSession(c)
	if !ok {
		return
	}
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	events, err := s.SubmitVote(ctx, c.Param("storyId"), req.Value)
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	s.publish(events)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRemoveVote(c *gin.Context) {
	ctx, ok := s.roomSession(c)
	if !ok {
		return
	}
	events, err := s.RemoveVote(ctx, c.Param("storyId"))
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	s.publish(events)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRevealVotes(c *gin.Context) {
	ctx, ok := s.roomSession(c)
	if !ok {
		return
	}
	events, err := s.RevealVotes(ctx, c.Param("storyId"))
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	s.publish(events)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleResetVotes(c *gin.Context) {
	ctx, ok := s.roomSession(c)
	if !ok {
		return
	}
	events, err := s.ResetVotes(ctx, c.Param("storyId"))
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	s.publish(events)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleKick(c *gin.Context) {
	ctx, ok := s.roomSession(c)
	if !ok {
		return
	}
	var req kickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	events, err := s.KickPlayer(ctx, req.PlayerID)
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	s.publish(events)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleLeave(c *gin.Context) {
	ctx, ok := s.roomSession(c)
	if !ok {
		return
	}
	var req leaveRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	events, roomDeleted, err := s.LeaveRoom(ctx, req.NewHostID)
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	if !roomDeleted {
		s.publish(events)
	}
	clearSessionCookies(c)
	s.sessions.SetFlash(c.Writer, c.Request, "You left the room")
	log.Printf("player left room_id=%s player_id=%s room_deleted=%t", ctx.RoomID, ctx.PlayerID, roomDeleted)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSettings(c *gin.Context) {
	ctx, ok := s.roomSession(c)
	if !ok {
		return
	}
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	change := SettingsChange{
		AutoRevealVotes:     req.AutoRevealVotes,
		CelebrationsEnabled: req.CelebrationsEnabled,
		EmojisEnabled:       req.EmojisEnabled,
	}
	if req.Name != nil {
		name, err := validateRoomName(*req.Name)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		change.Name = &name
	}
	events, err := s.UpdateSettings(ctx, change)
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	s.publish(events)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDeck(c *gin.Context) {
	ctx, ok := s.roomSession(c)
	if !ok {
		return
	}
	var req deckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	events, err := s.UpdateDeck(ctx, req.DeckType, req.DeckTheme, req.Deck)
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": "unknown deck"})
		return
	}
	s.publish(events)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleProfile(c *gin.Context) {
	ctx, ok := s.roomSession(c)
	if !ok {
		return
	}
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name := ""
	if req.Name != "" {
		validated, err := validatePlayerName(req.Name)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		name = validated
	}
	events, err := s.UpdateProfile(ctx, name, req.AvatarStyle, req.AvatarSeed)
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	if name != "" {
		s.sessions.SetName(c.Writer, c.Request, name)
	}
	s.publish(events)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleReaction(c *gin.Context) {
	ctx, ok := s.roomSession(c)
	if !ok {
		return
	}
	var req reactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	emoji, err := validateEmoji(req.Emoji)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	events, err := s.SendReaction(ctx, req.ToPlayerID, emoji)
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}
	s.publish(events)
	c.Status(http.StatusNoContent)
}
