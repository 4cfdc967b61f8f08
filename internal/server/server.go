package server

import (
	"sync"

	"planning-poker/internal/config"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Server struct {
	store     *Store
	db        *gorm.DB
	ws        *wsHub
	cfg       config.Config
	sessions  *sessionStore
	limiter   *rateLimiter
	syncMu    sync.Mutex
	syncStops map[string]chan struct{}
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	return &Server{
		store:     NewStore(),
		db:        conn,
		ws:        newWSHub(),
		cfg:       cfg,
		sessions:  newSessionStore(conn),
		limiter:   newRateLimiter(),
		syncStops: make(map[string]chan struct{}),
	}
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.GET("/session", s.handleSession)
		api.GET("/rooms", s.handleListRooms)
		api.POST("/rooms", s.handleCreateRoom)
		api.POST("/rooms/join", s.handleJoinRoom)

		room := api.Group("/rooms/:id")
		{
			room.GET("/snapshot", s.handleSnapshot)
			room.POST("/leave", s.handleLeave)
			room.POST("/kick", s.handleKick)
			room.PATCH("/settings", s.handleSettings)
			room.PUT("/deck", s.handleDeck)
			room.PUT("/profile", s.handleProfile)
			room.POST("/reactions", s.handleReaction)

			room.POST("/stories", s.handleAddStory)
			room.PUT("/stories/:storyId", s.handleUpdateStory)
			room.DELETE("/stories/:storyId", s.handleDeleteStory)
			room.POST("/stories/:storyId/activate", s.handleActivateStory)
			room.POST("/stories/:storyId/complete", s.handleCompleteStory)

			room.POST("/stories/:storyId/votes", s.handleSubmitVote)
			room.DELETE("/stories/:storyId/votes", s.handleRemoveVote)
			room.POST("/stories/:storyId/reveal", s.handleRevealVotes)
			room.POST("/stories/:storyId/reset", s.handleResetVotes)
		}
	}

	router.GET("/ws/lobby", s.handleLobbySocket)
	router.GET("/ws/rooms/:id", s.handleRoomSocket)
	return router
}
