// Package server exposes the HTTP and WebSocket surface: trade ledger,
// price history, profiles, and per-token chat.
package server

import (
	"github.com/gin-gonic/gin"

	"sames-backend/internal/auth"
	"sames-backend/internal/chat"
	"sames-backend/internal/ledger"
	"sames-backend/internal/observability"
	"sames-backend/internal/pricehistory"
	"sames-backend/internal/storage"
)

// Server holds the services behind the HTTP surface.
type Server struct {
	ledger   *ledger.Service
	prices   *pricehistory.Service
	chat     *chat.Service
	hub      *chat.Hub
	profiles storage.ProfileStore
	gate     *auth.Gate
}

// New creates a Server.
func New(
	ledgerSvc *ledger.Service,
	pricesSvc *pricehistory.Service,
	chatSvc *chat.Service,
	hub *chat.Hub,
	profiles storage.ProfileStore,
	gate *auth.Gate,
) *Server {
	return &Server{
		ledger:   ledgerSvc,
		prices:   pricesSvc,
		chat:     chatSvc,
		hub:      hub,
		profiles: profiles,
		gate:     gate,
	}
}

// Router builds the gin engine with all routes registered. Reads are open;
// writes go through the auth gate.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestTelemetry())

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(observability.Handler()))

	r.GET("/trades/:tokenAddress", s.handleListTrades)
	r.GET("/prices/:tokenAddress", s.handleListSnapshots)
	r.GET("/chat/:tokenAddress", s.handleListChat)
	r.GET("/ws/chat/:tokenAddress", s.handleChatSocket)
	r.GET("/profile/:wallet", s.handleGetProfile)

	guard := s.gate.Middleware()
	r.POST("/trade/:tokenAddress", guard, s.handleRecordTrade)
	r.POST("/snapshot/:tokenAddress", guard, s.handleRecordSnapshot)
	r.POST("/chat/:tokenAddress", guard, s.handlePostChat)
	r.POST("/profile", guard, s.handleUpsertProfile)

	return r
}
