package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"sames-backend/internal/domain"
	"sames-backend/internal/storage"
)

type tradeRequest struct {
	TxSig         string `json:"tx_sig"`
	Wallet        string `json:"wallet"`
	TradeType     string `json:"trade_type"`
	SolAmount     int64  `json:"sol_amount"`
	TokenAmount   int64  `json:"token_amount"`
	PriceLamports int64  `json:"price_lamports"`
}

type snapshotRequest struct {
	// Wallet identifies the submitter for the auth gate; it is not stored.
	Wallet        string `json:"wallet"`
	PriceLamports int64  `json:"price_lamports"`
	TokensSold    int64  `json:"tokens_sold"`
	SolCollected  int64  `json:"sol_collected"`
}

type chatRequest struct {
	Wallet string `json:"wallet"`
	Body   string `json:"body"`
}

type profileRequest struct {
	Wallet    string `json:"wallet"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

func (s *Server) handleHealth(c *gin.Context) {
	respondOK(c, gin.H{"status": "ok"})
}

func (s *Server) handleRecordTrade(c *gin.Context) {
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	duplicate, err := s.ledger.RecordTrade(c.Request.Context(), &domain.Trade{
		TokenAddress:  c.Param("tokenAddress"),
		TxSig:         req.TxSig,
		Wallet:        req.Wallet,
		Side:          domain.TradeSide(req.TradeType),
		SolAmount:     req.SolAmount,
		TokenAmount:   req.TokenAmount,
		PriceLamports: req.PriceLamports,
	})
	if err != nil {
		fail(c, err)
		return
	}

	if duplicate {
		respondOK(c, gin.H{"ok": true, "duplicate": true})
		return
	}
	respondOK(c, gin.H{"ok": true})
}

func (s *Server) handleListTrades(c *gin.Context) {
	trades, err := s.ledger.ListTrades(c.Request.Context(), c.Param("tokenAddress"), limitParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, trades)
}

func (s *Server) handleRecordSnapshot(c *gin.Context) {
	var req snapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	err := s.prices.RecordSnapshot(c.Request.Context(), &domain.PriceSnapshot{
		TokenAddress:  c.Param("tokenAddress"),
		PriceLamports: req.PriceLamports,
		TokensSold:    req.TokensSold,
		SolCollected:  req.SolCollected,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, gin.H{"ok": true})
}

func (s *Server) handleListSnapshots(c *gin.Context) {
	snaps, err := s.prices.ListSnapshots(c.Request.Context(), c.Param("tokenAddress"), limitParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snaps)
}

func (s *Server) handlePostChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	msg, err := s.chat.PostMessage(c.Request.Context(), c.Param("tokenAddress"), req.Wallet, req.Body)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, gin.H{"ok": true, "message": msg})
}

func (s *Server) handleListChat(c *gin.Context) {
	msgs, err := s.chat.ListMessages(c.Request.Context(), c.Param("tokenAddress"), limitParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (s *Server) handleChatSocket(c *gin.Context) {
	if err := s.hub.Subscribe(c.Writer, c.Request, c.Param("tokenAddress")); err != nil {
		// Upgrade failures have already written a response.
		log.Warn().Err(err).Msg("websocket upgrade failed")
	}
}

func (s *Server) handleUpsertProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.Wallet == "" {
		badRequest(c, "wallet is required")
		return
	}

	err := s.profiles.Upsert(c.Request.Context(), &domain.Profile{
		Wallet:    req.Wallet,
		Username:  req.Username,
		AvatarURL: req.AvatarURL,
		UpdatedAt: time.Now().UnixMilli(),
	})
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, gin.H{"ok": true})
}

func (s *Server) handleGetProfile(c *gin.Context) {
	profile, err := s.profiles.Get(c.Request.Context(), c.Param("wallet"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// limitParam reads the optional ?limit query parameter. Invalid values
// fall back to 0, which the services clamp to their own maximum.
func limitParam(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}

// fail maps service errors onto HTTP statuses.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrInvalidInput):
		badRequest(c, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		notFound(c, "not found")
	default:
		// Storage failures surface their text so callers can tell a dead
		// pool from a constraint problem without server logs.
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		internalError(c, err.Error())
	}
}
