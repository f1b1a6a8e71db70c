package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/star-registry/starchain/internal/chain"
	"github.com/star-registry/starchain/internal/challenge"
	"github.com/star-registry/starchain/internal/events"
	"go.uber.org/zap"
)

// StarHandler exposes the gated write path of the chain.
type StarHandler struct {
	chain  *chain.Blockchain
	hub    *events.Hub
	logger *zap.Logger
}

// NewStarHandler creates a StarHandler. hub may be nil to disable block events.
func NewStarHandler(bc *chain.Blockchain, hub *events.Hub, logger *zap.Logger) *StarHandler {
	return &StarHandler{chain: bc, hub: hub, logger: logger}
}

// Register mounts the star submission route on the given router group.
func (h *StarHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/stars", h.Submit)
}

type submitStarRequest struct {
	Address   string          `json:"address" binding:"required"`
	Message   string          `json:"message" binding:"required"`
	Signature string          `json:"signature" binding:"required"`
	Star      json.RawMessage `json:"star" binding:"required"`
}

// Submit handles POST /stars — the full ownership-proof workflow: freshness
// check, signature verification, then an atomic append.
func (h *StarHandler) Submit(c *gin.Context) {
	var req submitStarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		starchainSubmissionsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "address, message, signature and star are required"})
		return
	}

	b, err := h.chain.SubmitStar(c.Request.Context(), req.Address, req.Message, req.Signature, req.Star)
	switch {
	case errors.Is(err, challenge.ErrMalformed):
		starchainSubmissionsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, chain.ErrChallengeExpired):
		starchainSubmissionsTotal.WithLabelValues("expired").Inc()
		c.JSON(http.StatusGone, gin.H{"error": "challenge expired, request a new one"})
		return
	case errors.Is(err, chain.ErrSignatureNotVerified):
		starchainSubmissionsTotal.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "signature could not be verified"})
		return
	case err != nil:
		starchainSubmissionsTotal.WithLabelValues("error").Inc()
		h.logger.Error("star submission failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to append block"})
		return
	}

	starchainSubmissionsTotal.WithLabelValues("accepted").Inc()
	RecordChainHeight(h.chain.Height())
	if h.hub != nil {
		h.hub.Publish(b)
	}
	c.JSON(http.StatusCreated, b)
}
