package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/star-registry/starchain/internal/challenge"
	"go.uber.org/zap"
)

// ChallengeHandler issues ownership-proof challenges.
type ChallengeHandler struct {
	logger *zap.Logger
}

// NewChallengeHandler creates a ChallengeHandler.
func NewChallengeHandler(logger *zap.Logger) *ChallengeHandler {
	return &ChallengeHandler{logger: logger}
}

// Register mounts the challenge route on the given router group.
func (h *ChallengeHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/challenge", h.Request)
}

type challengeRequest struct {
	Address string `json:"address" binding:"required"`
}

// Request handles POST /challenge — returns the message the caller must sign
// to prove control of the address. Nothing is recorded server-side; freshness
// is recomputed from the embedded timestamp at submission time.
func (h *ChallengeHandler) Request(c *gin.Context) {
	var req challengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}

	msg := challenge.New(req.Address)
	h.logger.Debug("challenge issued", zap.String("address", req.Address))
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
