package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/star-registry/starchain/internal/chain"
	"go.uber.org/zap"
)

// ChainHandler exposes the read-only query surface of the chain.
type ChainHandler struct {
	chain  *chain.Blockchain
	logger *zap.Logger
}

// NewChainHandler creates a ChainHandler.
func NewChainHandler(bc *chain.Blockchain, logger *zap.Logger) *ChainHandler {
	return &ChainHandler{chain: bc, logger: logger}
}

// Register mounts the query routes on the given router group.
func (h *ChainHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/chain", h.Overview)
	rg.GET("/chain/validate", h.Validate)
	rg.GET("/blocks/height/:height", h.BlockByHeight)
	rg.GET("/blocks/hash/:hash", h.BlockByHash)
	rg.GET("/stars/:address", h.StarsByOwner)
}

// Overview handles GET /chain — returns the block count and the tip hash.
func (h *ChainHandler) Overview(c *gin.Context) {
	height := h.chain.Height()
	tip := h.chain.BlockByHeight(height - 1)

	resp := gin.H{"height": height}
	if tip != nil {
		resp["tip"] = tip.Hash
	}
	c.JSON(http.StatusOK, resp)
}

// Validate handles GET /chain/validate — walks the full chain and returns
// every integrity violation. Corruption is reported as data, always with 200:
// validation is diagnostic, not a gate.
func (h *ChainHandler) Validate(c *gin.Context) {
	violations := h.chain.Validate()
	if len(violations) > 0 {
		h.logger.Warn("chain integrity check failed", zap.Int("violations", len(violations)))
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":      len(violations) == 0,
		"violations": violations,
	})
}

// BlockByHeight handles GET /blocks/height/:height.
func (h *ChainHandler) BlockByHeight(c *gin.Context) {
	height, err := strconv.Atoi(c.Param("height"))
	if err != nil || height < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "height must be a non-negative integer"})
		return
	}

	b := h.chain.BlockByHeight(height)
	if b == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "block not found"})
		return
	}
	c.JSON(http.StatusOK, b)
}

// BlockByHash handles GET /blocks/hash/:hash.
func (h *ChainHandler) BlockByHash(c *gin.Context) {
	b := h.chain.BlockByHash(c.Param("hash"))
	if b == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "block not found"})
		return
	}
	c.JSON(http.StatusOK, b)
}

// StarsByOwner handles GET /stars/:address — an empty list is a valid result.
func (h *ChainHandler) StarsByOwner(c *gin.Context) {
	stars := h.chain.StarsByOwner(c.Param("address"))
	c.JSON(http.StatusOK, gin.H{"stars": stars})
}
