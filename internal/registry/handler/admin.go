package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/star-registry/starchain/internal/chain"
	"github.com/star-registry/starchain/internal/identity"
	"go.uber.org/zap"
)

// AdminHandler exposes the token-guarded diagnostic API.
type AdminHandler struct {
	tokens *identity.AdminTokenIssuer
	chain  *chain.Blockchain
	logger *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(tokens *identity.AdminTokenIssuer, bc *chain.Blockchain, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{tokens: tokens, chain: bc, logger: logger}
}

// Register mounts the admin routes on the given router group.
func (h *AdminHandler) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	{
		admin.POST("/login", h.Login)
		guarded := admin.Group("", h.requireAdmin())
		guarded.GET("/chain", h.DumpChain)
	}
}

type adminLoginRequest struct {
	Secret string `json:"secret" binding:"required"`
}

// Login handles POST /admin/login — exchanges the admin secret for a session token.
func (h *AdminHandler) Login(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "secret is required"})
		return
	}

	token, err := h.tokens.Login(req.Secret)
	if err != nil {
		h.logger.Warn("admin login rejected", zap.String("ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin secret"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// requireAdmin returns a middleware enforcing a valid admin bearer token.
func (h *AdminHandler) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		if _, err := h.tokens.Verify(token); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Next()
	}
}

// DumpChain handles GET /admin/chain — returns the full block sequence.
func (h *AdminHandler) DumpChain(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"blocks": h.chain.Blocks()})
}
