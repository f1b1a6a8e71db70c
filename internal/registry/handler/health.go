package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/star-registry/starchain/internal/chain"
)

// HealthRoute mounts the liveness endpoint on the engine root.
func HealthRoute(r *gin.Engine, bc *chain.Blockchain) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"height": bc.Height(),
		})
	})
}
