package handlers

import (
	"net/http"

	"caresaviour/utils"

	"github.com/gin-gonic/gin"
)

// Health reports the latest Mongo/Redis snapshot. It answers 503 when Mongo is down.
func Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	state := "ok"
	if !status.Mongo {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "message": "Hi, I'm CareSaviour", "services": status})
}
