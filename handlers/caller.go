package handlers

import (
	"caresaviour/middleware"
	"caresaviour/models"
	"caresaviour/utils"

	"github.com/gin-gonic/gin"
)

// requireCaller aborts with 401 when no authenticated caller is attached.
func requireCaller(c *gin.Context) (models.Caller, bool) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok || caller.ID == "" {
		utils.RespondError(c, utils.NewUnauthenticatedError("Insufficient authorization"))
		c.Abort()
		return models.Caller{}, false
	}
	return caller, true
}

func bindError(c *gin.Context, err error) {
	getLogger(c).Debug("invalid request body")
	utils.RespondError(c, utils.NewValidationError("invalid request body: "+err.Error()))
}
