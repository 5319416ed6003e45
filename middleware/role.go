package middleware

import (
	"net/http"

	"caresaviour/models"
	"caresaviour/utils"

	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through only for the listed roles. It must run
// after JWTAuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		caller, ok := CallerFromContext(c)
		if !ok {
			abortUnauthenticated(c, "Insufficient authorization")
			return
		}
		if !allowed[caller.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{
				Kind:    utils.KindForbidden,
				Message: "Access denied for role " + string(caller.Role),
			})
			return
		}
		c.Next()
	}
}
