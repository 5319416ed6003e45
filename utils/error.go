package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"` // same action may succeed with corrected input
	Details   string    `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err), zap.String("path", c.Request.URL.Path))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Kind:    KindInternal,
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, kind ErrorKind, message string, details string) {
	Logger := GetLogger()
	Logger.Warn(message, zap.String("details", details), zap.Int("status", status))
	c.JSON(status, ErrorResponse{Kind: kind, Message: message, Retryable: kind.Retryable(), Details: details})
}

// RespondError translates a service error into its HTTP response.
func RespondError(c *gin.Context, err error) {
	kind := KindOf(err)
	status := kind.HTTPStatus()
	if kind == KindInternal {
		GetLogger().Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	} else {
		GetLogger().Debug("Request rejected", zap.String("path", c.Request.URL.Path), zap.String("kind", string(kind)), zap.Error(err))
	}
	c.JSON(status, ErrorResponse{Kind: kind, Message: MessageOf(err), Retryable: kind.Retryable()})
}
