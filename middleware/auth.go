package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"caresaviour/models"
	"caresaviour/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CallerKey is the gin context key holding the authenticated models.Caller.
const CallerKey = "caller"

// JWTAuthMiddleware resolves the caller from a bearer token. Verified tokens
// are cached by hash in Redis; a nil cache means every request is verified.
func JWTAuthMiddleware(authCache *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			abortUnauthenticated(c, "Insufficient authorization")
			return
		}

		ctx := c.Request.Context()
		cacheKey := utils.AuthCachePrefix + utils.HashToken(tokenString)

		if authCache != nil {
			if caller, ok := cachedCaller(ctx, authCache, cacheKey); ok {
				c.Set(CallerKey, caller)
				c.Next()
				return
			}
		}

		caller, expiresAt, err := utils.ParseCallerToken(tokenString)
		if err != nil {
			utils.GetLogger().Debug("token rejected", zap.Error(err))
			abortUnauthenticated(c, "Invalid token")
			return
		}

		if authCache != nil {
			storeCaller(ctx, authCache, cacheKey, caller, expiresAt)
		}

		c.Set(CallerKey, caller)
		c.Next()
	}
}

// extractToken reads the Authorization header, then the token query
// parameter (browsers cannot set headers on websocket upgrades), then a cookie.
func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if q := c.Query("token"); q != "" {
		return q
	}
	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}

func cachedCaller(ctx context.Context, cache *redis.Client, key string) (models.Caller, bool) {
	raw, err := cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			utils.GetLogger().Warn("auth cache unavailable, verifying token", zap.Error(err))
		}
		return models.Caller{}, false
	}
	var caller models.Caller
	if err := json.Unmarshal([]byte(raw), &caller); err != nil || caller.ID == "" {
		return models.Caller{}, false
	}
	return caller, true
}

// storeCaller never keeps an entry past the token's own expiry.
func storeCaller(ctx context.Context, cache *redis.Client, key string, caller models.Caller, expiresAt time.Time) {
	ttl := utils.AuthCacheTTL
	if !expiresAt.IsZero() {
		if remaining := time.Until(expiresAt); remaining < ttl {
			ttl = remaining
		}
	}
	if ttl <= 0 {
		return
	}
	raw, err := json.Marshal(caller)
	if err != nil {
		return
	}
	if err := cache.Set(ctx, key, string(raw), ttl).Err(); err != nil {
		utils.GetLogger().Warn("failed to cache caller", zap.Error(err))
	}
}

func abortUnauthenticated(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{
		Kind:    utils.KindUnauthenticated,
		Message: msg,
	})
}

// CallerFromContext returns the caller set by JWTAuthMiddleware.
func CallerFromContext(c *gin.Context) (models.Caller, bool) {
	v, ok := c.Get(CallerKey)
	if !ok {
		return models.Caller{}, false
	}
	caller, ok := v.(models.Caller)
	return caller, ok
}
