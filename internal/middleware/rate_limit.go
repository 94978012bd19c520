package middleware

import (
	"fmt"
	"socialfeed-backend/internal/cache"
	"socialfeed-backend/internal/errors"
	"socialfeed-backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitMiddleware 按客户端IP对指定动作限流
// Redis 故障时放行请求，限流不应成为单点
func RateLimitMiddleware(rdb *cache.RedisCache, action string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate:limit:%s:%s", c.ClientIP(), action)
		limitRequest(c, rdb, key, limit, window)
	}
}

// UserRateLimitMiddleware 按已认证用户对指定动作限流
func UserRateLimitMiddleware(rdb *cache.RedisCache, action string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt("user_id")
		if userID == 0 {
			c.Next()
			return
		}
		key := fmt.Sprintf("rate:limit:%d:%s", userID, action)
		limitRequest(c, rdb, key, limit, window)
	}
}

func limitRequest(c *gin.Context, rdb *cache.RedisCache, key string, limit int, window time.Duration) {
	allowed, err := rdb.AllowRequest(c.Request.Context(), key, limit, window)
	if err != nil {
		util.Logger.Error("限流检查失败", zap.Error(err), zap.String("key", key))
		c.Next()
		return
	}

	if !allowed {
		errors.HandleError(c, errors.New(errors.ErrTooManyRequests, "too many requests, slow down"))
		c.Abort()
		return
	}
	c.Next()
}
