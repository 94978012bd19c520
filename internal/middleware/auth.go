package middleware

import (
	"context"
	"socialfeed-backend/internal/errors"
	"socialfeed-backend/internal/service"
	"socialfeed-backend/internal/util"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 校验 Bearer 令牌并把用户ID写入上下文
func AuthMiddleware(userService service.UserServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "authentication required"))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		userID, issuedAt, err := util.ValidateToken(parts[1])
		if err != nil {
			errors.HandleError(c, errors.Wrap(errors.ErrInvalidToken, "invalid or expired token", err))
			c.Abort()
			return
		}

		if userService.IsTokenRevoked(parts[1], userID, issuedAt) {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "token has been revoked"))
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("token", parts[1])

		select {
		case <-ctx.Done():
			errors.HandleError(c, errors.New(errors.ErrTimeout, "request timed out"))
			c.Abort()
			return
		default:
			c.Next()
		}
	}
}
