package middleware

import (
	"context"
	"net/http"
	"strings"

	"fitdex_battle/internal/logger"

	"github.com/gin-gonic/gin"
)

// ключ контекста gin, куда кладется id пользователя
const UserIDKey = "user_id"

type TokenParser interface {
	Parse(token string) (string, error)
}

// Toucher обновляет отметку last_seen
type Toucher interface {
	Touch(ctx context.Context, id string) error
}

// Auth проверяет Bearer JWT и кладет id пользователя в контекст
func Auth(parser TokenParser, users Toucher) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		userID, err := parser.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(UserIDKey, userID)
		ctx := logger.Into(c.Request.Context(), "user_id", userID)
		c.Request = c.Request.WithContext(ctx)

		if users != nil {
			if err := users.Touch(ctx, userID); err != nil {
				logger.WithContext(ctx).Warn("touch failed", "error", err)
			}
		}
		c.Next()
	}
}
