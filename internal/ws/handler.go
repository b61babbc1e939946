package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// TokenParser проверяет JWT из query-параметра
type TokenParser interface {
	Parse(token string) (string, error)
}

// HandleWS поднимает сокет событий битвы: /ws?token=...
func HandleWS(hub *Hub, auth TokenParser, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "токен обязателен"})
			return
		}

		userID, err := auth.Parse(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "неверный токен"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.log.Warn("ws upgrade failed", "error", err, "user_id", userID)
			return
		}

		go NewClient(userID, conn, hub).Run()
	}
}
