package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	sendBuffer = 256
)

type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	hub       *Hub
	closeOnce sync.Once
}

func NewClient(userID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		hub:    hub,
	}
}

// Run регистрирует клиента и крутит чтение до разрыва соединения
func (c *Client) Run() {
	c.hub.Register(c)
	go c.writePump()

	c.reply(Message{Type: "ready"})
	c.readPump()
}

// closeSend закрывает очередь записи, writePump после этого закрывает соединение
func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// read
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug("read error", "user_id", c.UserID, "error", err)
			}
			return
		}
		c.reply(c.hub.handle(c.UserID, msg))
	}
}

// ответ на действие уходит только в это соединение.
// Send закрывает только Unregister из readPump, поэтому здесь он открыт
func (c *Client) reply(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	default:
		c.hub.log.Warn("client send buffer full, reply dropped", "user_id", c.UserID, "type", msg.Type)
	}
}

// write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.log.Debug("write error", "user_id", c.UserID, "error", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
