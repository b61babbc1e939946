package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"fitdex_battle/internal/battle"
	"fitdex_battle/internal/logger"
	"fitdex_battle/internal/metrics"
)

// Message - конверт всех сообщений сервер -> клиент
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Hub раздает события сессий по соединениям пользователя.
// У одного пользователя может быть несколько вкладок
type Hub struct {
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex

	actions Actions
	metrics *metrics.Metrics
	log     *slog.Logger
}

func NewHub(actions Actions, m *metrics.Metrics) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		actions: actions,
		metrics: m,
		log:     logger.With("component", "ws_hub"),
	}
}

// SetActions подключает обработчик действий. Вызывать до запуска сервера
func (h *Hub) SetActions(actions Actions) {
	h.actions = actions
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	if h.metrics != nil {
		h.metrics.WSConnections.Inc()
	}
	h.log.Debug("client registered", "user_id", c.UserID, "connections", len(set))
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	c.closeSend()
	if h.metrics != nil {
		h.metrics.WSConnections.Dec()
	}
	h.log.Debug("client unregistered", "user_id", c.UserID)
}

// Count - число открытых соединений пользователя
func (h *Hub) Count(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Publish отправляет событие сессии всем соединениям пользователя
func (h *Hub) Publish(userID string, ev battle.Event) {
	h.Send(userID, Message{Type: "event", Payload: ev})
}

// Send не блокируется: медленный клиент теряет сообщение, игра не ждет
func (h *Hub) Send(userID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("marshal message", "error", err, "type", msg.Type)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.Send <- data:
		default:
			h.log.Warn("client send buffer full, message dropped", "user_id", userID, "type", msg.Type)
		}
	}
}
