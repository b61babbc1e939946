package ws

import (
	"encoding/json"
	"errors"

	"fitdex_battle/internal/battle"
	"fitdex_battle/internal/game"
)

// Actions - игровые действия, доступные по сокету. Реализует BattleService
type Actions interface {
	Tap(userID string, targetID int) (game.TapResult, error)
	Reveal(userID string, cell int) (game.RevealResult, error)
	CashOut(userID string) (int, error)
	Surrender(userID string) error
}

// входящее сообщение клиента
type inbound struct {
	Type   string `json:"type"`
	Target int    `json:"target"`
	Cell   int    `json:"cell"`
}

type ackPayload struct {
	Action  string      `json:"action"`
	Result  interface{} `json:"result,omitempty"`
	Ignored bool        `json:"ignored,omitempty"`
	Reason  string      `json:"reason,omitempty"`
}

type errorPayload struct {
	Action  string `json:"action,omitempty"`
	Message string `json:"message"`
}

var errUnknownAction = errors.New("неизвестное действие")

// handle выполняет действие и возвращает ответ клиенту
func (h *Hub) handle(userID string, raw []byte) Message {
	var msg inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{Type: "error", Payload: errorPayload{Message: "неверный формат сообщения"}}
	}
	if msg.Type == "ping" {
		return Message{Type: "pong"}
	}
	if h.actions == nil {
		return Message{Type: "error", Payload: errorPayload{Action: msg.Type, Message: errUnknownAction.Error()}}
	}

	var (
		result interface{}
		err    error
	)
	switch msg.Type {
	case "tap":
		result, err = h.actions.Tap(userID, msg.Target)
	case "reveal":
		result, err = h.actions.Reveal(userID, msg.Cell)
	case "cashout":
		var banked int
		banked, err = h.actions.CashOut(userID)
		result = map[string]int{"banked": banked}
	case "surrender":
		err = h.actions.Surrender(userID)
	default:
		err = errUnknownAction
	}

	if battle.Ignored(err) {
		return Message{Type: "ack", Payload: ackPayload{Action: msg.Type, Ignored: true, Reason: err.Error()}}
	}
	if err != nil {
		return Message{Type: "error", Payload: errorPayload{Action: msg.Type, Message: err.Error()}}
	}
	return Message{Type: "ack", Payload: ackPayload{Action: msg.Type, Result: result}}
}
