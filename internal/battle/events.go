package battle

import (
	"time"

	"fitdex_battle/internal/game"
)

// EventType - тип события, которое сессия отдает наружу
type EventType string

const (
	EventPhase         EventType = "phase"
	EventSpawn         EventType = "spawn"
	EventTap           EventType = "tap"
	EventReveal        EventType = "reveal"
	EventTurnEnd       EventType = "turn_end"
	EventOpponentScore EventType = "opponent_score"
	EventFinal         EventType = "final"
)

// Event - сообщение для клиента. Заполнены только поля своего типа
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	At        time.Time `json:"at"`

	Phase    PhaseName `json:"phase,omitempty"`
	State    Phase     `json:"state,omitempty"`
	Round    int       `json:"round,omitempty"`
	Side     game.Side `json:"side"`
	Points   int       `json:"points,omitempty"`
	Score    int       `json:"score,omitempty"`
	Discards int       `json:"discards,omitempty"`

	Target *game.ReflexTarget `json:"target,omitempty"`
	Tap    *game.TapResult    `json:"tap,omitempty"`
	Reveal *game.RevealResult `json:"reveal,omitempty"`
	Final  *FinalResult       `json:"final,omitempty"`
}
