package battle

import (
	"time"

	"fitdex_battle/internal/game"
)

// Snapshot - неизменяемый срез состояния сессии для клиента
type Snapshot struct {
	SessionID string    `json:"session_id"`
	Phase     PhaseName `json:"phase"`
	State     Phase     `json:"state"`
	Now       time.Time `json:"now"`

	Match *MatchSession `json:"match,omitempty"`

	// очки текущего раунда с учетом идущего хода
	RoundHuman    int `json:"round_human"`
	RoundOpponent int `json:"round_opponent"`

	Grid   *game.GridView   `json:"grid,omitempty"`
	Reflex *game.ReflexView `json:"reflex,omitempty"`
}

// Snapshot возвращает копию состояния. Расстановка бомб видна только после конца раунда
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.unlock()
	s.advance()

	snap := Snapshot{
		SessionID: s.id,
		Phase:     s.phase.Name(),
		State:     s.phase,
		Now:       s.sched.Now(),
	}
	if s.match == nil {
		return snap
	}

	m := *s.match
	m.Records = append([]RoundRecord(nil), s.match.Records...)
	if s.match.Opponent != nil {
		opp := *s.match.Opponent
		m.Opponent = &opp
	}
	snap.Match = &m

	if r := s.round; r != nil {
		snap.RoundHuman, snap.RoundOpponent = r.human, r.opponent
		if r.grid != nil {
			v := r.grid.View()
			snap.Grid = &v
			if !r.grid.Over() {
				snap.RoundHuman = r.grid.Score()
			}
		}
		if r.turn != nil && !r.turn.Over() {
			v := r.turn.View()
			snap.Reflex = &v
			if r.turn.Side() == game.SideHuman {
				snap.RoundHuman = r.turn.Score()
			} else {
				snap.RoundOpponent = r.turn.Score()
			}
		}
	}
	return snap
}
