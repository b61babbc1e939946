package battle

import (
	"time"

	"fitdex_battle/internal/game"
)

// PhaseName - имя фазы для клиента и логов
type PhaseName string

const (
	PhaseIdle        PhaseName = "idle"
	PhaseMatchmaking PhaseName = "matchmaking"
	PhaseVersusIntro PhaseName = "versus_intro"
	PhaseInRound     PhaseName = "in_round"
	PhaseRoundResult PhaseName = "round_result"
	PhaseFinalResult PhaseName = "final_result"
)

// Phase - фаза матча. Каждая фаза несет только свои данные,
// поэтому комбинация "фаза + чужие данные" невозможна
type Phase interface {
	Name() PhaseName
	isPhase()
}

type Idle struct{}

type Matchmaking struct {
	Kind      game.Kind `json:"kind"`
	Requested bool      `json:"requested"` // соперник выбран заранее
	Until     time.Time `json:"until"`
}

type VersusIntro struct {
	Opponent game.Opponent `json:"opponent"`
	Until    time.Time     `json:"until"`
}

type InRound struct {
	Round      int       `json:"round"`
	Turn       game.Side `json:"turn"`
	TurnIndex  int       `json:"turn_index"`  // 0 или 1
	TurnActive bool      `json:"turn_active"` // false в паузах между ходами
	TurnEndsAt time.Time `json:"turn_ends_at,omitempty"`
}

type RoundResult struct {
	Record RoundRecord `json:"record"`
	Until  time.Time   `json:"until"`
}

type FinalResult struct {
	Outcome     Outcome `json:"outcome"`
	Delta       int     `json:"delta"`
	HumanTotal  int     `json:"human_total"`
	OppTotal    int     `json:"opponent_total"`
	Surrendered bool    `json:"surrendered"`
}

func (Idle) Name() PhaseName        { return PhaseIdle }
func (Matchmaking) Name() PhaseName { return PhaseMatchmaking }
func (VersusIntro) Name() PhaseName { return PhaseVersusIntro }
func (InRound) Name() PhaseName     { return PhaseInRound }
func (RoundResult) Name() PhaseName { return PhaseRoundResult }
func (FinalResult) Name() PhaseName { return PhaseFinalResult }

func (Idle) isPhase()        {}
func (Matchmaking) isPhase() {}
func (VersusIntro) isPhase() {}
func (InRound) isPhase()     {}
func (RoundResult) isPhase() {}
func (FinalResult) isPhase() {}
