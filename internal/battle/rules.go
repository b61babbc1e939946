package battle

import (
	"time"

	"fitdex_battle/internal/game"
)

// Rules - тайминги и начисления рейтинга для одного вида игры
type Rules struct {
	MaxRounds int

	// поиск соперника: с конкретным соперником короче
	RequestedSearch time.Duration
	SearchBase      time.Duration
	SearchJitter    time.Duration // случайная добавка [0, SearchJitter)
	VersusIntro     time.Duration

	// пауза на экране итогов раунда
	RoundResultHold time.Duration

	// reflex
	TurnDuration time.Duration
	SpawnEvery   time.Duration
	CheckEvery   time.Duration
	FirstTurnIn  time.Duration
	TurnGap      time.Duration

	// grid
	AfterHazard  time.Duration
	AfterCashOut time.Duration
	OpponentPlay time.Duration
	BotChance    float64 // шанс получить FitBot вместо друга при случайном поиске

	// изменения рейтинга
	WinDelta       int
	LossDelta      int
	TieDelta       int
	SurrenderDelta int
}

// Delta - изменение рейтинга за итог матча
func (r Rules) Delta(o Outcome) int {
	switch o {
	case OutcomeHumanWin:
		return r.WinDelta
	case OutcomeOpponentWin:
		return r.LossDelta
	default:
		return r.TieDelta
	}
}

const SurrenderPenalty = -20

// GridRules - правила "Сапёра"
func GridRules() Rules {
	return Rules{
		MaxRounds:       3,
		RequestedSearch: 1500 * time.Millisecond,
		SearchBase:      2000 * time.Millisecond,
		SearchJitter:    2000 * time.Millisecond,
		VersusIntro:     2500 * time.Millisecond,
		RoundResultHold: 2500 * time.Millisecond,
		AfterHazard:     1500 * time.Millisecond,
		AfterCashOut:    1000 * time.Millisecond,
		OpponentPlay:    2000 * time.Millisecond,
		BotChance:       0.3,
		WinDelta:        25,
		LossDelta:       -15,
		TieDelta:        0,
		SurrenderDelta:  SurrenderPenalty,
	}
}

// ReflexRules - правила "Рефлекса". Ничья считается поражением
func ReflexRules() Rules {
	return Rules{
		MaxRounds:       3,
		RequestedSearch: 1500 * time.Millisecond,
		SearchBase:      2000 * time.Millisecond,
		VersusIntro:     2500 * time.Millisecond,
		RoundResultHold: 3000 * time.Millisecond,
		TurnDuration:    game.ReflexTurnDuration,
		SpawnEvery:      game.ReflexSpawnEvery,
		CheckEvery:      game.ReflexCheckEvery,
		FirstTurnIn:     500 * time.Millisecond,
		TurnGap:         1000 * time.Millisecond,
		WinDelta:        25,
		LossDelta:       -10,
		TieDelta:        -10,
		SurrenderDelta:  SurrenderPenalty,
	}
}

// DefaultRules - правила для всех видов игры
func DefaultRules() map[game.Kind]Rules {
	return map[game.Kind]Rules{
		game.KindGridSweep: GridRules(),
		game.KindReflex:    ReflexRules(),
	}
}
