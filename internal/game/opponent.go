package game

import "time"

// Simulator играет за соперника. Единственная точка, куда можно
// подставить настоящего сетевого игрока, не трогая движки раундов
type Simulator interface {
	SimulateTurn(tc TurnContext) int
}

// SimulatorFunc позволяет передать функцию как Simulator
type SimulatorFunc func(tc TurnContext) int

func (f SimulatorFunc) SimulateTurn(tc TurnContext) int { return f(tc) }

const (
	gridBotHazardChance = 0.3 // бот подрывается в 30% раундов
	gridBotLead         = 10  // бот старается чуть обогнать игрока
	gridBotFloor        = 40  // если игрок взорвался, цель бота - 40
	gridBotVariance     = 30
)

// GridSimulator - бот для "Сапёра": результат раунда целиком за один вызов
type GridSimulator struct {
	Rand Rand
}

func (s GridSimulator) SimulateTurn(tc TurnContext) int {
	if s.Rand.Float64() < gridBotHazardChance {
		return 0
	}
	target := gridBotFloor
	if tc.HumanScore > 0 {
		target = tc.HumanScore + gridBotLead
	}
	return target + s.Rand.Intn(gridBotVariance)
}

const (
	reflexBotMinDelay     = 500 * time.Millisecond
	reflexBotDelaySpread  = 400 // мс
	reflexBotPerfectShare = 0.3
)

// ReflexSimulator - бот для "Рефлекса". Вызывается при появлении каждой мишени
// и на каждой проверке (100мс) во время хода соперника:
// решает попадет ли по новым мишеням и засчитывает попадания, время которых наступило
type ReflexSimulator struct {
	Difficulty Difficulty
	Rand       Rand
}

func (s ReflexSimulator) SimulateTurn(tc TurnContext) int {
	if tc.Turn == nil || tc.Turn.Side() != SideOpponent {
		return 0
	}

	scored := 0
	for _, target := range tc.Turn.Open() {
		if !target.planned {
			target.planned = true
			if s.Rand.Float64() < s.Difficulty.HitChance() {
				at := target.SpawnedAt.Add(reflexBotMinDelay +
					time.Duration(s.Rand.Intn(reflexBotDelaySpread))*time.Millisecond)
				target.SimulatedHitAt = &at
			}
		}

		if target.SimulatedHitAt == nil || tc.Now.Before(*target.SimulatedHitAt) {
			continue
		}

		points := ReflexGoodPoints
		if s.Rand.Float64() < reflexBotPerfectShare {
			points = ReflexPerfectPoints
		}
		if tc.Turn.Credit(target.ID, points) {
			scored += points
		}
	}
	return scored
}

// SimulatorFor возвращает бота под конкретную игру
func SimulatorFor(kind Kind, difficulty Difficulty, rng Rand) Simulator {
	if kind == KindReflex {
		return ReflexSimulator{Difficulty: difficulty, Rand: rng}
	}
	return GridSimulator{Rand: rng}
}
