package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGridSimulator(t *testing.T) {
	cases := []struct {
		name   string
		human  int
		rng    *scriptedRand
		expect int
	}{
		{"бот подорвался", 50, &scriptedRand{floats: []float64{0.29}}, 0},
		{"бот обгоняет игрока", 20, &scriptedRand{floats: []float64{0.3}, ints: []int{7}}, 37},
		{"игрок взорвался", 0, &scriptedRand{floats: []float64{0.9}, ints: []int{29}}, 69},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sim := GridSimulator{Rand: tc.rng}
			got := sim.SimulateTurn(TurnContext{Kind: KindGridSweep, HumanScore: tc.human})
			assert.Equal(t, tc.expect, got)
		})
	}
}

func TestGridSimulator_Range(t *testing.T) {
	sim := GridSimulator{Rand: SeededRand(4)}
	for i := 0; i < 1000; i++ {
		got := sim.SimulateTurn(TurnContext{Kind: KindGridSweep, HumanScore: 36})
		if got != 0 {
			assert.GreaterOrEqual(t, got, 46)
			assert.Less(t, got, 76)
		}
	}
}

func TestReflexSimulator_RealisesCommittedHits(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	turn := NewReflexTurn(SideOpponent, 2)
	turn.Spawn(start, SeededRand(1)) // попадет
	turn.Spawn(start, SeededRand(2)) // промахнется

	rng := &scriptedRand{
		// решение по первой мишени, решение по второй, затем доля perfect
		floats: []float64{0.1, 0.99, 0.1},
		ints:   []int{200}, // попадание через 700мс
	}
	sim := ReflexSimulator{Difficulty: DifficultyMedium, Rand: rng}

	got := sim.SimulateTurn(TurnContext{Kind: KindReflex, Now: start, Turn: turn})
	assert.Equal(t, 0, got)

	first := turn.Open()[0]
	if assert.NotNil(t, first.SimulatedHitAt) {
		assert.Equal(t, start.Add(700*time.Millisecond), *first.SimulatedHitAt)
	}
	assert.Nil(t, turn.Open()[1].SimulatedHitAt)

	got = sim.SimulateTurn(TurnContext{Kind: KindReflex, Now: start.Add(699 * time.Millisecond), Turn: turn})
	assert.Equal(t, 0, got, "время попадания еще не наступило")

	got = sim.SimulateTurn(TurnContext{Kind: KindReflex, Now: start.Add(700 * time.Millisecond), Turn: turn})
	assert.Equal(t, ReflexPerfectPoints, got)

	got = sim.SimulateTurn(TurnContext{Kind: KindReflex, Now: start.Add(5 * time.Second), Turn: turn})
	assert.Equal(t, 0, got, "повторно не засчитывается")
	assert.Equal(t, ReflexPerfectPoints, turn.Score())
}

func TestReflexSimulator_IgnoresHumanTurn(t *testing.T) {
	turn := NewReflexTurn(SideHuman, 1)
	turn.Spawn(time.Now(), SeededRand(1))
	sim := ReflexSimulator{Difficulty: DifficultyHard, Rand: SeededRand(1)}

	assert.Equal(t, 0, sim.SimulateTurn(TurnContext{Kind: KindReflex, Now: time.Now().Add(time.Hour), Turn: turn}))
	assert.Equal(t, 0, turn.Score())
}

func TestReflexSimulator_HitRateFollowsDifficulty(t *testing.T) {
	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		rng := SeededRand(17)
		sim := ReflexSimulator{Difficulty: d, Rand: rng}
		start := time.Now()
		turn := NewReflexTurn(SideOpponent, 1)

		const n = 4000
		for i := 0; i < n; i++ {
			turn.Spawn(start, rng)
		}
		sim.SimulateTurn(TurnContext{Kind: KindReflex, Now: start, Turn: turn})

		planned := 0
		for _, target := range turn.Open() {
			if target.SimulatedHitAt != nil {
				planned++
				delay := target.SimulatedHitAt.Sub(target.SpawnedAt)
				assert.GreaterOrEqual(t, delay, 500*time.Millisecond)
				assert.Less(t, delay, 900*time.Millisecond)
			}
		}
		assert.InDelta(t, d.HitChance(), float64(planned)/n, 0.03, "difficulty=%s", d)
	}
}

func TestSimulatorFor(t *testing.T) {
	assert.IsType(t, GridSimulator{}, SimulatorFor(KindGridSweep, DifficultyEasy, SeededRand(1)))
	assert.IsType(t, ReflexSimulator{}, SimulatorFor(KindReflex, DifficultyEasy, SeededRand(1)))
}
