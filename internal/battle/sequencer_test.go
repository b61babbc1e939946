package battle

import (
	"testing"

	"fitdex_battle/internal/game"

	"github.com/stretchr/testify/assert"
)

func TestTurnOrder_ReflexAlternatesFirstActor(t *testing.T) {
	assert.Equal(t,
		[]game.Side{game.SideHuman, game.SideOpponent, game.SideHuman},
		FirstActors(game.KindReflex, 3))

	assert.Equal(t, [2]game.Side{game.SideOpponent, game.SideHuman}, TurnOrder(game.KindReflex, 2))
}

func TestTurnOrder_GridHumanAlwaysFirst(t *testing.T) {
	for r := 1; r <= 3; r++ {
		assert.Equal(t, [2]game.Side{game.SideHuman, game.SideOpponent}, TurnOrder(game.KindGridSweep, r))
	}
}

func TestRules_Deltas(t *testing.T) {
	grid, reflex := GridRules(), ReflexRules()

	assert.Equal(t, 25, grid.Delta(Compare(30, 10)))
	assert.Equal(t, -15, grid.Delta(Compare(10, 30)))
	assert.Equal(t, 0, grid.Delta(Compare(10, 10)))

	assert.Equal(t, 25, reflex.Delta(Compare(30, 10)))
	assert.Equal(t, -10, reflex.Delta(Compare(10, 30)))
	assert.Equal(t, -10, reflex.Delta(Compare(10, 10)), "ничья в рефлексе - поражение")
}
