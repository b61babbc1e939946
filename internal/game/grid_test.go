package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid_HazardCountIsExact(t *testing.T) {
	for size := GridHazards + 1; size <= 49; size++ {
		for seed := int64(1); seed <= 5; seed++ {
			g, err := NewGrid(size, GridHazards, SeededRand(seed))
			require.NoError(t, err)
			assert.Equal(t, GridHazards, g.Hazards(), "size=%d seed=%d", size, seed)

			// открываем все подряд - количество бомб не меняется
			for i := 0; i < size && !g.Over(); i++ {
				_, _ = g.Reveal(i)
			}
			assert.Equal(t, GridHazards, g.Hazards(), "после открытия size=%d", size)
		}
	}
}

func TestNewGrid_RejectionSamplingSkipsDuplicates(t *testing.T) {
	// одна и та же позиция выпадает несколько раз подряд
	rng := &scriptedRand{ints: []int{3, 3, 3, 7, 7, 1, 20, 3, 24}}
	g, err := NewGrid(GridSize, GridHazards, rng)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 7, 20, 24}, hazardCells(g))
}

func TestNewGrid_InvalidConfig(t *testing.T) {
	_, err := NewGrid(25, 0, SeededRand(1))
	assert.ErrorIs(t, err, ErrGridConfig)

	_, err = NewGrid(4, 5, SeededRand(1))
	assert.ErrorIs(t, err, ErrGridConfig)

	// поле без единой безопасной клетки
	_, err = NewGrid(5, 5, SeededRand(1))
	assert.ErrorIs(t, err, ErrGridConfig)
}

func TestGrid_HazardZeroesScore(t *testing.T) {
	for safeBefore := 0; safeBefore <= 6; safeBefore++ {
		g := NewDefaultGrid(SeededRand(int64(safeBefore) + 10))
		safe := safeCells(g)
		for i := 0; i < safeBefore; i++ {
			_, err := g.Reveal(safe[i])
			require.NoError(t, err)
		}

		res, err := g.Reveal(hazardCells(g)[0])
		require.NoError(t, err)
		assert.True(t, res.Hazard)
		assert.True(t, res.Over)
		assert.Equal(t, 0, res.Score)
		assert.Equal(t, 0, g.Score())
		assert.Equal(t, GridStatusExploded, g.Status())
	}
}

func TestGrid_MultiplierGrowsByTwoTenths(t *testing.T) {
	g := NewDefaultGrid(SeededRand(42))
	assert.InDelta(t, 1.0, g.Multiplier(), 1e-9)

	for n, cell := range safeCells(g)[:10] {
		_, err := g.Reveal(cell)
		require.NoError(t, err)
		assert.InDelta(t, 1.0+0.2*float64(n+1), g.Multiplier(), 1e-9, "после %d открытий", n+1)
	}
}

func TestGrid_ThreeSafeRevealsThenCashOut(t *testing.T) {
	g := NewDefaultGrid(SeededRand(7))
	safe := safeCells(g)

	var awarded []int
	for _, cell := range safe[:3] {
		res, err := g.Reveal(cell)
		require.NoError(t, err)
		awarded = append(awarded, res.Awarded)
	}
	assert.Equal(t, []int{10, 12, 14}, awarded)

	banked, err := g.CashOut()
	require.NoError(t, err)
	assert.Equal(t, 36, banked)
	assert.Equal(t, GridStatusCashedOut, g.Status())
}

func TestGrid_CashOutWithZeroScoreIsNoop(t *testing.T) {
	g := NewDefaultGrid(SeededRand(3))

	_, err := g.CashOut()
	assert.ErrorIs(t, err, ErrNothingToCashOut)
	assert.False(t, g.Over(), "раунд не должен завершиться")

	// после этого раунд продолжается как обычно
	_, err = g.Reveal(safeCells(g)[0])
	require.NoError(t, err)
}

func TestGrid_DoubleActionsAreRejected(t *testing.T) {
	g := NewDefaultGrid(SeededRand(5))
	cell := safeCells(g)[0]

	_, err := g.Reveal(cell)
	require.NoError(t, err)
	before := g.Score()

	_, err = g.Reveal(cell)
	assert.ErrorIs(t, err, ErrCellRevealed)
	assert.Equal(t, before, g.Score())

	_, err = g.Reveal(-1)
	assert.ErrorIs(t, err, ErrCellOutOfRange)

	_, err = g.CashOut()
	require.NoError(t, err)

	_, err = g.Reveal(safeCells(g)[1])
	assert.ErrorIs(t, err, ErrRoundOver)
	_, err = g.CashOut()
	assert.ErrorIs(t, err, ErrRoundOver)
}

func TestGrid_AllSafeRevealedAutoBanks(t *testing.T) {
	g, err := NewGrid(7, 5, SeededRand(9))
	require.NoError(t, err)

	for _, cell := range safeCells(g) {
		_, err := g.Reveal(cell)
		require.NoError(t, err)
	}
	assert.Equal(t, GridStatusCashedOut, g.Status())
	assert.Equal(t, 10+12, g.Score())
}

func TestGrid_ViewHidesHazardsWhileActive(t *testing.T) {
	g := NewDefaultGrid(SeededRand(11))
	_, _ = g.Reveal(safeCells(g)[0])

	v := g.View()
	assert.Empty(t, v.Hazards)
	assert.Len(t, v.Revealed, 1)

	_, _ = g.Reveal(hazardCells(g)[0])
	v = g.View()
	assert.Len(t, v.Hazards, GridHazards)
	assert.Equal(t, GridStatusExploded, v.Status)
}
