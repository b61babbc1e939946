package game

import (
	"errors"
	"fmt"
)

const (
	GridSize        = 25 // 5x5 сетка
	GridHazards     = 5
	GridBasePoints  = 10
	GridStepTenths  = 2  // +0.2 к множителю за каждую безопасную ячейку
	gridStartTenths = 10 // множитель 1.0
)

const (
	GridStatusActive    = "active"
	GridStatusCashedOut = "cashed_out"
	GridStatusExploded  = "exploded"
)

var (
	ErrGridConfig       = errors.New("неверная конфигурация сетки")
	ErrCellOutOfRange   = errors.New("неверная позиция ячейки")
	ErrCellRevealed     = errors.New("ячейка уже открыта")
	ErrRoundOver        = errors.New("раунд уже завершен")
	ErrNothingToCashOut = errors.New("нечего забирать: очков 0")
)

// GridCell - ячейка сетки, тип (бомба/безопасная) не меняется после расстановки
type GridCell struct {
	Index    int  `json:"index"`
	IsHazard bool `json:"-"`
	Revealed bool `json:"revealed"`
}

// Grid - поле одного раунда "Сапёра"
// игрок открывает ячейки, множитель растет, можно забрать очки в любой момент
type Grid struct {
	cells      []GridCell
	hazards    int
	multTenths int // множитель хранится в десятых, чтобы не ловить погрешность float
	score      int
	safeOpened int
	status     string
}

// RevealResult - результат открытия ячейки
type RevealResult struct {
	Cell       int     `json:"cell"`
	Hazard     bool    `json:"hazard"`
	Awarded    int     `json:"awarded"`
	Score      int     `json:"score"`
	Multiplier float64 `json:"multiplier"`
	Over       bool    `json:"over"`
}

// NewGrid создает поле и расставляет бомбы случайно без повторов
func NewGrid(size, hazards int, rng Rand) (*Grid, error) {
	if size < 2 || hazards < 1 || hazards >= size {
		return nil, fmt.Errorf("%w: size=%d hazards=%d", ErrGridConfig, size, hazards)
	}

	g := &Grid{
		cells:      make([]GridCell, size),
		hazards:    hazards,
		multTenths: gridStartTenths,
		status:     GridStatusActive,
	}
	for i := range g.cells {
		g.cells[i].Index = i
	}

	placed := 0
	for placed < hazards {
		pos := rng.Intn(size)
		if g.cells[pos].IsHazard {
			continue
		}
		g.cells[pos].IsHazard = true
		placed++
	}

	return g, nil
}

// NewDefaultGrid - стандартное поле 5x5 с 5 бомбами
func NewDefaultGrid(rng Rand) *Grid {
	g, _ := NewGrid(GridSize, GridHazards, rng)
	return g
}

// Reveal открывает ячейку
func (g *Grid) Reveal(cell int) (RevealResult, error) {
	if g.status != GridStatusActive {
		return RevealResult{}, ErrRoundOver
	}
	if cell < 0 || cell >= len(g.cells) {
		return RevealResult{}, ErrCellOutOfRange
	}
	c := &g.cells[cell]
	if c.Revealed {
		return RevealResult{}, ErrCellRevealed
	}
	c.Revealed = true

	if c.IsHazard {
		// взрыв: накопленное сгорает вместе с множителем
		g.status = GridStatusExploded
		g.score = 0
		return RevealResult{Cell: cell, Hazard: true, Score: 0, Multiplier: g.Multiplier(), Over: true}, nil
	}

	awarded := GridBasePoints * g.multTenths / 10
	g.score += awarded
	g.multTenths += GridStepTenths
	g.safeOpened++

	// все безопасные открыты - авто кэшаут
	if g.safeOpened >= len(g.cells)-g.hazards {
		g.status = GridStatusCashedOut
	}

	return RevealResult{
		Cell:       cell,
		Awarded:    awarded,
		Score:      g.score,
		Multiplier: g.Multiplier(),
		Over:       g.status != GridStatusActive,
	}, nil
}

// CashOut забирает накопленные очки и завершает раунд
func (g *Grid) CashOut() (int, error) {
	if g.status != GridStatusActive {
		return 0, ErrRoundOver
	}
	if g.score == 0 {
		return 0, ErrNothingToCashOut
	}
	g.status = GridStatusCashedOut
	return g.score, nil
}

// Multiplier - текущий множитель (1.0, 1.2, 1.4 ...)
func (g *Grid) Multiplier() float64 { return float64(g.multTenths) / 10 }

// Score - очки раунда (0 после взрыва)
func (g *Grid) Score() int { return g.score }

func (g *Grid) Status() string { return g.status }

func (g *Grid) Over() bool { return g.status != GridStatusActive }

func (g *Grid) Size() int { return len(g.cells) }

// Hazards считает бомбы по ячейкам, а не по конфигу
func (g *Grid) Hazards() int {
	n := 0
	for _, c := range g.cells {
		if c.IsHazard {
			n++
		}
	}
	return n
}

// GridView - состояние поля для клиента, бомбы видны только после окончания раунда
type GridView struct {
	Size       int     `json:"size"`
	Revealed   []int   `json:"revealed"`
	Hazards    []int   `json:"hazards,omitempty"`
	Score      int     `json:"score"`
	Multiplier float64 `json:"multiplier"`
	Status     string  `json:"status"`
}

// View возвращает безопасное для клиента состояние
func (g *Grid) View() GridView {
	v := GridView{
		Size:       len(g.cells),
		Revealed:   []int{},
		Score:      g.score,
		Multiplier: g.Multiplier(),
		Status:     g.status,
	}
	for _, c := range g.cells {
		if c.Revealed {
			v.Revealed = append(v.Revealed, c.Index)
		}
		if g.status != GridStatusActive && c.IsHazard {
			v.Hazards = append(v.Hazards, c.Index)
		}
	}
	return v
}
