package game

import "errors"

// крестики-нолики против CPU - тренировочная игра вне рейтинговых матчей
// игрок всегда "halter", CPU - "weight"

type Mark string

const (
	MarkEmpty  Mark = ""
	MarkHalter Mark = "halter"
	MarkWeight Mark = "weight"
)

const (
	TTTStatusPlaying = "playing"
	TTTStatusWon     = "won"
	TTTStatusLost    = "lost"
	TTTStatusDraw    = "draw"

	TTTWinPoints  = 15
	TTTDrawPoints = 5
)

var (
	ErrTTTFinished = errors.New("игра уже завершена")
	ErrTTTOccupied = errors.New("клетка занята")
	ErrTTTRange    = errors.New("клетка вне поля")
)

var tttLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

type TicTacToe struct {
	Board       [9]Mark `json:"board"`
	Status      string  `json:"status"`
	WinningLine []int   `json:"winning_line,omitempty"`
	rng         Rand
}

func NewTicTacToe(rng Rand) *TicTacToe {
	return &TicTacToe{Status: TTTStatusPlaying, rng: rng}
}

// Move - ход игрока, после него сразу отвечает CPU
func (g *TicTacToe) Move(cell int) error {
	if g.Status != TTTStatusPlaying {
		return ErrTTTFinished
	}
	if cell < 0 || cell >= len(g.Board) {
		return ErrTTTRange
	}
	if g.Board[cell] != MarkEmpty {
		return ErrTTTOccupied
	}

	g.Board[cell] = MarkHalter
	if g.settle() {
		return nil
	}

	g.Board[g.cpuMove()] = MarkWeight
	g.settle()
	return nil
}

// Points - сколько очков рейтинга дает результат
func (g *TicTacToe) Points() int {
	switch g.Status {
	case TTTStatusWon:
		return TTTWinPoints
	case TTTStatusDraw:
		return TTTDrawPoints
	default:
		return 0
	}
}

// CPU: 1) выиграть если можно 2) заблокировать игрока 3) случайная клетка
func (g *TicTacToe) cpuMove() int {
	empty := g.empty()
	for _, mark := range []Mark{MarkWeight, MarkHalter} {
		for _, idx := range empty {
			test := g.Board
			test[idx] = mark
			if w, _ := winner(test); w == mark {
				return idx
			}
		}
	}
	return empty[g.rng.Intn(len(empty))]
}

func (g *TicTacToe) settle() bool {
	w, line := winner(g.Board)
	switch {
	case w == MarkHalter:
		g.Status = TTTStatusWon
	case w == MarkWeight:
		g.Status = TTTStatusLost
	case len(g.empty()) == 0:
		g.Status = TTTStatusDraw
	default:
		return false
	}
	if line != nil {
		g.WinningLine = line
	}
	return true
}

func (g *TicTacToe) empty() []int {
	var out []int
	for i, m := range g.Board {
		if m == MarkEmpty {
			out = append(out, i)
		}
	}
	return out
}

func winner(board [9]Mark) (Mark, []int) {
	for _, l := range tttLines {
		a, b, c := l[0], l[1], l[2]
		if board[a] != MarkEmpty && board[a] == board[b] && board[a] == board[c] {
			return board[a], []int{a, b, c}
		}
	}
	return MarkEmpty, nil
}
