package game

import "time"

// Kind - тип мини-игры в режиме "Битва"
type Kind string

const (
	KindGridSweep Kind = "grid_sweep"
	KindReflex    Kind = "reflex"
)

// Valid проверяет известен ли тип игры
func (k Kind) Valid() bool {
	return k == KindGridSweep || k == KindReflex
}

// Side - сторона, которая сейчас ходит
type Side int

const (
	SideHuman Side = iota
	SideOpponent
)

func (s Side) String() string {
	if s == SideOpponent {
		return "opponent"
	}
	return "human"
}

// MarshalText нужен чтобы Side нормально ехал в JSON событий
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Difficulty влияет только на симуляцию соперника в Reflex
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// HitChance - вероятность что бот попадет по мишени
func (d Difficulty) HitChance() float64 {
	switch d {
	case DifficultyEasy:
		return 0.6
	case DifficultyHard:
		return 0.95
	default:
		return 0.8
	}
}

// ParseDifficulty приводит строку к сложности, по умолчанию medium
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyHard:
		return Difficulty(s)
	default:
		return DifficultyMedium
	}
}

// Opponent - справочные данные соперника, во время матча не меняются
type Opponent struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	Rating    int    `json:"rating"`
	Online    bool   `json:"online"`
	Simulated bool   `json:"simulated"` // true если за соперником нет реального аккаунта
}

// FitBot - запасной соперник, когда в ростере никого нет
var FitBot = Opponent{
	ID:        "bot_1",
	Name:      "FitBot 3000",
	Avatar:    "https://api.dicebear.com/7.x/bottts/svg?seed=FitBot",
	Rating:    9999,
	Online:    true,
	Simulated: true,
}

// TurnContext - все что нужно симулятору чтобы сыграть за соперника
type TurnContext struct {
	Kind       Kind
	Round      int
	Now        time.Time
	HumanScore int         // grid: очки человека в этом раунде
	Difficulty Difficulty  // reflex
	Turn       *ReflexTurn // reflex: текущий ход соперника
}
