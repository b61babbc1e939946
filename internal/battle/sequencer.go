package battle

import (
	"time"

	"fitdex_battle/internal/game"
)

// TurnOrder - кто ходит первым и вторым в раунде.
// В "Рефлексе" первый ход чередуется, чтобы ни у кого не было преимущества
// на дистанции из трех раундов. В "Сапёре" человек играет свое поле,
// затем генерируется результат соперника
func TurnOrder(kind game.Kind, round int) [2]game.Side {
	if kind == game.KindReflex && round%2 == 0 {
		return [2]game.Side{game.SideOpponent, game.SideHuman}
	}
	return [2]game.Side{game.SideHuman, game.SideOpponent}
}

// FirstActors - последовательность первых ходов за весь матч
func FirstActors(kind game.Kind, rounds int) []game.Side {
	out := make([]game.Side, 0, rounds)
	for r := 1; r <= rounds; r++ {
		out = append(out, TurnOrder(kind, r)[0])
	}
	return out
}

// Outcome - итог раунда или матча
type Outcome string

const (
	OutcomeHumanWin    Outcome = "human_win"
	OutcomeOpponentWin Outcome = "opponent_win"
	OutcomeTie         Outcome = "tie"
)

// Compare определяет итог по очкам сторон
func Compare(human, opponent int) Outcome {
	switch {
	case human > opponent:
		return OutcomeHumanWin
	case opponent > human:
		return OutcomeOpponentWin
	default:
		return OutcomeTie
	}
}

// RoundRecord - неизменяемая запись о сыгранном раунде
type RoundRecord struct {
	Round         int       `json:"round"`
	HumanScore    int       `json:"human_score"`
	OpponentScore int       `json:"opponent_score"`
	Outcome       Outcome   `json:"outcome"`
	FinishedAt    time.Time `json:"finished_at"`
}

// NewRoundRecord создает запись, итог считается из очков
func NewRoundRecord(round, human, opponent int, at time.Time) RoundRecord {
	return RoundRecord{
		Round:         round,
		HumanScore:    human,
		OpponentScore: opponent,
		Outcome:       Compare(human, opponent),
		FinishedAt:    at,
	}
}
