package battle

import (
	"errors"

	"fitdex_battle/internal/game"
)

// действия не в свою фазу или по уже закрытому объекту игнорируются без ошибки
var ignoredErrors = []error{
	ErrWrongPhase,
	ErrWrongGame,
	game.ErrRoundOver,
	game.ErrCellRevealed,
	game.ErrNothingToCashOut,
	game.ErrTurnOver,
	game.ErrNotYourTurn,
	game.ErrTargetUnknown,
	game.ErrTargetHit,
	game.ErrTTTFinished,
	game.ErrTTTOccupied,
}

// Ignored - ошибка из тех, что клиенту отдаются как тихий отказ, а не как сбой
func Ignored(err error) bool {
	for _, target := range ignoredErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
