package service

import (
	"context"
	"errors"
	"sync"

	"fitdex_battle/internal/domain"
	"fitdex_battle/internal/game"
	"fitdex_battle/internal/logger"
	"fitdex_battle/internal/metrics"
	"fitdex_battle/internal/repository"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var ErrNoPractice = errors.New("нет активной тренировки")

// PracticeState - партия и итог для клиента
type PracticeState struct {
	ID      string          `json:"id"`
	Game    *game.TicTacToe `json:"game"`
	Awarded int             `json:"awarded"`
}

// управляет тренировочными партиями в крестики-нолики
type PracticeService struct {
	ranking *RankingService
	history *repository.HistoryRepository
	audit   *AuditService
	metrics *metrics.Metrics
	clock   clockwork.Clock
	newRand func() game.Rand

	games map[string]*PracticeState // userID -> партия
	mu    sync.Mutex
}

func NewPracticeService(ranking *RankingService, history *repository.HistoryRepository, audit *AuditService, m *metrics.Metrics, clock clockwork.Clock) *PracticeService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PracticeService{
		ranking: ranking,
		history: history,
		audit:   audit,
		metrics: m,
		clock:   clock,
		newRand: game.SecureRand,
		games:   make(map[string]*PracticeState),
	}
}

// Start начинает новую партию, старая отбрасывается
func (s *PracticeService) Start(userID string) *PracticeState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &PracticeState{ID: uuid.NewString(), Game: game.NewTicTacToe(s.newRand())}
	s.games[userID] = st
	return st
}

// Get возвращает текущую партию
func (s *PracticeService) Get(userID string) (*PracticeState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.games[userID]
	if !ok {
		return nil, ErrNoPractice
	}
	return st, nil
}

// Move - ход игрока. По концу партии очки начисляются один раз
func (s *PracticeService) Move(ctx context.Context, userID string, cell int) (*PracticeState, error) {
	s.mu.Lock()
	st, ok := s.games[userID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNoPractice
	}
	if err := st.Game.Move(cell); err != nil {
		s.mu.Unlock()
		return st, err
	}
	finished := st.Game.Status != game.TTTStatusPlaying
	if finished {
		st.Awarded = st.Game.Points()
		delete(s.games, userID)
	}
	s.mu.Unlock()

	if finished {
		s.settle(ctx, userID, st)
	}
	return st, nil
}

func (s *PracticeService) settle(ctx context.Context, userID string, st *PracticeState) {
	res := &domain.PracticeResult{
		ID:         st.ID,
		UserID:     userID,
		Status:     st.Game.Status,
		Points:     st.Awarded,
		FinishedAt: s.clock.Now().UTC(),
	}

	if res.Points != 0 {
		if _, err := s.ranking.Apply(ctx, userID, res.Points); err != nil {
			logger.Error("practice points not applied", "error", err, "user_id", userID)
		}
	}
	if err := s.history.AddPractice(ctx, res); err != nil {
		logger.Error("practice history not saved", "error", err, "user_id", userID)
	}
	s.audit.LogPractice(ctx, res)
	if s.metrics != nil {
		s.metrics.PracticeGames.WithLabelValues(res.Status).Inc()
	}
	logger.Info("practice finished", "user_id", userID, "status", res.Status, "points", res.Points)
}
