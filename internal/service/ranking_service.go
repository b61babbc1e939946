package service

import (
	"context"
	"sort"

	"fitdex_battle/internal/domain"
	"fitdex_battle/internal/game"
	"fitdex_battle/internal/logger"
	"fitdex_battle/internal/repository"
)

// DefaultTopLimit - сколько строк отдает рейтинг по умолчанию
const DefaultTopLimit = 50

// Leaderboard - быстрый индекс рейтинга (Redis ZSET)
type Leaderboard interface {
	Set(ctx context.Context, userID string, points int) error
	Top(ctx context.Context, limit int) ([]repository.Score, error)
}

// рейтинг игроков и начисление очков
type RankingService struct {
	users *repository.UserRepository
	board Leaderboard // nil - рейтинг считается обходом профилей
}

func NewRankingService(users *repository.UserRepository, board Leaderboard) *RankingService {
	return &RankingService{users: users, board: board}
}

// Apply меняет очки пользователя и обновляет индекс рейтинга
func (s *RankingService) Apply(ctx context.Context, userID string, delta int) (*domain.User, error) {
	u, err := s.users.AddPoints(ctx, userID, delta)
	if err != nil {
		return nil, err
	}
	if s.board != nil {
		if err := s.board.Set(ctx, u.ID, u.Points); err != nil {
			logger.Warn("leaderboard update failed", "error", err, "user_id", u.ID)
		}
	}
	return u, nil
}

// Sync заливает все профили в индекс рейтинга (при старте)
func (s *RankingService) Sync(ctx context.Context) error {
	if s.board == nil {
		return nil
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if err := s.board.Set(ctx, u.ID, u.Points); err != nil {
			return err
		}
	}
	return nil
}

// Top - первые limit игроков по очкам
func (s *RankingService) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = DefaultTopLimit
	}

	if s.board != nil {
		entries, err := s.topFromBoard(ctx, limit)
		if err == nil {
			return entries, nil
		}
		logger.Warn("leaderboard read failed, falling back to scan", "error", err)
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	sortUsers(users)
	if len(users) > limit {
		users = users[:limit]
	}
	return entries(users), nil
}

func (s *RankingService) topFromBoard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	scores, err := s.board.Top(ctx, limit)
	if err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(scores))
	for _, sc := range scores {
		u, err := s.users.GetByID(ctx, sc.UserID)
		if err != nil {
			continue
		}
		users = append(users, u)
	}
	return entries(users), nil
}

// Friends - рейтинг среди друзей, включая самого пользователя
func (s *RankingService) Friends(ctx context.Context, userID string) ([]domain.LeaderboardEntry, error) {
	me, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	users := []*domain.User{me}
	for _, id := range me.FriendIDs {
		f, err := s.users.GetByID(ctx, id)
		if err != nil {
			continue
		}
		users = append(users, f)
	}
	sortUsers(users)
	return entries(users), nil
}

// по очкам, при равенстве по имени
func sortUsers(users []*domain.User) {
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].Points != users[j].Points {
			return users[i].Points > users[j].Points
		}
		return users[i].Name < users[j].Name
	})
}

func entries(users []*domain.User) []domain.LeaderboardEntry {
	out := make([]domain.LeaderboardEntry, 0, len(users))
	for i, u := range users {
		out = append(out, domain.LeaderboardEntry{
			Rank:   i + 1,
			UserID: u.ID,
			Name:   u.Name,
			Avatar: u.Avatar,
			Points: u.Points,
			Level:  u.Level,
			Arena:  game.ArenaFor(u.Points).Name,
		})
	}
	return out
}
