package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const leaderboardKey = "leaderboard:points"

// Score - строка сортированного множества рейтинга
type Score struct {
	UserID string
	Points int
}

// рейтинг по очкам в sorted set Redis
type LeaderboardRepository struct {
	rdb *redis.Client
}

func NewLeaderboardRepository(rdb *redis.Client) *LeaderboardRepository {
	return &LeaderboardRepository{rdb: rdb}
}

// Set записывает текущие очки пользователя
func (r *LeaderboardRepository) Set(ctx context.Context, userID string, points int) error {
	return r.rdb.ZAdd(ctx, leaderboardKey, redis.Z{Score: float64(points), Member: userID}).Err()
}

// Top возвращает первые limit мест по убыванию очков
func (r *LeaderboardRepository) Top(ctx context.Context, limit int) ([]Score, error) {
	zs, err := r.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	out := make([]Score, 0, len(zs))
	for _, z := range zs {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		out = append(out, Score{UserID: id, Points: int(z.Score)})
	}
	return out, nil
}

// Rank - место пользователя начиная с 1, ErrNotFound если его нет в рейтинге
func (r *LeaderboardRepository) Rank(ctx context.Context, userID string) (int, error) {
	rank, err := r.rdb.ZRevRank(ctx, leaderboardKey, userID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return int(rank) + 1, nil
}
