package repository

import (
	"context"
	"errors"

	"fitdex_battle/internal/domain"
)

// сколько последних матчей хранится в истории профиля
const HistoryLimit = 50

// хранит историю матчей и тренировок, новые записи в начале
type HistoryRepository struct {
	kv KV
}

func NewHistoryRepository(kv KV) *HistoryRepository {
	return &HistoryRepository{kv: kv}
}

func historyKey(userID string) string  { return "history:" + userID }
func practiceKey(userID string) string { return "practice:" + userID }

func (r *HistoryRepository) AddMatch(ctx context.Context, m *domain.MatchSummary) error {
	var list []domain.MatchSummary
	if err := getJSON(ctx, r.kv, historyKey(m.UserID), &list); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	list = append([]domain.MatchSummary{*m}, list...)
	if len(list) > HistoryLimit {
		list = list[:HistoryLimit]
	}
	return putJSON(ctx, r.kv, historyKey(m.UserID), list)
}

func (r *HistoryRepository) Matches(ctx context.Context, userID string, limit int) ([]domain.MatchSummary, error) {
	var list []domain.MatchSummary
	err := getJSON(ctx, r.kv, historyKey(userID), &list)
	if errors.Is(err, ErrNotFound) {
		return []domain.MatchSummary{}, nil
	}
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *HistoryRepository) AddPractice(ctx context.Context, p *domain.PracticeResult) error {
	var list []domain.PracticeResult
	if err := getJSON(ctx, r.kv, practiceKey(p.UserID), &list); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	list = append([]domain.PracticeResult{*p}, list...)
	if len(list) > HistoryLimit {
		list = list[:HistoryLimit]
	}
	return putJSON(ctx, r.kv, practiceKey(p.UserID), list)
}

func (r *HistoryRepository) Practices(ctx context.Context, userID string) ([]domain.PracticeResult, error) {
	var list []domain.PracticeResult
	err := getJSON(ctx, r.kv, practiceKey(userID), &list)
	if errors.Is(err, ErrNotFound) {
		return []domain.PracticeResult{}, nil
	}
	return list, err
}
