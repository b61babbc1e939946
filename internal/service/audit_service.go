package service

import (
	"context"

	"fitdex_battle/internal/domain"
	"fitdex_battle/internal/logger"
	"fitdex_battle/internal/repository"
)

// обрабатывает логирование аудита
type AuditService struct {
	repo *repository.AuditRepository
}

// создает новый сервис аудита
func NewAuditService(repo *repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// создает новую запись в журнале аудита. Ошибка хранилища только логируется
func (s *AuditService) Log(ctx context.Context, userID, action, category string, details map[string]interface{}) {
	s.LogWithRequest(ctx, userID, action, category, "", "", details)
}

// создает запись аудита с информацией о запросе (ip, user-agent)
func (s *AuditService) LogWithRequest(ctx context.Context, userID, action, category, ip, userAgent string, details map[string]interface{}) {
	if s == nil {
		return
	}
	log := &domain.AuditLog{
		UserID:    userID,
		Action:    action,
		Category:  category,
		Details:   details,
		IP:        ip,
		UserAgent: userAgent,
	}

	if err := s.repo.Create(ctx, log); err != nil {
		logger.Error("не удалось создать запись аудита", "error", err, "action", action, "user_id", userID)
	}
}

// логирует вход пользователя
func (s *AuditService) LogLogin(ctx context.Context, userID, ip, userAgent string, created bool) {
	s.LogWithRequest(ctx, userID, domain.AuditActionLogin, domain.AuditCategoryAuth, ip, userAgent,
		map[string]interface{}{"created": created})
}

// логирует начало матча
func (s *AuditService) LogMatchStart(ctx context.Context, userID, sessionID, kind, opponentID string) {
	s.Log(ctx, userID, domain.AuditActionMatchStart, domain.AuditCategoryBattle, map[string]interface{}{
		"session_id":  sessionID,
		"kind":        kind,
		"opponent_id": opponentID,
	})
}

// логирует итог матча, сдача пишется отдельным действием
func (s *AuditService) LogMatchEnd(ctx context.Context, m *domain.MatchSummary) {
	action := domain.AuditActionMatchEnd
	if m.Surrendered {
		action = domain.AuditActionSurrender
	}
	s.Log(ctx, m.UserID, action, domain.AuditCategoryBattle, map[string]interface{}{
		"match_id":    m.ID,
		"kind":        m.Kind,
		"opponent_id": m.OpponentID,
		"outcome":     m.Outcome,
		"delta":       m.Delta,
		"human":       m.HumanTotal,
		"opponent":    m.OpponentTotal,
	})
}

// логирует уход с экрана битвы до конца матча
func (s *AuditService) LogMatchLeave(ctx context.Context, userID, sessionID, phase string) {
	s.Log(ctx, userID, domain.AuditActionMatchLeave, domain.AuditCategoryBattle, map[string]interface{}{
		"session_id": sessionID,
		"phase":      phase,
	})
}

// логирует результат тренировки
func (s *AuditService) LogPractice(ctx context.Context, p *domain.PracticeResult) {
	s.Log(ctx, p.UserID, domain.AuditActionPracticeEnd, domain.AuditCategoryPractice, map[string]interface{}{
		"status": p.Status,
		"points": p.Points,
	})
}

// логирует подписку на друга
func (s *AuditService) LogFollow(ctx context.Context, userID, friendID string) {
	s.Log(ctx, userID, domain.AuditActionFollow, domain.AuditCategorySocial, map[string]interface{}{
		"friend_id": friendID,
	})
}

// возвращает записи аудита для пользователя
func (s *AuditService) GetUserAuditLogs(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	return s.repo.GetByUserID(ctx, userID, limit)
}

// возвращает последние записи аудита
func (s *AuditService) GetRecentLogs(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	return s.repo.GetRecent(ctx, limit)
}

// возвращает записи аудита по категории
func (s *AuditService) GetLogsByCategory(ctx context.Context, category string, limit int) ([]*domain.AuditLog, error) {
	return s.repo.GetByCategory(ctx, category, limit)
}
