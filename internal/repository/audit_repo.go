package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"fitdex_battle/internal/domain"

	"github.com/google/uuid"
)

const auditPrefix = "audit:"

// отвечает за хранение логов аудита
type AuditRepository struct {
	kv KV
}

// создает новый репозиторий для логов аудита
func NewAuditRepository(kv KV) *AuditRepository {
	return &AuditRepository{kv: kv}
}

// ключ сортируется по времени: audit:<unix nano>:<id>
func auditKey(log *domain.AuditLog) string {
	return fmt.Sprintf("%s%020d:%s", auditPrefix, log.CreatedAt.UnixNano(), log.ID)
}

// создает новую запись в логе аудита
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	if log.Details == nil {
		log.Details = make(map[string]interface{})
	}
	return putJSON(ctx, r.kv, auditKey(log), log)
}

// возвращает логи аудита для пользователя
func (r *AuditRepository) GetByUserID(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	return r.scan(ctx, limit, func(l *domain.AuditLog) bool { return l.UserID == userID })
}

// возвращает логи аудита по категории
func (r *AuditRepository) GetByCategory(ctx context.Context, category string, limit int) ([]*domain.AuditLog, error) {
	return r.scan(ctx, limit, func(l *domain.AuditLog) bool { return l.Category == category })
}

// возвращает логи аудита по действию
func (r *AuditRepository) GetByAction(ctx context.Context, action string, limit int) ([]*domain.AuditLog, error) {
	return r.scan(ctx, limit, func(l *domain.AuditLog) bool { return l.Action == action })
}

// возвращает самые последние логи аудита
func (r *AuditRepository) GetRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	return r.scan(ctx, limit, func(*domain.AuditLog) bool { return true })
}

// обходит записи от новых к старым и отбирает подходящие
func (r *AuditRepository) scan(ctx context.Context, limit int, match func(*domain.AuditLog) bool) ([]*domain.AuditLog, error) {
	keys, err := r.kv.Keys(ctx, auditPrefix)
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	var logs []*domain.AuditLog
	for _, k := range keys {
		if limit > 0 && len(logs) >= limit {
			break
		}
		var log domain.AuditLog
		err := getJSON(ctx, r.kv, k, &log)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if log.Details == nil {
			log.Details = make(map[string]interface{})
		}
		if match(&log) {
			logs = append(logs, &log)
		}
	}
	return logs, nil
}

