package domain

import "time"

// Логирование мастхев важных действий
type AuditLog struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Action    string                 `json:"action"`
	Category  string                 `json:"category"`
	Details   map[string]interface{} `json:"details"`
	IP        string                 `json:"ip,omitempty"`
	UserAgent string                 `json:"user_agent,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Категории совершенных действий
const (
	AuditCategoryAuth     = "auth"
	AuditCategoryBattle   = "battle"
	AuditCategoryPractice = "practice"
	AuditCategorySocial   = "social"
)

const (
	// Авторизация
	AuditActionLogin = "login"

	// Битва
	AuditActionMatchStart = "match_start"
	AuditActionMatchEnd   = "match_end"
	AuditActionSurrender  = "surrender"
	AuditActionMatchLeave = "match_leave"

	// Тренировка
	AuditActionPracticeEnd = "practice_end"

	// Друзья
	AuditActionFollow = "follow"
)
