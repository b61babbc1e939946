package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"fitdex_battle/internal/battle"
	"fitdex_battle/internal/game"
	"fitdex_battle/internal/http/middleware"
	"fitdex_battle/internal/repository"
	"fitdex_battle/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
)

// Handler - HTTP обработчики поверх сервисов
type Handler struct {
	Auth     *service.AuthService
	Users    *repository.UserRepository
	History  *repository.HistoryRepository
	Ranking  *service.RankingService
	Battle   *service.BattleService
	Practice *service.PracticeService
	Audit    *service.AuditService
	Clock    clockwork.Clock
	Version  string
}

func (h *Handler) now() time.Time {
	if h.Clock == nil {
		return time.Now()
	}
	return h.Clock.Now()
}

// queryInt читает целый query-параметр, def при отсутствии или ошибке
func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

func getUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// statusFor переводит доменную ошибку в HTTP статус
func statusFor(err error) int {
	switch {
	case errors.Is(err, battle.ErrUnknownKind),
		errors.Is(err, game.ErrCellOutOfRange),
		errors.Is(err, game.ErrTTTRange),
		errors.Is(err, service.ErrUnknownOpponent),
		errors.Is(err, repository.ErrInvalidName),
		errors.Is(err, repository.ErrSelfFollow):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrAlreadyFriend):
		return http.StatusConflict
	case errors.Is(err, service.ErrNoSession),
		errors.Is(err, service.ErrNoPractice),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrInvalidInitData):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrTelegramOff):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError отвечает по ошибке сервиса. Игнорируемые - 200 с ignored=true
func respondError(c *gin.Context, err error) {
	if battle.Ignored(err) {
		c.JSON(http.StatusOK, gin.H{"ignored": true, "reason": err.Error()})
		return
	}
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.Error(err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// Healthz - проверка живости
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "version": h.Version, "sessions": h.Battle.Active()})
}
