package handlers

import (
	"net/http"

	"fitdex_battle/internal/game"

	"github.com/gin-gonic/gin"
)

type startBattleRequest struct {
	Kind       game.Kind `json:"kind" binding:"required"`
	Difficulty string    `json:"difficulty"`
	OpponentID string    `json:"opponent_id"` // пусто - случайный соперник
}

// StartBattle - поиск соперника и старт матча
func (h *Handler) StartBattle(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req startBattleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind обязателен"})
		return
	}

	difficulty := game.ParseDifficulty(req.Difficulty)
	snap, err := h.Battle.Start(c.Request.Context(), userID, req.Kind, difficulty, req.OpponentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetBattle - текущее состояние битвы
func (h *Handler) GetBattle(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	snap, err := h.Battle.Snapshot(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// LeaveBattle - уход с экрана битвы: таймеры снимаются, рейтинг не меняется
func (h *Handler) LeaveBattle(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	h.Battle.Leave(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Reveal - открыть клетку в "Сапёре"
func (h *Handler) Reveal(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req struct {
		Cell *int `json:"cell" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cell обязателен"})
		return
	}

	res, err := h.Battle.Reveal(userID, *req.Cell)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CashOut - забрать очки раунда в "Сапёре"
func (h *Handler) CashOut(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	banked, err := h.Battle.CashOut(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"banked": banked})
}

// Tap - нажатие на мишень в "Рефлексе"
func (h *Handler) Tap(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req struct {
		TargetID *int `json:"target_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_id обязателен"})
		return
	}

	res, err := h.Battle.Tap(userID, *req.TargetID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Surrender - сдаться во время раунда
func (h *Handler) Surrender(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	if err := h.Battle.Surrender(userID); err != nil {
		respondError(c, err)
		return
	}
	snap, err := h.Battle.Snapshot(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// ExitBattle - выход с экрана итогов
func (h *Handler) ExitBattle(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	if err := h.Battle.Exit(userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Roster - друзья, которых можно вызвать на битву
func (h *Handler) Roster(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	roster, err := h.Battle.Roster(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roster": roster, "bot": game.FitBot})
}

// Leaderboard - общий рейтинг или рейтинг среди друзей (?scope=friends)
func (h *Handler) Leaderboard(c *gin.Context) {
	ctx := c.Request.Context()

	if c.Query("scope") == "friends" {
		userID, ok := getUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		list, err := h.Ranking.Friends(ctx, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"leaderboard": list, "scope": "friends", "arenas": game.Arenas})
		return
	}

	list, err := h.Ranking.Top(ctx, queryInt(c, "limit", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": list, "scope": "global", "arenas": game.Arenas})
}
