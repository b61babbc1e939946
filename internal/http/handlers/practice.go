package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StartPractice - новая партия в крестики-нолики
func (h *Handler) StartPractice(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, h.Practice.Start(userID))
}

// GetPractice - текущая партия
func (h *Handler) GetPractice(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	st, err := h.Practice.Get(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// PracticeMove - ход игрока, CPU отвечает сразу
func (h *Handler) PracticeMove(c *gin.Context) {
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

	st, err := h.Practice.Move(c.Request.Context(), userID, *req.Cell)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
