package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Name     string `json:"name"`
	InitData string `json:"init_data"` // вход из Telegram WebApp
}

// Login - вход по имени или через Telegram init_data
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ctx := c.Request.Context()
	ip, ua := c.ClientIP(), c.Request.UserAgent()

	if req.InitData != "" {
		res, err := h.Auth.LoginTelegram(ctx, req.InitData, ip, ua)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
		return
	}

	res, err := h.Auth.Login(ctx, req.Name, ip, ua)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
