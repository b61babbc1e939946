package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"fitdex_battle/internal/domain"
	"fitdex_battle/internal/game"

	"github.com/gin-gonic/gin"
)

// profileResponse - профиль с вычисляемыми полями
type profileResponse struct {
	*domain.User
	Arena       game.Arena `json:"arena"`
	LevelPoints int        `json:"level_points"` // прогресс внутри уровня
}

func newProfile(u *domain.User) profileResponse {
	progress := u.Points % 1000
	if progress < 0 {
		progress = 0
	}
	return profileResponse{User: u, Arena: game.ArenaFor(u.Points), LevelPoints: progress}
}

// Текущий профиль пользователя
func (h *Handler) MyProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	u, err := h.Users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProfile(u))
}

type updateProfileRequest struct {
	Bio    *string `json:"bio"`
	Goal   *string `json:"goal"`
	Avatar *string `json:"avatar"`
}

const maxBioRunes = 160

// Редактирование био, цели и аватара
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	for _, s := range []*string{req.Bio, req.Goal} {
		if s != nil && utf8.RuneCountInString(*s) > maxBioRunes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "слишком длинный текст"})
			return
		}
	}
	if req.Avatar != nil && *req.Avatar != "" && !strings.HasPrefix(*req.Avatar, "https://") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "аватар должен быть https ссылкой"})
		return
	}

	u, err := h.Users.Update(c.Request.Context(), userID, func(u *domain.User) error {
		if req.Bio != nil {
			u.Bio = strings.TrimSpace(*req.Bio)
		}
		if req.Goal != nil {
			u.Goal = strings.TrimSpace(*req.Goal)
		}
		if req.Avatar != nil && *req.Avatar != "" {
			u.Avatar = *req.Avatar
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProfile(u))
}

// Получение чужого профиля по id
func (h *Handler) Profile(c *gin.Context) {
	u, err := h.Users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProfile(u))
}

// Сообщество: все пользователи, чтобы было на кого подписаться
func (h *Handler) ListUsers(c *gin.Context) {
	userID, _ := getUserID(c)
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]domain.Friend, 0, len(users))
	for _, u := range users {
		if u.ID == userID {
			continue
		}
		out = append(out, u.AsFriend(h.now()))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

// Друзья текущего пользователя
func (h *Handler) Friends(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	friends, err := h.Users.Friends(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// Подписка на друга
func (h *Handler) AddFriend(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req struct {
		FriendID string `json:"friend_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "friend_id обязателен"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.Users.AddFriend(ctx, userID, req.FriendID); err != nil {
		respondError(c, err)
		return
	}
	h.Audit.LogFollow(ctx, userID, req.FriendID)

	friends, err := h.Users.Friends(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// История матчей и тренировок
func (h *Handler) MatchHistory(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	ctx := c.Request.Context()
	matches, err := h.History.Matches(ctx, userID, queryInt(c, "limit", 20))
	if err != nil {
		respondError(c, err)
		return
	}
	practice, err := h.History.Practices(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches, "practice": practice})
}
