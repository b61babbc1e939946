package domain

import "time"

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Bio       string    `json:"bio"`
	Goal      string    `json:"goal,omitempty"`
	Level     int       `json:"level"`
	Points    int       `json:"points"`     // рейтинг в "Битве"
	FriendIDs []string  `json:"friend_ids"` // на кого подписан
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
}

// Friend - карточка друга в ростере соперников
type Friend struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Points   int    `json:"points"`
	IsOnline bool   `json:"is_online"`
}

// сколько после последнего запроса пользователь считается онлайн
const OnlineWindow = 5 * time.Minute

// IsOnline - был ли пользователь активен недавно
func (u *User) IsOnline(now time.Time) bool {
	return now.Sub(u.LastSeen) < OnlineWindow
}

// AsFriend - карточка пользователя для чужого ростера
func (u *User) AsFriend(now time.Time) Friend {
	return Friend{
		ID:       u.ID,
		Name:     u.Name,
		Avatar:   u.Avatar,
		Points:   u.Points,
		IsOnline: u.IsOnline(now),
	}
}

// HasFriend - подписан ли пользователь на id
func (u *User) HasFriend(id string) bool {
	for _, f := range u.FriendIDs {
		if f == id {
			return true
		}
	}
	return false
}

// стартовые значения нового профиля
const (
	DefaultBio   = "Novo membro do FITDEX!"
	StartPoints  = 0
	StartLevel   = 1
	MaxNameRunes = 32
)
