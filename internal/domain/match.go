package domain

import "time"

// MatchSummary - итог сыгранного матча для истории профиля
type MatchSummary struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	Kind          string         `json:"kind"`
	Difficulty    string         `json:"difficulty,omitempty"`
	OpponentID    string         `json:"opponent_id"`
	OpponentName  string         `json:"opponent_name"`
	HumanTotal    int            `json:"human_total"`
	OpponentTotal int            `json:"opponent_total"`
	Outcome       string         `json:"outcome"`
	Delta         int            `json:"delta"`
	Surrendered   bool           `json:"surrendered"`
	Rounds        []RoundSummary `json:"rounds"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
}

type RoundSummary struct {
	Round    int    `json:"round"`
	Human    int    `json:"human"`
	Opponent int    `json:"opponent"`
	Outcome  string `json:"outcome"`
}

// PracticeResult - итог тренировочной партии в крестики-нолики
type PracticeResult struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	Points     int       `json:"points"`
	FinishedAt time.Time `json:"finished_at"`
}

// LeaderboardEntry - строка рейтинга
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Points int    `json:"points"`
	Level  int    `json:"level"`
	Arena  string `json:"arena"`
}
