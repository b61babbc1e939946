package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"fitdex_battle/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
	updates chan tgbotapi.Update
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 8)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

type staticRanking []domain.LeaderboardEntry

func (r staticRanking) Top(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if len(r) > limit {
		return r[:limit], nil
	}
	return r, nil
}

type staticAudit []*domain.AuditLog

func (a staticAudit) GetLogsByCategory(context.Context, string, int) ([]*domain.AuditLog, error) {
	return a, nil
}

func command(chatID int64, text string) tgbotapi.Update {
	cmdLen := len(text)
	for i, r := range text {
		if r == ' ' {
			cmdLen = i
			break
		}
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: chatID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}}
}

func TestFormatResult(t *testing.T) {
	u := &domain.User{Name: "Ana <3", Points: 125}
	m := &domain.MatchSummary{
		Kind: "grid_sweep", OpponentName: "FitBot 3000", Outcome: "human_win",
		HumanTotal: 46, OpponentTotal: 45, Delta: 25,
		Rounds: []domain.RoundSummary{{Round: 1, Human: 36, Opponent: 0}},
	}

	text := FormatResult(u, m)
	assert.Contains(t, text, "Победа")
	assert.Contains(t, text, "Ana &lt;3")
	assert.Contains(t, text, "46:45")
	assert.Contains(t, text, "раунд 1: 36:0")
	assert.Contains(t, text, "+25 → 125")

	m.Surrendered = true
	m.Delta = -20
	assert.Contains(t, FormatResult(u, m), "Сдался")
}

func TestResultsBot_NotifiesAndAnswersCommands(t *testing.T) {
	api := newFakeAPI()
	ranking := staticRanking{
		{Rank: 1, Name: "Beto", Points: 400, Arena: "Arena Prata"},
		{Rank: 2, Name: "Ana", Points: 25, Arena: "Arena Bronze"},
	}
	audit := staticAudit{{
		Action: domain.AuditActionMatchEnd, CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Details: map[string]interface{}{"kind": "reflex", "outcome": "tie", "delta": -10},
	}}
	b := New(api, 42, ranking, audit)

	done := make(chan struct{})
	go func() {
		b.Start()
		close(done)
	}()

	b.NotifyMatchResult(&domain.User{Name: "Ana"}, &domain.MatchSummary{ID: "m1", Outcome: "tie"})
	api.updates <- command(42, "/top 1")
	api.updates <- command(42, "/recent")
	api.updates <- command(7, "/top") // чужой чат

	require.Eventually(t, func() bool { return len(api.messages()) == 3 }, 2*time.Second, 10*time.Millisecond)

	b.Stop()
	<-done

	var texts []string
	for _, m := range api.messages() {
		assert.Equal(t, int64(42), m.ChatID)
		assert.Equal(t, "HTML", m.ParseMode)
		texts = append(texts, m.Text)
	}
	joined := texts[0] + texts[1] + texts[2]
	assert.Contains(t, joined, "Ничья")
	assert.Contains(t, joined, "1. Beto: 400 pts")
	assert.NotContains(t, joined, "2. Ana")
	assert.Contains(t, joined, "reflex: tie (-10)")
}
