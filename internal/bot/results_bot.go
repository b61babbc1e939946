package bot

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"fitdex_battle/internal/domain"
	"fitdex_battle/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API - часть tgbotapi.BotAPI, которой пользуется бот
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Ranking отдает рейтинг для команды /top
type Ranking interface {
	Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// AuditLogs отдает последние матчи для команды /recent
type AuditLogs interface {
	GetLogsByCategory(ctx context.Context, category string, limit int) ([]*domain.AuditLog, error)
}

// размер очереди уведомлений, при переполнении новые отбрасываются
const notifyQueue = 64

// ResultsBot публикует итоги матчей в чат и отвечает на команды оттуда
type ResultsBot struct {
	api     API
	chatID  int64
	ranking Ranking
	audit   AuditLogs

	queue  chan string
	stopCh chan struct{}
	wg     sync.WaitGroup
	log    *slog.Logger
}

// NewResultsBot авторизуется в Telegram по токену
func NewResultsBot(token string, chatID int64, ranking Ranking, audit AuditLogs) (*ResultsBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	b := New(api, chatID, ranking, audit)
	b.log.Info("results bot authorized", "username", api.Self.UserName)
	return b, nil
}

// New собирает бота поверх готового клиента
func New(api API, chatID int64, ranking Ranking, audit AuditLogs) *ResultsBot {
	return &ResultsBot{
		api:     api,
		chatID:  chatID,
		ranking: ranking,
		audit:   audit,
		queue:   make(chan string, notifyQueue),
		stopCh:  make(chan struct{}),
		log:     logger.With("component", "results_bot"),
	}
}

// Start запускает отправку уведомлений и прослушивание команд. Блокируется
func (b *ResultsBot) Start() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.sendLoop()
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			// команды принимаются только из чата результатов
			if update.Message == nil || update.Message.Chat == nil || update.Message.Chat.ID != b.chatID {
				continue
			}
			if !update.Message.IsCommand() {
				continue
			}

			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleCommand(msg)
			}(update.Message)
		}
	}
}

// Stop плавно останавливает бота
func (b *ResultsBot) Stop() {
	b.log.Info("stopping results bot...")
	close(b.stopCh)
	b.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("results bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("results bot shutdown timeout, some handlers may not have completed")
	}
}

// NotifyMatchResult ставит итог матча в очередь на отправку, не блокируется
func (b *ResultsBot) NotifyMatchResult(user *domain.User, m *domain.MatchSummary) {
	text := FormatResult(user, m)
	select {
	case b.queue <- text:
	default:
		b.log.Warn("notify queue full, result dropped", "match_id", m.ID)
	}
}

func (b *ResultsBot) sendLoop() {
	for {
		select {
		case <-b.stopCh:
			return
		case text := <-b.queue:
			b.send(text)
		}
	}
}

func (b *ResultsBot) send(text string) {
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = "HTML"
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("failed to send message", "error", err)
	}
}

func (b *ResultsBot) handleCommand(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var response string
	switch msg.Command() {
	case "start", "help":
		response = helpMessage
	case "top":
		response = b.handleTop(ctx, msg.CommandArguments())
	case "recent":
		response = b.handleRecent(ctx)
	default:
		response = "Неизвестная команда. /help"
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, response)
	reply.ParseMode = "HTML"
	if _, err := b.api.Send(reply); err != nil {
		b.log.Error("failed to send reply", "error", err, "command", msg.Command())
	}
}

const helpMessage = `<b>🏆 FITDEX Битва</b>

/top [лимит] - Топ игроков по очкам
/recent - Последние матчи`

func (b *ResultsBot) handleTop(ctx context.Context, args string) string {
	limit := 10
	if args != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(args)); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	entries, err := b.ranking.Top(ctx, limit)
	if err != nil {
		return fmt.Sprintf("Ошибка: %v", err)
	}
	if len(entries) == 0 {
		return "Игроки не найдены"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>Топ %d по очкам</b>\n\n", limit))
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%d. %s: %d pts (%s)\n", e.Rank, html.EscapeString(e.Name), e.Points, e.Arena))
	}
	return sb.String()
}

func (b *ResultsBot) handleRecent(ctx context.Context) string {
	logs, err := b.audit.GetLogsByCategory(ctx, domain.AuditCategoryBattle, 10)
	if err != nil {
		return fmt.Sprintf("Ошибка: %v", err)
	}

	var sb strings.Builder
	sb.WriteString("<b>Последние матчи</b>\n\n")
	n := 0
	for _, l := range logs {
		if l.Action != domain.AuditActionMatchEnd && l.Action != domain.AuditActionSurrender {
			continue
		}
		n++
		sb.WriteString(fmt.Sprintf("%s %v: %v (%v)\n",
			l.CreatedAt.Format("02.01 15:04"), l.Details["kind"], l.Details["outcome"], l.Details["delta"]))
	}
	if n == 0 {
		return "Матчей пока нет"
	}
	return sb.String()
}

// FormatResult - текст уведомления об итоге матча
func FormatResult(user *domain.User, m *domain.MatchSummary) string {
	title := "🤝 Ничья"
	switch {
	case m.Surrendered:
		title = "🏳️ Сдался"
	case m.Outcome == "human_win":
		title = "🏆 Победа"
	case m.Outcome == "opponent_win":
		title = "💀 Поражение"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>%s</b>: %s vs %s\n", title, html.EscapeString(user.Name), html.EscapeString(m.OpponentName)))
	sb.WriteString(fmt.Sprintf("Игра: %s, счет %d:%d\n", m.Kind, m.HumanTotal, m.OpponentTotal))
	for _, r := range m.Rounds {
		sb.WriteString(fmt.Sprintf("  раунд %d: %d:%d\n", r.Round, r.Human, r.Opponent))
	}
	sb.WriteString(fmt.Sprintf("Рейтинг: %+d → %d", m.Delta, user.Points))
	return sb.String()
}
