package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"fitdex_battle/internal/battle"
	"fitdex_battle/internal/domain"
	"fitdex_battle/internal/game"
	"fitdex_battle/internal/logger"
	"fitdex_battle/internal/metrics"
	"fitdex_battle/internal/repository"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

var (
	ErrNoSession       = errors.New("нет активной битвы")
	ErrUnknownOpponent = errors.New("соперник не найден среди друзей")
)

// EventPublisher доставляет события сессии клиенту (WebSocket хаб)
type EventPublisher interface {
	Publish(userID string, ev battle.Event)
}

// ResultNotifier сообщает об итогах матча во внешний канал (Telegram)
type ResultNotifier interface {
	NotifyMatchResult(user *domain.User, m *domain.MatchSummary)
}

// BattleOptions - необязательные зависимости сервиса
type BattleOptions struct {
	Clock     clockwork.Clock
	Rules     map[game.Kind]battle.Rules
	NewRand   func() game.Rand
	TickEvery time.Duration
	IdleAfter time.Duration // простой, после которого сессия убирается
	ReapEvery time.Duration

	Publisher EventPublisher
	Notifier  ResultNotifier
	Metrics   *metrics.Metrics
}

type liveSession struct {
	userID     string
	session    *battle.Session
	ctx        context.Context
	cancel     context.CancelFunc
	running    bool // крутится ли драйвер
	lastActive time.Time
}

// управляет живыми сессиями "Битвы", по одной на пользователя
type BattleService struct {
	users   *repository.UserRepository
	history *repository.HistoryRepository
	ranking *RankingService
	audit   *AuditService
	opts    BattleOptions

	sessions map[string]*liveSession // userID -> сессия
	mu       sync.Mutex

	wg    sync.WaitGroup // фоновое сохранение итогов
	sched gocron.Scheduler
}

func NewBattleService(users *repository.UserRepository, history *repository.HistoryRepository, ranking *RankingService, audit *AuditService, opts BattleOptions) *BattleService {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Rules == nil {
		opts.Rules = battle.DefaultRules()
	}
	if opts.NewRand == nil {
		opts.NewRand = game.SecureRand
	}
	if opts.TickEvery <= 0 {
		opts.TickEvery = battle.DefaultTickEvery
	}
	if opts.IdleAfter <= 0 {
		opts.IdleAfter = 15 * time.Minute
	}
	if opts.ReapEvery <= 0 {
		opts.ReapEvery = time.Minute
	}
	return &BattleService{
		users:    users,
		history:  history,
		ranking:  ranking,
		audit:    audit,
		opts:     opts,
		sessions: make(map[string]*liveSession),
	}
}

// StartReaper запускает периодическую уборку брошенных сессий
func (s *BattleService) StartReaper() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(s.opts.ReapEvery),
		gocron.NewTask(func() { s.Reap() }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	sched.Start()
	s.sched = sched
	logger.Info("battle reaper started", "every", s.opts.ReapEvery, "idle_after", s.opts.IdleAfter)
	return nil
}

// Shutdown закрывает все сессии и дожидается сохранения итогов
func (s *BattleService) Shutdown() {
	if s.sched != nil {
		if err := s.sched.Shutdown(); err != nil {
			logger.Warn("reaper shutdown", "error", err)
		}
	}

	s.mu.Lock()
	closed := make([]*liveSession, 0, len(s.sessions))
	for id, ls := range s.sessions {
		ls.cancel()
		ls.session.Close()
		delete(s.sessions, id)
		closed = append(closed, ls)
	}
	s.updateGauge()
	s.mu.Unlock()

	for _, ls := range closed {
		ls.session.Flush()
	}
	s.wg.Wait()
}

// Wait дожидается доставки событий сессий и фонового сохранения итогов матчей
func (s *BattleService) Wait() {
	s.mu.Lock()
	live := make([]*liveSession, 0, len(s.sessions))
	for _, ls := range s.sessions {
		live = append(live, ls)
	}
	s.mu.Unlock()

	for _, ls := range live {
		ls.session.Flush()
	}
	s.wg.Wait()
}

// Start начинает поиск соперника. opponentID пустой - случайный соперник,
// "bot_1" - FitBot, иначе id друга
func (s *BattleService) Start(ctx context.Context, userID string, kind game.Kind, difficulty game.Difficulty, opponentID string) (battle.Snapshot, error) {
	if !kind.Valid() {
		return battle.Snapshot{}, battle.ErrUnknownKind
	}

	roster, err := s.Roster(ctx, userID)
	if err != nil {
		return battle.Snapshot{}, err
	}

	var requested *game.Opponent
	switch opponentID {
	case "":
	case game.FitBot.ID:
		bot := game.FitBot
		requested = &bot
	default:
		for i := range roster {
			if roster[i].ID == opponentID {
				requested = &roster[i]
				break
			}
		}
		if requested == nil {
			return battle.Snapshot{}, ErrUnknownOpponent
		}
	}

	s.mu.Lock()
	ls := s.sessionFor(userID)
	ls.session.SetRoster(roster)
	err = ls.session.StartMatch(kind, difficulty, requested)
	if err == nil && !ls.running {
		ls.running = true
		go s.drive(ls)
	}
	ls.lastActive = s.opts.Clock.Now()
	s.mu.Unlock()

	if err != nil {
		return ls.session.Snapshot(), err
	}

	if s.opts.Metrics != nil {
		s.opts.Metrics.MatchesStarted.WithLabelValues(string(kind)).Inc()
	}
	s.audit.LogMatchStart(ctx, userID, ls.session.ID(), string(kind), opponentID)
	return ls.session.Snapshot(), nil
}

// Snapshot - текущее состояние битвы пользователя
func (s *BattleService) Snapshot(userID string) (battle.Snapshot, error) {
	ls, err := s.touch(userID)
	if err != nil {
		return battle.Snapshot{}, err
	}
	return ls.session.Snapshot(), nil
}

func (s *BattleService) Reveal(userID string, cell int) (game.RevealResult, error) {
	ls, err := s.touch(userID)
	if err != nil {
		return game.RevealResult{}, err
	}
	return ls.session.Reveal(cell)
}

func (s *BattleService) CashOut(userID string) (int, error) {
	ls, err := s.touch(userID)
	if err != nil {
		return 0, err
	}
	return ls.session.CashOut()
}

func (s *BattleService) Tap(userID string, targetID int) (game.TapResult, error) {
	ls, err := s.touch(userID)
	if err != nil {
		return game.TapResult{}, err
	}
	return ls.session.Tap(targetID)
}

func (s *BattleService) Surrender(userID string) error {
	ls, err := s.touch(userID)
	if err != nil {
		return err
	}
	return ls.session.Surrender()
}

// Exit - выход с экрана результата
func (s *BattleService) Exit(userID string) error {
	ls, err := s.touch(userID)
	if err != nil {
		return err
	}
	return ls.session.Exit()
}

// Leave - уход с экрана битвы из любой фазы, очки не начисляются
func (s *BattleService) Leave(ctx context.Context, userID string) {
	s.mu.Lock()
	ls, ok := s.sessions[userID]
	if ok {
		delete(s.sessions, userID)
		s.updateGauge()
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	phase := ls.session.Phase().Name()
	ls.cancel()
	ls.session.Close()
	if phase != battle.PhaseIdle && phase != battle.PhaseFinalResult {
		s.audit.LogMatchLeave(ctx, userID, ls.session.ID(), string(phase))
	}
}

// Reap убирает сессии без активности дольше IdleAfter
func (s *BattleService) Reap() int {
	now := s.opts.Clock.Now()

	s.mu.Lock()
	var stale []*liveSession
	for id, ls := range s.sessions {
		if now.Sub(ls.lastActive) >= s.opts.IdleAfter {
			stale = append(stale, ls)
			delete(s.sessions, id)
		}
	}
	s.updateGauge()
	s.mu.Unlock()

	for _, ls := range stale {
		ls.cancel()
		ls.session.Close()
		logger.Info("battle session reaped", "user_id", ls.userID, "session_id", ls.session.ID())
	}
	if s.opts.Metrics != nil {
		s.opts.Metrics.SessionsReaped.Add(float64(len(stale)))
	}
	return len(stale)
}

// Active - число живых сессий
func (s *BattleService) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Roster - друзья пользователя в виде соперников
func (s *BattleService) Roster(ctx context.Context, userID string) ([]game.Opponent, error) {
	friends, err := s.users.Friends(ctx, userID)
	if err != nil {
		return nil, err
	}
	roster := make([]game.Opponent, 0, len(friends))
	for _, f := range friends {
		avatar := f.Avatar
		if avatar == "" {
			avatar = repository.AvatarURL(f.Name)
		}
		roster = append(roster, game.Opponent{
			ID:     f.ID,
			Name:   f.Name,
			Avatar: avatar,
			Rating: f.Points,
			Online: f.IsOnline,
		})
	}
	return roster, nil
}

// вызывать под s.mu
func (s *BattleService) sessionFor(userID string) *liveSession {
	if ls, ok := s.sessions[userID]; ok {
		return ls
	}

	ctx, cancel := context.WithCancel(context.Background())
	ls := &liveSession{userID: userID, ctx: ctx, cancel: cancel}
	ls.session = battle.NewSession(battle.Config{
		Clock:         s.opts.Clock,
		Rand:          s.opts.NewRand(),
		Rules:         s.opts.Rules,
		OnScoreUpdate: func(delta int) { s.onScore(ls, delta) },
		Notify: func(ev battle.Event) {
			if s.opts.Publisher != nil {
				s.opts.Publisher.Publish(userID, ev)
			}
		},
		Logger: logger.With("user_id", userID),
	})
	s.sessions[userID] = ls
	s.updateGauge()
	return ls
}

func (s *BattleService) touch(userID string) (*liveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ls, ok := s.sessions[userID]
	if !ok {
		return nil, ErrNoSession
	}
	ls.lastActive = s.opts.Clock.Now()
	return ls, nil
}

// drive крутит таймеры, пока матч не закончится. Проверка под s.mu
// не дает потерять матч, начатый в момент остановки драйвера
func (s *BattleService) drive(ls *liveSession) {
	for {
		battle.NewDriver(ls.session, s.opts.Clock, s.opts.TickEvery).Run(ls.ctx)

		s.mu.Lock()
		if ls.ctx.Err() != nil || ls.session.Settled() {
			ls.running = false
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
	}
}

// onScore вызывается сессией ровно один раз за матч
func (s *BattleService) onScore(ls *liveSession, delta int) {
	snap := ls.session.Snapshot()
	summary := summarize(ls.userID, snap, delta, s.opts.Clock.Now().UTC())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.persist(context.Background(), summary)
	}()
}

func (s *BattleService) persist(ctx context.Context, m *domain.MatchSummary) {
	log := logger.With("component", "battle_service", "user_id", m.UserID, "match_id", m.ID)

	u, err := s.ranking.Apply(ctx, m.UserID, m.Delta)
	if err != nil {
		log.Error("score not applied", "error", err, "delta", m.Delta)
		return
	}
	if err := s.history.AddMatch(ctx, m); err != nil {
		log.Error("match history not saved", "error", err)
	}
	s.audit.LogMatchEnd(ctx, m)

	if s.opts.Metrics != nil {
		s.opts.Metrics.MatchesFinished.WithLabelValues(m.Kind, m.Outcome).Inc()
		s.opts.Metrics.ScoreDelta.WithLabelValues(m.Kind).Observe(float64(m.Delta))
	}
	if s.opts.Notifier != nil {
		s.opts.Notifier.NotifyMatchResult(u, m)
	}
	log.Info("match result saved", "delta", m.Delta, "points", u.Points, "level", u.Level)
}

// вызывать под s.mu
func (s *BattleService) updateGauge() {
	if s.opts.Metrics != nil {
		s.opts.Metrics.ActiveSessions.Set(float64(len(s.sessions)))
	}
}

// summarize собирает запись истории из среза сессии
func summarize(userID string, snap battle.Snapshot, delta int, at time.Time) *domain.MatchSummary {
	m := &domain.MatchSummary{
		ID:         snap.SessionID,
		UserID:     userID,
		Delta:      delta,
		Rounds:     []domain.RoundSummary{},
		FinishedAt: at,
	}
	if final, ok := snap.State.(battle.FinalResult); ok {
		m.Outcome = string(final.Outcome)
		m.HumanTotal = final.HumanTotal
		m.OpponentTotal = final.OppTotal
		m.Surrendered = final.Surrendered
	}

	match := snap.Match
	if match == nil {
		return m
	}
	m.ID = match.ID
	m.Kind = string(match.Kind)
	m.StartedAt = match.StartedAt
	if match.Kind == game.KindReflex {
		m.Difficulty = string(match.Difficulty)
	}
	if match.Opponent != nil {
		m.OpponentID = match.Opponent.ID
		m.OpponentName = match.Opponent.Name
	}
	for _, r := range match.Records {
		m.Rounds = append(m.Rounds, domain.RoundSummary{
			Round:    r.Round,
			Human:    r.HumanScore,
			Opponent: r.OpponentScore,
			Outcome:  string(r.Outcome),
		})
	}
	return m
}
