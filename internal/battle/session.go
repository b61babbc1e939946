package battle

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"fitdex_battle/internal/game"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var (
	ErrWrongPhase  = errors.New("действие недоступно в текущей фазе")
	ErrUnknownKind = errors.New("неизвестный тип игры")
	ErrWrongGame   = errors.New("действие не относится к текущей игре")
)

// MatchSession - состояние одного матча. Меняется только сессией
type MatchSession struct {
	ID            string          `json:"id"`
	Kind          game.Kind       `json:"kind"`
	Difficulty    game.Difficulty `json:"difficulty"`
	HumanTotal    int             `json:"human_total"`
	OpponentTotal int             `json:"opponent_total"`
	Round         int             `json:"round"` // текущий раунд, после последнего становится MaxRounds+1
	MaxRounds     int             `json:"max_rounds"`
	Opponent      *game.Opponent  `json:"opponent,omitempty"`
	StartedAt     time.Time       `json:"started_at"`
	Records       []RoundRecord   `json:"records"`
	Surrendered   bool            `json:"surrendered"`
}

// roundState - эфемерное поле текущего раунда, принадлежит матчу
type roundState struct {
	index    int
	order    [2]game.Side
	tasks    *Group
	turnTask *Group

	human    int
	opponent int

	grid *game.Grid       // grid: поле человека
	turn *game.ReflexTurn // reflex: текущий ход
}

// Config - зависимости сессии. Пустые поля заполняются значениями по умолчанию
type Config struct {
	Clock  clockwork.Clock
	Rand   game.Rand
	Rules  map[game.Kind]Rules
	Roster []game.Opponent

	// NewSimulator позволяет подменить соперника (например, сетевым игроком)
	NewSimulator func(kind game.Kind, difficulty game.Difficulty, rng game.Rand) game.Simulator

	// OnScoreUpdate получает итоговое изменение рейтинга, ровно один раз за матч
	OnScoreUpdate func(delta int)
	// Notify получает все события сессии по порядку.
	// Может вызываться из горутины другого метода сессии
	Notify func(Event)

	Logger *slog.Logger
}

// Session - контроллер матча: фазы, раунды, таймеры.
// Все таймеры живут в виртуальной очереди и выполняются внутри вызовов
// методов сессии (Tick или любое действие), поэтому конец хода всегда
// обрабатывается раньше запоздавшего нажатия
type Session struct {
	mu sync.Mutex

	id      string
	clock   clockwork.Clock
	rng     game.Rand
	rules   map[game.Kind]Rules
	roster  []game.Opponent
	newSim  func(game.Kind, game.Difficulty, game.Rand) game.Simulator
	onScore func(int)
	notify  func(Event)
	log     *slog.Logger

	sched      *Scheduler
	matchTasks *Group
	gen        uint64 // растет при каждой смене фазы, старые колбэки сверяются с ним
	phase      Phase
	match      *MatchSession
	round      *roundState
	sim        game.Simulator
	reported   bool

	outbox   []func()
	queue    []func() // колбэки, ждущие доставки, в порядке захвата мьютекса
	draining bool     // кто-то уже доставляет очередь
	drained  *sync.Cond
}

// NewSession создает сессию в фазе Idle
func NewSession(cfg Config) *Session {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Rand == nil {
		cfg.Rand = game.SecureRand()
	}
	if cfg.Rules == nil {
		cfg.Rules = DefaultRules()
	}
	if cfg.NewSimulator == nil {
		cfg.NewSimulator = game.SimulatorFor
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	id := uuid.New().String()
	s := &Session{
		id:      id,
		clock:   cfg.Clock,
		rng:     cfg.Rand,
		rules:   cfg.Rules,
		roster:  append([]game.Opponent(nil), cfg.Roster...),
		newSim:  cfg.NewSimulator,
		onScore: cfg.OnScoreUpdate,
		notify:  cfg.Notify,
		log:     cfg.Logger.With("component", "battle", "session_id", id),
		sched:   NewScheduler(cfg.Clock.Now()),
		phase:   Idle{},
	}
	s.drained = sync.NewCond(&s.mu)
	return s
}

func (s *Session) ID() string { return s.id }

// SetRoster заменяет список соперников для следующего поиска
func (s *Session) SetRoster(roster []game.Opponent) {
	s.mu.Lock()
	defer s.unlock()
	s.roster = append([]game.Opponent(nil), roster...)
}

// Tick выполняет все таймеры, время которых наступило
func (s *Session) Tick() PhaseName {
	s.mu.Lock()
	defer s.unlock()
	s.advance()
	return s.phase.Name()
}

// Phase возвращает текущую фазу
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.unlock()
	s.advance()
	return s.phase
}

// Pending - число запланированных таймеров
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.unlock()
	return s.sched.Pending()
}

// Settled - матч не идет и таймеров не осталось
func (s *Session) Settled() bool {
	s.mu.Lock()
	defer s.unlock()
	s.advance()
	switch s.phase.(type) {
	case Idle, FinalResult:
		return s.sched.Pending() == 0
	}
	return false
}

// StartMatch начинает поиск соперника. Только из Idle
func (s *Session) StartMatch(kind game.Kind, difficulty game.Difficulty, requested *game.Opponent) error {
	s.mu.Lock()
	defer s.unlock()
	s.advance()

	if !kind.Valid() {
		return ErrUnknownKind
	}
	if _, ok := s.phase.(Idle); !ok {
		return ErrWrongPhase
	}

	rules := s.rulesFor(kind)
	now := s.sched.Now()

	s.match = &MatchSession{
		ID:         uuid.New().String(),
		Kind:       kind,
		Difficulty: difficulty,
		Round:      1,
		MaxRounds:  rules.MaxRounds,
		StartedAt:  now,
		Records:    []RoundRecord{},
	}
	s.round = nil
	s.reported = false
	s.sim = s.newSim(kind, difficulty, s.rng)
	s.matchTasks = s.sched.NewGroup()

	var opp *game.Opponent
	delay := rules.RequestedSearch
	if requested != nil {
		cp := *requested
		opp = &cp
	} else {
		delay = rules.SearchBase
		if ms := int(rules.SearchJitter / time.Millisecond); ms > 0 {
			delay += time.Duration(s.rng.Intn(ms)) * time.Millisecond
		}
	}

	gen := s.setPhase(Matchmaking{Kind: kind, Requested: opp != nil, Until: now.Add(delay)})
	s.matchTasks.After(delay, func(now time.Time) { s.onOpponentFound(gen, opp, now) })

	s.log.Info("matchmaking started", "match_id", s.match.ID, "kind", kind, "difficulty", difficulty, "requested", opp != nil)
	return nil
}

func (s *Session) onOpponentFound(gen uint64, requested *game.Opponent, now time.Time) {
	if s.stale(gen) {
		return
	}
	rules := s.rulesFor(s.match.Kind)

	opp := requested
	if opp == nil {
		picked := s.pickOpponent(rules)
		opp = &picked
	}
	s.match.Opponent = opp

	next := s.setPhase(VersusIntro{Opponent: *opp, Until: now.Add(rules.VersusIntro)})
	s.matchTasks.After(rules.VersusIntro, func(now time.Time) {
		if s.stale(next) {
			return
		}
		s.enterRound(1, now)
	})
	s.log.Info("opponent found", "match_id", s.match.ID, "opponent", opp.ID, "simulated", opp.Simulated)
}

// пустой ростер - всегда FitBot, иначе случайный друг (в "Сапёре" с шансом на бота)
func (s *Session) pickOpponent(rules Rules) game.Opponent {
	if len(s.roster) == 0 {
		return game.FitBot
	}
	if rules.BotChance > 0 && s.rng.Float64() < rules.BotChance {
		return game.FitBot
	}
	return s.roster[s.rng.Intn(len(s.roster))]
}

func (s *Session) enterRound(n int, now time.Time) {
	rules := s.rulesFor(s.match.Kind)
	r := &roundState{
		index: n,
		order: TurnOrder(s.match.Kind, n),
		tasks: s.matchTasks.NewGroup(),
	}
	s.round = r

	if s.match.Kind == game.KindGridSweep {
		r.grid = game.NewDefaultGrid(s.rng)
		s.setPhase(InRound{Round: n, Turn: game.SideHuman, TurnActive: true})
		return
	}

	gen := s.setPhase(InRound{Round: n, Turn: r.order[0]})
	r.tasks.After(rules.FirstTurnIn, func(now time.Time) { s.startTurn(gen, 0, now) })
}

// --- reflex ---

func (s *Session) startTurn(gen uint64, idx int, now time.Time) {
	if s.stale(gen) {
		return
	}
	rules := s.rulesFor(s.match.Kind)
	r := s.round
	side := r.order[idx]

	r.turn = game.NewReflexTurn(side, r.index)
	r.turnTask = r.tasks.NewGroup()

	turnGen := s.setPhase(InRound{
		Round:      r.index,
		Turn:       side,
		TurnIndex:  idx,
		TurnActive: true,
		TurnEndsAt: now.Add(rules.TurnDuration),
	})

	r.turnTask.After(rules.TurnDuration, func(now time.Time) { s.endTurn(turnGen, idx, now) })
	r.turnTask.Every(rules.SpawnEvery, func(now time.Time) { s.onSpawn(turnGen, now) })
	if side == game.SideOpponent {
		r.turnTask.Every(rules.CheckEvery, func(now time.Time) { s.onCheck(turnGen, now) })
	}
}

func (s *Session) onSpawn(gen uint64, now time.Time) {
	if s.stale(gen) || s.round == nil || s.round.turn == nil {
		return
	}
	turn := s.round.turn
	target := turn.Spawn(now, s.rng)
	if target == nil {
		return
	}
	cp := *target
	s.emit(Event{Type: EventSpawn, Round: s.round.index, Side: turn.Side(), Target: &cp})

	if turn.Side() == game.SideOpponent {
		s.simulateReflex(now)
	}
}

func (s *Session) onCheck(gen uint64, now time.Time) {
	if s.stale(gen) || s.round == nil || s.round.turn == nil {
		return
	}
	s.simulateReflex(now)
}

func (s *Session) simulateReflex(now time.Time) {
	turn := s.round.turn
	points := s.sim.SimulateTurn(game.TurnContext{
		Kind:       s.match.Kind,
		Round:      s.round.index,
		Now:        now,
		Difficulty: s.match.Difficulty,
		Turn:       turn,
	})
	if points > 0 {
		s.emit(Event{Type: EventOpponentScore, Round: s.round.index, Side: game.SideOpponent, Points: points, Score: turn.Score()})
	}
}

func (s *Session) endTurn(gen uint64, idx int, now time.Time) {
	if s.stale(gen) {
		return
	}
	r := s.round
	// сначала снимаем спавн и проверки, потом считаем очки
	r.turnTask.Cancel()
	score, discarded := r.turn.End()
	if r.turn.Side() == game.SideHuman {
		r.human = score
	} else {
		r.opponent = score
	}
	s.emit(Event{Type: EventTurnEnd, Round: r.index, Side: r.turn.Side(), Score: score, Discards: discarded})

	if idx == 0 {
		rules := s.rulesFor(s.match.Kind)
		next := s.setPhase(InRound{Round: r.index, Turn: r.order[1], TurnIndex: 1})
		r.tasks.After(rules.TurnGap, func(now time.Time) { s.startTurn(next, 1, now) })
		return
	}
	s.finishRound(r.human, r.opponent, now)
}

// Tap - нажатие игрока по мишени
func (s *Session) Tap(targetID int) (game.TapResult, error) {
	s.mu.Lock()
	defer s.unlock()
	s.advance()

	p, ok := s.phase.(InRound)
	if !ok || !p.TurnActive {
		return game.TapResult{}, ErrWrongPhase
	}
	if s.match.Kind != game.KindReflex {
		return game.TapResult{}, ErrWrongGame
	}
	if p.Turn != game.SideHuman {
		return game.TapResult{}, game.ErrNotYourTurn
	}

	res, err := s.round.turn.Tap(targetID, s.sched.Now())
	if err != nil {
		return res, err
	}
	s.emit(Event{Type: EventTap, Round: s.round.index, Side: game.SideHuman, Tap: &res, Score: res.Score})
	return res, nil
}

// --- grid ---

// Reveal открывает клетку на поле игрока
func (s *Session) Reveal(cell int) (game.RevealResult, error) {
	s.mu.Lock()
	defer s.unlock()
	s.advance()

	if err := s.gridTurn(); err != nil {
		return game.RevealResult{}, err
	}

	res, err := s.round.grid.Reveal(cell)
	if err != nil {
		return res, err
	}
	s.emit(Event{Type: EventReveal, Round: s.round.index, Side: game.SideHuman, Reveal: &res, Score: res.Score})

	if res.Over {
		rules := s.rulesFor(s.match.Kind)
		delay := rules.AfterCashOut
		if res.Hazard {
			delay = rules.AfterHazard
		}
		s.humanGridDone(delay)
	}
	return res, nil
}

// CashOut забирает очки раунда до подрыва
func (s *Session) CashOut() (int, error) {
	s.mu.Lock()
	defer s.unlock()
	s.advance()

	if err := s.gridTurn(); err != nil {
		return 0, err
	}

	banked, err := s.round.grid.CashOut()
	if err != nil {
		return 0, err
	}
	s.log.Debug("cash out", "match_id", s.match.ID, "round", s.round.index, "score", banked)
	s.humanGridDone(s.rulesFor(s.match.Kind).AfterCashOut)
	return banked, nil
}

func (s *Session) gridTurn() error {
	p, ok := s.phase.(InRound)
	if !ok || !p.TurnActive {
		return ErrWrongPhase
	}
	if s.match.Kind != game.KindGridSweep {
		return ErrWrongGame
	}
	if p.Turn != game.SideHuman {
		return game.ErrNotYourTurn
	}
	return nil
}

func (s *Session) humanGridDone(delay time.Duration) {
	r := s.round
	r.human = r.grid.Score()
	gen := s.setPhase(InRound{Round: r.index, Turn: game.SideHuman})
	r.tasks.After(delay, func(now time.Time) { s.startGridOpponent(gen, now) })
}

func (s *Session) startGridOpponent(gen uint64, now time.Time) {
	if s.stale(gen) {
		return
	}
	rules := s.rulesFor(s.match.Kind)
	r := s.round
	next := s.setPhase(InRound{
		Round:      r.index,
		Turn:       game.SideOpponent,
		TurnIndex:  1,
		TurnActive: true,
		TurnEndsAt: now.Add(rules.OpponentPlay),
	})
	r.tasks.After(rules.OpponentPlay, func(now time.Time) {
		if s.stale(next) {
			return
		}
		score := s.sim.SimulateTurn(game.TurnContext{
			Kind:       s.match.Kind,
			Round:      r.index,
			Now:        now,
			HumanScore: r.human,
			Difficulty: s.match.Difficulty,
		})
		r.opponent = score
		s.emit(Event{Type: EventOpponentScore, Round: r.index, Side: game.SideOpponent, Points: score, Score: score})
		s.finishRound(r.human, score, now)
	})
}

// --- lifecycle ---

// FinishRound записывает итог текущего раунда и переходит к экрану итогов
func (s *Session) FinishRound(human, opponent int) error {
	s.mu.Lock()
	defer s.unlock()
	s.advance()

	if _, ok := s.phase.(InRound); !ok {
		return ErrWrongPhase
	}
	s.finishRound(human, opponent, s.sched.Now())
	return nil
}

func (s *Session) finishRound(human, opponent int, now time.Time) {
	r := s.round
	r.tasks.Cancel()
	if r.turn != nil {
		r.turn.End()
	}

	rec := NewRoundRecord(r.index, human, opponent, now)
	s.match.Records = append(s.match.Records, rec)
	s.match.HumanTotal += human
	s.match.OpponentTotal += opponent
	s.match.Round++

	rules := s.rulesFor(s.match.Kind)
	gen := s.setPhase(RoundResult{Record: rec, Until: now.Add(rules.RoundResultHold)})
	s.log.Debug("round finished", "match_id", s.match.ID, "round", rec.Round, "human", human, "opponent", opponent)

	next := func(now time.Time) {
		if s.stale(gen) {
			return
		}
		if s.match.Round > s.match.MaxRounds {
			s.finalize(now)
			return
		}
		s.enterRound(s.match.Round, now)
	}
	if rules.RoundResultHold <= 0 {
		next(now)
		return
	}
	s.matchTasks.After(rules.RoundResultHold, next)
}

func (s *Session) finalize(now time.Time) {
	s.matchTasks.Cancel()

	outcome := Compare(s.match.HumanTotal, s.match.OpponentTotal)
	delta := s.rulesFor(s.match.Kind).Delta(outcome)
	final := FinalResult{
		Outcome:    outcome,
		Delta:      delta,
		HumanTotal: s.match.HumanTotal,
		OppTotal:   s.match.OpponentTotal,
	}
	s.setPhase(final)
	s.report(final)
	s.log.Info("match finished", "match_id", s.match.ID, "outcome", outcome, "delta", delta,
		"human", s.match.HumanTotal, "opponent", s.match.OpponentTotal)
}

// Surrender - сдаться. Только во время раунда, штраф начисляется один раз
func (s *Session) Surrender() error {
	s.mu.Lock()
	defer s.unlock()
	s.advance()

	if _, ok := s.phase.(InRound); !ok {
		return ErrWrongPhase
	}

	s.matchTasks.Cancel()
	if s.round != nil && s.round.turn != nil {
		s.round.turn.End()
	}
	s.match.Surrendered = true

	final := FinalResult{
		Outcome:     OutcomeOpponentWin,
		Delta:       s.rulesFor(s.match.Kind).SurrenderDelta,
		HumanTotal:  s.match.HumanTotal,
		OppTotal:    s.match.OpponentTotal,
		Surrendered: true,
	}
	s.setPhase(final)
	s.report(final)
	s.log.Info("match surrendered", "match_id", s.match.ID, "round", s.match.Round, "delta", final.Delta)
	return nil
}

// Exit - выход с экрана результата, матч удаляется
func (s *Session) Exit() error {
	s.mu.Lock()
	defer s.unlock()
	s.advance()

	if _, ok := s.phase.(FinalResult); !ok {
		return ErrWrongPhase
	}
	s.match = nil
	s.round = nil
	s.setPhase(Idle{})
	return nil
}

// Close - уход с экрана из любой фазы: все таймеры снимаются сразу,
// рейтинг не меняется
func (s *Session) Close() {
	s.mu.Lock()
	defer s.unlock()

	if s.matchTasks != nil {
		s.matchTasks.Cancel()
	}
	if s.round != nil && s.round.turn != nil {
		s.round.turn.End()
	}
	if s.match != nil {
		s.log.Info("session closed", "match_id", s.match.ID, "phase", s.phase.Name())
	}
	s.match = nil
	s.round = nil
	if _, idle := s.phase.(Idle); !idle {
		s.setPhase(Idle{})
	}
}

func (s *Session) report(final FinalResult) {
	if s.reported {
		return
	}
	s.reported = true
	cp := final
	s.emit(Event{Type: EventFinal, Final: &cp})
	if s.onScore != nil {
		onScore, delta := s.onScore, final.Delta
		s.outbox = append(s.outbox, func() { onScore(delta) })
	}
}

// --- helpers ---

func (s *Session) advance() {
	s.sched.RunDue(s.clock.Now())
}

func (s *Session) stale(gen uint64) bool {
	return gen != s.gen || s.match == nil
}

func (s *Session) setPhase(p Phase) uint64 {
	s.gen++
	s.phase = p
	s.emit(Event{Type: EventPhase, Phase: p.Name(), State: p})
	return s.gen
}

func (s *Session) emit(ev Event) {
	if s.notify == nil {
		return
	}
	ev.SessionID = s.id
	ev.At = s.sched.Now()
	notify := s.notify
	s.outbox = append(s.outbox, func() { notify(ev) })
}

// unlock отпускает мьютекс и только потом вызывает внешние колбэки,
// чтобы они могли обращаться к сессии. Колбэки доставляет один поток
// за раз в порядке захвата мьютекса: если очередь уже разбирается,
// свои колбэки просто дописываются в конец
func (s *Session) unlock() {
	s.queue = append(s.queue, s.outbox...)
	s.outbox = nil
	if s.draining || len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}

	s.draining = true
	for len(s.queue) > 0 {
		batch := s.queue
		s.queue = nil
		s.mu.Unlock()
		for _, fn := range batch {
			fn()
		}
		s.mu.Lock()
	}
	s.draining = false
	s.drained.Broadcast()
	s.mu.Unlock()
}

// Flush ждет, пока все колбэки, поставленные в очередь до вызова, будут доставлены.
// Нельзя вызывать из самих колбэков
func (s *Session) Flush() {
	s.mu.Lock()
	for s.draining {
		s.drained.Wait()
	}
	s.mu.Unlock()
}

func (s *Session) rulesFor(kind game.Kind) Rules {
	if r, ok := s.rules[kind]; ok {
		return r
	}
	if kind == game.KindReflex {
		return ReflexRules()
	}
	return GridRules()
}
