package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"fitdex_battle/internal/battle"
	"fitdex_battle/internal/domain"
	"fitdex_battle/internal/game"
	"fitdex_battle/internal/metrics"
	"fitdex_battle/internal/repository"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type fakeClock interface {
	clockwork.Clock
	Advance(d time.Duration)
}

// deps - сервисы поверх хранилища в памяти
type deps struct {
	clock   fakeClock
	kv      *repository.MemoryKV
	users   *repository.UserRepository
	history *repository.HistoryRepository
	audit   *AuditService
	auditR  *repository.AuditRepository
	ranking *RankingService
	metrics *metrics.Metrics
}

func newDeps(t *testing.T) *deps {
	t.Helper()
	kv := repository.NewMemoryKV()
	d := &deps{
		clock:   clockwork.NewFakeClockAt(t0),
		kv:      kv,
		users:   repository.NewUserRepository(kv),
		history: repository.NewHistoryRepository(kv),
		auditR:  repository.NewAuditRepository(kv),
		metrics: metrics.New(prometheus.NewRegistry()),
	}
	d.audit = NewAuditService(d.auditR)
	d.ranking = NewRankingService(d.users, nil)
	return d
}

func (d *deps) user(t *testing.T, name string) *domain.User {
	t.Helper()
	u, _, err := d.users.GetOrCreate(context.Background(), name)
	require.NoError(t, err)
	return u
}

type recordingPublisher struct {
	mu     sync.Mutex
	events map[string][]battle.Event
}

func (p *recordingPublisher) Publish(userID string, ev battle.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		p.events = make(map[string][]battle.Event)
	}
	p.events[userID] = append(p.events[userID], ev)
}

func (p *recordingPublisher) count(userID string, typ battle.EventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, ev := range p.events[userID] {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

type recordingNotifier struct {
	mu      sync.Mutex
	results []*domain.MatchSummary
}

func (n *recordingNotifier) NotifyMatchResult(_ *domain.User, m *domain.MatchSummary) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.results = append(n.results, m)
}

func (n *recordingNotifier) all() []*domain.MatchSummary {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*domain.MatchSummary(nil), n.results...)
}

// seeded дает каждой сессии детерминированный источник
func seeded(seed int64) func() game.Rand {
	return func() game.Rand { return game.SeededRand(seed) }
}
