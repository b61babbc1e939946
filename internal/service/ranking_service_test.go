package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"fitdex_battle/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// board в памяти вместо Redis ZSET
type memBoard struct {
	mu     sync.Mutex
	scores map[string]int
	fail   bool
}

func (b *memBoard) Set(_ context.Context, userID string, points int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.scores == nil {
		b.scores = make(map[string]int)
	}
	b.scores[userID] = points
	return nil
}

func (b *memBoard) Top(_ context.Context, limit int) ([]repository.Score, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return nil, errors.New("redis down")
	}
	var out []repository.Score
	for id, p := range b.scores {
		out = append(out, repository.Score{UserID: id, Points: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func TestRankingService_TopByScan(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()
	a, b, c := d.user(t, "Ana"), d.user(t, "Beto"), d.user(t, "Caio")

	_, err := d.ranking.Apply(ctx, b.ID, 400)
	require.NoError(t, err)
	_, err = d.ranking.Apply(ctx, c.ID, 25)
	require.NoError(t, err)

	top, err := d.ranking.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []string{b.ID, c.ID, a.ID}, []string{top[0].UserID, top[1].UserID, top[2].UserID})
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, "Arena Prata", top[0].Arena)
	assert.Equal(t, "Arena Bronze", top[2].Arena)

	top, err = d.ranking.Top(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestRankingService_BoardAndFallback(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()
	board := &memBoard{}
	ranking := NewRankingService(d.users, board)

	a, b := d.user(t, "Ana"), d.user(t, "Beto")
	require.NoError(t, ranking.Sync(ctx))
	_, err := ranking.Apply(ctx, a.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, board.scores[a.ID])
	assert.Equal(t, 0, board.scores[b.ID])

	top, err := ranking.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, a.ID, top[0].UserID)

	board.fail = true
	top, err = ranking.Top(ctx, 10)
	require.NoError(t, err, "при падении индекса считаем обходом")
	assert.Len(t, top, 2)
}

func TestRankingService_Friends(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()
	me, ana, beto := d.user(t, "Carla"), d.user(t, "Ana"), d.user(t, "Beto")
	d.user(t, "Stranger")

	_, err := d.users.AddFriend(ctx, me.ID, ana.ID)
	require.NoError(t, err)
	_, err = d.users.AddFriend(ctx, me.ID, beto.ID)
	require.NoError(t, err)
	_, err = d.ranking.Apply(ctx, beto.ID, 30)
	require.NoError(t, err)

	list, err := d.ranking.Friends(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, beto.ID, list[0].UserID)
	// при равных очках по имени
	assert.Equal(t, ana.ID, list[1].UserID)
	assert.Equal(t, me.ID, list[2].UserID)
}
