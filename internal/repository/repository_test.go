package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fitdex_battle/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKV(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	_, err := kv.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Put(ctx, "user:b", []byte(`1`)))
	require.NoError(t, kv.Put(ctx, "user:a", []byte(`2`)))
	require.NoError(t, kv.Put(ctx, "history:a", []byte(`3`)))

	keys, err := kv.Keys(ctx, "user:")
	require.NoError(t, err)
	assert.Equal(t, []string{"user:a", "user:b"}, keys)

	require.NoError(t, kv.Delete(ctx, "user:a"))
	_, err = kv.Get(ctx, "user:a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLikePrefixEscapes(t *testing.T) {
	assert.Equal(t, `user\_%`, likePrefix("user_"))
	assert.Equal(t, `a\%b\\%`, likePrefix(`a%b\`))
}

func TestUserRepository_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(NewMemoryKV())

	u, created, err := repo.GetOrCreate(ctx, "  Ana Souza ")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Ana Souza", u.Name)
	assert.Equal(t, domain.DefaultBio, u.Bio)
	assert.Equal(t, 1, u.Level)
	assert.Contains(t, u.Avatar, "seed=ana-souza")

	again, created, err := repo.GetOrCreate(ctx, "Ana Souza")
	require.NoError(t, err)
	assert.False(t, created, "повторный вход по тому же имени")
	assert.Equal(t, u.ID, again.ID)

	for _, bad := range []string{"", "   ", "!!!", string(make([]rune, domain.MaxNameRunes+1))} {
		_, _, err := repo.GetOrCreate(ctx, bad)
		assert.ErrorIs(t, err, ErrInvalidName, "name=%q", bad)
	}
}

func TestUserRepository_AddPointsRecomputesLevel(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(NewMemoryKV())
	u, _, err := repo.GetOrCreate(ctx, "Bruno")
	require.NoError(t, err)

	u, err = repo.AddPoints(ctx, u.ID, 1025)
	require.NoError(t, err)
	assert.Equal(t, 1025, u.Points)
	assert.Equal(t, 2, u.Level)

	u, err = repo.AddPoints(ctx, u.ID, -1040)
	require.NoError(t, err)
	assert.Equal(t, -15, u.Points)
	assert.Equal(t, 1, u.Level)

	_, err = repo.AddPoints(ctx, "missing", 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_Friends(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(NewMemoryKV())
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	me, _, _ := repo.GetOrCreate(ctx, "Carla")
	ana, _, _ := repo.GetOrCreate(ctx, "Ana")
	beto, _, _ := repo.GetOrCreate(ctx, "Beto")

	_, err := repo.AddFriend(ctx, me.ID, ana.ID)
	require.NoError(t, err)
	_, err = repo.AddFriend(ctx, me.ID, beto.ID)
	require.NoError(t, err)

	_, err = repo.AddFriend(ctx, me.ID, ana.ID)
	assert.ErrorIs(t, err, ErrAlreadyFriend)
	_, err = repo.AddFriend(ctx, me.ID, me.ID)
	assert.ErrorIs(t, err, ErrSelfFollow)
	_, err = repo.AddFriend(ctx, me.ID, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	// Beto давно не заходил
	now = now.Add(10 * time.Minute)
	require.NoError(t, repo.Touch(ctx, ana.ID))

	friends, err := repo.Friends(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, friends, 2)
	assert.Equal(t, ana.ID, friends[0].ID)
	assert.True(t, friends[0].IsOnline)
	assert.Equal(t, beto.ID, friends[1].ID)
	assert.False(t, friends[1].IsOnline)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestHistoryRepository_KeepsNewestFirstAndCaps(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepository(NewMemoryKV())

	empty, err := repo.Matches(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for i := 0; i < HistoryLimit+5; i++ {
		require.NoError(t, repo.AddMatch(ctx, &domain.MatchSummary{ID: fmt.Sprint(i), UserID: "u1"}))
	}

	all, err := repo.Matches(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, all, HistoryLimit)
	assert.Equal(t, fmt.Sprint(HistoryLimit+4), all[0].ID)

	top, err := repo.Matches(ctx, "u1", 3)
	require.NoError(t, err)
	assert.Len(t, top, 3)

	require.NoError(t, repo.AddPractice(ctx, &domain.PracticeResult{ID: "p1", UserID: "u1", Points: 15}))
	ps, err := repo.Practices(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, 15, ps[0].Points)
}

func TestAuditRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAuditRepository(NewMemoryKV())
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	logs := []*domain.AuditLog{
		{UserID: "u1", Action: domain.AuditActionLogin, Category: domain.AuditCategoryAuth, CreatedAt: base},
		{UserID: "u1", Action: domain.AuditActionMatchEnd, Category: domain.AuditCategoryBattle, CreatedAt: base.Add(time.Second)},
		{UserID: "u2", Action: domain.AuditActionMatchEnd, Category: domain.AuditCategoryBattle, CreatedAt: base.Add(2 * time.Second)},
	}
	for _, l := range logs {
		require.NoError(t, repo.Create(ctx, l))
		assert.NotEmpty(t, l.ID)
	}

	recent, err := repo.GetRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "u2", recent[0].UserID, "новые записи первыми")

	byUser, err := repo.GetByUserID(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	byAction, err := repo.GetByAction(ctx, domain.AuditActionMatchEnd, 10)
	require.NoError(t, err)
	assert.Len(t, byAction, 2)

	byCat, err := repo.GetByCategory(ctx, domain.AuditCategoryAuth, 10)
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.NotNil(t, byCat[0].Details)
}
