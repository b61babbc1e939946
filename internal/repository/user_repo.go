package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"fitdex_battle/internal/domain"
	"fitdex_battle/internal/game"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	userPrefix = "user:"
	namePrefix = "username:"
)

var (
	ErrInvalidName   = errors.New("некорректное имя")
	ErrSelfFollow    = errors.New("нельзя подписаться на себя")
	ErrAlreadyFriend = errors.New("уже в друзьях")
)

// AvatarURL - аватар по умолчанию, сид строится из имени
func AvatarURL(name string) string {
	seed := slug.Make(name)
	if seed == "" {
		seed = "fitdex"
	}
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + seed
}

// отвечает за профили пользователей
type UserRepository struct {
	kv  KV
	now func() time.Time

	// сериализует read-modify-write профилей внутри процесса
	mu sync.Mutex
}

func NewUserRepository(kv KV) *UserRepository {
	return &UserRepository{kv: kv, now: time.Now}
}

func userKey(id string) string   { return userPrefix + id }
func nameKey(name string) string { return namePrefix + slug.Make(name) }

// GetOrCreate находит профиль по имени или заводит новый
func (r *UserRepository) GetOrCreate(ctx context.Context, name string) (*domain.User, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > domain.MaxNameRunes || slug.Make(name) == "" {
		return nil, false, ErrInvalidName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var id string
	err := getJSON(ctx, r.kv, nameKey(name), &id)
	switch {
	case err == nil:
		u, err := r.get(ctx, id)
		if err == nil {
			return u, false, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, false, err
		}
	case !errors.Is(err, ErrNotFound):
		return nil, false, err
	}

	now := r.now()
	u := &domain.User{
		ID:        uuid.NewString(),
		Name:      name,
		Avatar:    AvatarURL(name),
		Bio:       domain.DefaultBio,
		Level:     domain.StartLevel,
		Points:    domain.StartPoints,
		FriendIDs: []string{},
		CreatedAt: now,
		LastSeen:  now,
	}
	if err := putJSON(ctx, r.kv, userKey(u.ID), u); err != nil {
		return nil, false, fmt.Errorf("save user: %w", err)
	}
	if err := putJSON(ctx, r.kv, nameKey(name), u.ID); err != nil {
		return nil, false, fmt.Errorf("save name index: %w", err)
	}
	return u, true, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, id)
}

func (r *UserRepository) get(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := getJSON(ctx, r.kv, userKey(id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Update применяет fn к профилю и сохраняет результат
func (r *UserRepository) Update(ctx context.Context, id string, fn func(u *domain.User) error) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	if err := putJSON(ctx, r.kv, userKey(id), u); err != nil {
		return nil, err
	}
	return u, nil
}

// AddPoints меняет рейтинг и пересчитывает уровень
func (r *UserRepository) AddPoints(ctx context.Context, id string, delta int) (*domain.User, error) {
	return r.Update(ctx, id, func(u *domain.User) error {
		u.Points += delta
		u.Level = game.LevelFor(u.Points)
		return nil
	})
}

// Touch отмечает активность пользователя
func (r *UserRepository) Touch(ctx context.Context, id string) error {
	_, err := r.Update(ctx, id, func(u *domain.User) error {
		u.LastSeen = r.now()
		return nil
	})
	return err
}

// AddFriend подписывает userID на friendID
func (r *UserRepository) AddFriend(ctx context.Context, userID, friendID string) (*domain.User, error) {
	if userID == friendID {
		return nil, ErrSelfFollow
	}
	if _, err := r.get(ctx, friendID); err != nil {
		return nil, err
	}
	return r.Update(ctx, userID, func(u *domain.User) error {
		if u.HasFriend(friendID) {
			return ErrAlreadyFriend
		}
		u.FriendIDs = append(u.FriendIDs, friendID)
		return nil
	})
}

// List возвращает все профили
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	keys, err := r.kv.Keys(ctx, userPrefix)
	if err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0, len(keys))
	for _, k := range keys {
		u, err := r.get(ctx, strings.TrimPrefix(k, userPrefix))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// Friends - карточки друзей пользователя, удаленные профили пропускаются
func (r *UserRepository) Friends(ctx context.Context, id string) ([]domain.Friend, error) {
	u, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := r.now()
	friends := make([]domain.Friend, 0, len(u.FriendIDs))
	for _, fid := range u.FriendIDs {
		f, err := r.get(ctx, fid)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		friends = append(friends, f.AsFriend(now))
	}
	return friends, nil
}
