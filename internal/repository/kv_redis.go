package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/redis/go-redis/v9"
)

// RedisKV хранит записи как обычные строковые ключи Redis
type RedisKV struct {
	rdb       *redis.Client
	namespace string
}

func NewRedisKV(rdb *redis.Client, namespace string) *RedisKV {
	return &RedisKV{rdb: rdb, namespace: namespace}
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.rdb.Get(ctx, r.namespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return v, err
}

func (r *RedisKV) Put(ctx context.Context, key string, value []byte) error {
	return r.rdb.Set(ctx, r.namespace+key, value, 0).Err()
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.namespace+key).Err()
}

func (r *RedisKV) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := r.rdb.Scan(ctx, 0, r.namespace+prefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(r.namespace):])
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}
