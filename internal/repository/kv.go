package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("запись не найдена")

// KV - хранилище JSON-записей по непрозрачным строковым ключам.
// Реализации: Postgres, Redis и память (локальный запуск, тесты)
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys возвращает ключи с префиксом в лексикографическом порядке
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// читает запись и раскладывает JSON в out
func getJSON(ctx context.Context, kv KV, key string, out any) error {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func putJSON(ctx context.Context, kv KV, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Put(ctx, key, raw)
}
