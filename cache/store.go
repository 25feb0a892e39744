package cache

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound - ключ отсутствует в кеше
	ErrNotFound = errors.New("ключ не найден в кеше")

	// ErrCorrupt - значение в кеше не удалось распаковать
	ErrCorrupt = errors.New("поврежденное значение в кеше")
)

// Store - хранилище артефактов прогноза "ключ - значение"
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// versioned добавляет к ключам префикс версии прогноза
type versioned struct {
	store   Store
	version int
}

// WithVersion возвращает хранилище, в котором ключи каждой версии прогноза не пересекаются
func WithVersion(store Store, version int) Store {
	return &versioned{store: store, version: version}
}

func (v *versioned) key(key string) string {
	return fmt.Sprintf("v%d:%s", v.version, key)
}

func (v *versioned) Get(ctx context.Context, key string) ([]byte, error) {
	return v.store.Get(ctx, v.key(key))
}

func (v *versioned) Set(ctx context.Context, key string, value []byte) error {
	return v.store.Set(ctx, v.key(key), value)
}
