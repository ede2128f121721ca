package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/repository/recordstore"
	"github.com/dgpe-mr/patrimoine_control/internal/pkg/config"
	"github.com/dgpe-mr/patrimoine_control/internal/pkg/redistools"
	"github.com/redis/go-redis/v9"
)

// SnapshotStore keeps every collection under one redis key, no expiry.
type SnapshotStore struct {
	rdb *redis.Client
}

func New(ctx context.Context, cfg config.RedisStore) (SnapshotStore, error) {
	rdb := redis.NewClient(&redis.Options{ //nolint:exhaustruct
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := redistools.Connect(ctx, rdb); err != nil {
		return SnapshotStore{}, fmt.Errorf("connect error: %w", err)
	}

	return SnapshotStore{
		rdb: rdb,
	}, nil
}

func key(c recordstore.Collection) string {
	return "collection:" + string(c)
}

func (s SnapshotStore) Load(ctx context.Context, c recordstore.Collection) ([]byte, error) {
	blob, err := s.rdb.Get(ctx, key(c)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, recordstore.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("get error: %w", err)
	}

	return blob, nil
}

func (s SnapshotStore) Save(ctx context.Context, c recordstore.Collection, blob []byte) error {
	if err := s.rdb.Set(ctx, key(c), blob, 0).Err(); err != nil {
		return fmt.Errorf("set error: %w", err)
	}

	return nil
}

func (s SnapshotStore) Delete(ctx context.Context, c recordstore.Collection) error {
	if err := s.rdb.Del(ctx, key(c)).Err(); err != nil {
		return fmt.Errorf("del error: %w", err)
	}

	return nil
}

func (s SnapshotStore) Shutdown(_ context.Context) error {
	if err := s.rdb.Close(); err != nil {
		return fmt.Errorf("close error: %w", err)
	}

	return nil
}
