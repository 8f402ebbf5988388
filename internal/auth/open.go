package auth

import (
	"context"

	"github.com/threadswap/storefront/internal/config"
	"github.com/threadswap/storefront/internal/db"
)

// OpenStore builds the TokenStore selected by cfg.SessionStore. The
// returned func releases its connection.
func OpenStore(ctx context.Context, cfg *config.Config) (TokenStore, func(), error) {
	switch cfg.SessionStore {
	case config.StoreRedis:
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisStore(rdb, cfg.SessionName), func() { _ = rdb.Close() }, nil
	case config.StorePostgres:
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgresStore(pool, cfg.SessionName), pool.Close, nil
	default:
		return NewFileStore(cfg.SessionFile), func() {}, nil
	}
}
