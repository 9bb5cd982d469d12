package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/painel-admin-api/pkg/cache"
	"github.com/noah-isme/painel-admin-api/pkg/config"
	"github.com/noah-isme/painel-admin-api/pkg/database"
	"github.com/noah-isme/painel-admin-api/pkg/kvstore"
)

// OpenKVStore builds the grades ledger backend selected by NOTAS_STORE. The
// returned close function releases any connection opened here.
func OpenKVStore(ctx context.Context, cfg *config.Config) (kvstore.Store, func(), error) {
	noop := func() {}
	switch cfg.Notas.Store {
	case "", config.NotasStoreMemory:
		return kvstore.NewMemory(), noop, nil
	case config.NotasStoreNone:
		return kvstore.Unavailable{}, noop, nil
	case config.NotasStoreRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		return NewRedisKVRepository(client), func() { _ = client.Close() }, nil
	case config.NotasStorePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, noop, err
		}
		repo := NewPostgresKVRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return repo, func() { _ = db.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown NOTAS_STORE %q", cfg.Notas.Store)
	}
}
