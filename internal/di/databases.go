package di

import (
	"fmt"
	"path/filepath"

	"github.com/aristath/invesmart/internal/config"
	"github.com/aristath/invesmart/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens and migrates the cache database
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	if !cfg.Cache.Enabled {
		log.Info().Msg("Response cache disabled, skipping cache database")
		return container, nil
	}

	// cache.db - Disposable provider responses, rebuilt on demand
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}

	if err := cacheDB.Migrate(); err != nil {
		cacheDB.Close()
		return nil, fmt.Errorf("failed to migrate cache database: %w", err)
	}
	container.CacheDB = cacheDB

	log.Info().Str("path", cacheDB.Path()).Msg("Cache database initialized")

	return container, nil
}
