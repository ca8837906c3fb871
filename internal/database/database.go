// Package database opens the store selected by configuration.
package database

import (
	"context"
	"fmt"

	"counseling-app-server/internal/config"
	"counseling-app-server/internal/store"
	"counseling-app-server/internal/store/mongostore"
	"counseling-app-server/internal/store/sqlstore"

	"go.uber.org/zap"
)

// Open connects to the configured database and prepares its schema or indexes.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		s, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		log.Info("Connected to MongoDB", zap.String("database", cfg.Name))
		return s, nil
	case config.DriverMySQL, config.DriverPostgres:
		s, err := sqlstore.Open(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
		}
		log.Info("Database connected and migrated",
			zap.String("driver", cfg.Driver),
			zap.String("host", cfg.Host),
			zap.String("database", cfg.Name))
		return s, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}
