package docstore

import (
	"context"
	"fmt"

	"github.com/AlibekovAA/gym-api/internal/common/config"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
)

// Open connects the configured driver and wraps it with the circuit breaker.
func Open(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (*Guarded, error) {
	var (
		store Store
		err   error
	)

	switch cfg.Driver {
	case "postgres":
		store, err = NewPostgresStore(ctx, log, cfg.DatabaseURL)
	case "mongo":
		store, err = NewMongoStore(ctx, log, cfg.MongoURI, cfg.Database)
	case "memory":
		store = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	log.WithFields(ctx, logger.Fields{
		"driver": cfg.Driver,
		"action": "store_opened",
	}).Info("document store ready")

	return NewGuarded(store, log), nil
}

// Specs lists the collections the API needs; usernames are unique.
func Specs(cols config.Collections) []CollectionSpec {
	return []CollectionSpec{
		{Name: cols.Users, UniqueFields: []string{"username"}},
		{Name: cols.Trainings},
		{Name: cols.Availabilities},
		{Name: cols.Notifications},
	}
}
