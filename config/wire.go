package config

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/riskgate/store"
)

// OpenStore constructs the persistence backend the configuration selects.
// A "none" (or empty) type returns nil: the throttle then runs ephemeral.
func (c *Config) OpenStore(ctx context.Context) (store.Store, error) {
	switch c.Store.Type {
	case "file":
		return store.NewFile(c.Store.Path), nil
	case "sqlite":
		s, err := store.NewSQLite(c.Store.Path, c.Account.ID)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "redis":
		s, err := store.NewRedis(ctx, c.Store.Redis, c.Account.ID)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown store.type: %s", c.Store.Type)
	}
}

// NewLogger builds the process logger from the logging section.
func (c *Config) NewLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.Logging.Level)
	if err != nil || c.Logging.Level == "" {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if c.Logging.Pretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}
