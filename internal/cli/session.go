package cli

import (
	"context"
	"fmt"

	"github.com/lazypower/lifeclock/internal/config"
	"github.com/lazypower/lifeclock/internal/engine"
	"github.com/lazypower/lifeclock/internal/store"
)

// session is an initialized engine plus the store and config behind it.
type session struct {
	cfg    config.Config
	store  *store.Fallback
	engine *engine.Engine
}

func (s *session) Close() {
	s.engine.Close()
	s.store.Close()
}

func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
	}
	return config.Load(path)
}

// openSession loads config, opens the store and initializes the engine.
// A store that cannot be opened degrades to memory only; only config errors
// are returned.
func openSession(ctx context.Context, opts ...engine.EngineOption) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, err
	}

	st := store.OpenFallback(dbPath)
	eng := engine.New(st, append([]engine.EngineOption{engine.WithTickInterval(cfg.Countdown.Tick)}, opts...)...)
	eng.Init(ctx)

	return &session{cfg: cfg, store: st, engine: eng}, nil
}

func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.Database.Path != "" {
		return cfg.Database.Path, nil
	}
	path, err := store.DefaultDBPath()
	if err != nil {
		return "", fmt.Errorf("resolve db path: %w", err)
	}
	return path, nil
}
