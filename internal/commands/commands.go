package commands

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"dealtracker/internal/config"
	"dealtracker/pkg/database"
)

type Globals struct {
	Debug   bool
	Version string
	Config  string
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    16 * 1024,
	}
}

// loadConfig reads the configuration shared by every command.
func loadConfig(ctx context.Context, globals *Globals) (*config.Config, error) {
	cfg, err := config.Load(globals.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("environment", cfg.Environment).Msg("configuration loaded")
	return cfg, nil
}

func poolConfig(cfg *config.Config) database.PoolConfig {
	return database.PoolConfig{
		ConnString: cfg.Database.URL,
		MaxConns:   cfg.Database.MaxConns,
		MinConns:   cfg.Database.MinConns,
	}
}
