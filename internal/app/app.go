package app

import (
	"os"
	"path/filepath"

	"github.com/bunchhieng/pins/internal/config"
	"github.com/bunchhieng/pins/internal/storage"
)

// DefaultDBPath returns the default database path using the platform's config directory.
func DefaultDBPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "pins", "pins.db"), nil
}

// NewStorage opens the store described by cfg, falling back to the default path.
func NewStorage(cfg config.DatabaseConfig) (storage.Storage, error) {
	dbPath := cfg.Path
	if dbPath == "" {
		var err error
		dbPath, err = DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	var opts []storage.Option
	if cfg.MaxOpenConns > 0 {
		opts = append(opts, storage.WithMaxOpenConns(cfg.MaxOpenConns))
	}
	if cfg.BusyTimeout > 0 {
		opts = append(opts, storage.WithBusyTimeout(cfg.BusyTimeout))
	}
	return storage.NewSQLiteStorage(dbPath, opts...)
}

// App is the state shared by every command: the loaded configuration and an
// open store.
type App struct {
	Config  *config.Config
	Storage storage.Storage
}

// New opens the store for cfg.
func New(cfg *config.Config) (*App, error) {
	s, err := NewStorage(cfg.Database)
	if err != nil {
		return nil, err
	}
	return &App{Config: cfg, Storage: s}, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a.Storage == nil {
		return nil
	}
	return a.Storage.Close()
}
