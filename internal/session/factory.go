package session

import (
	"context"
	"fmt"
	"strings"
)

const (
	StoreModeAuto   = "auto"
	StoreModeLocal  = "local"
	StoreModeRemote = "remote"
)

// StoreConfig selects and parameterizes the backend.
type StoreConfig struct {
	Mode        string
	DatabaseURL string
}

// RemoteConfigured reports whether the config resolves to the Postgres backend.
func (c StoreConfig) RemoteConfigured() bool {
	switch strings.ToLower(strings.TrimSpace(c.Mode)) {
	case StoreModeRemote:
		return true
	case StoreModeLocal:
		return false
	default:
		return strings.TrimSpace(c.DatabaseURL) != ""
	}
}

// NewStore creates a postgres-backed store when remote mode is configured,
// otherwise in-memory.
func NewStore(ctx context.Context, cfg StoreConfig, opts ...Option) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case "", StoreModeAuto, StoreModeLocal, StoreModeRemote:
	default:
		return nil, fmt.Errorf("%w: unknown store mode %q (expected auto|local|remote)", ErrConfiguration, cfg.Mode)
	}
	if !cfg.RemoteConfigured() {
		return NewInMemoryStore(opts...), nil
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("%w: remote store selected but DATABASE_URL is empty", ErrConfiguration)
	}
	return NewPostgresStore(ctx, cfg.DatabaseURL)
}
