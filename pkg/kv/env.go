package kv

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvConfig selects the backend pair for a conventional Scopes from
// environment variables.
type EnvConfig struct {
	// LocalBackend selects the Local-scope backend: "bolt", "sqlite", or
	// "memory".
	LocalBackend string `env:"KVBIND_LOCAL_BACKEND" envDefault:"bolt"`

	// LocalPath is the database file path for file-backed local backends.
	LocalPath string `env:"KVBIND_LOCAL_PATH" envDefault:"kvbind.db"`
}

// LoadEnvConfig reads EnvConfig from the environment.
func LoadEnvConfig() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Open assembles a Scopes from the configuration: the selected backend for
// Local, a MemoryStore for Session. The returned Scopes owns both backends
// and releases them through Close.
func (c EnvConfig) Open() (*Scopes, error) {
	var (
		local Store
		err   error
	)
	switch c.LocalBackend {
	case "bolt":
		local, err = OpenBolt(c.LocalPath)
	case "sqlite":
		local, err = OpenSQLite(c.LocalPath)
	case "memory":
		local = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown local backend %q", c.LocalBackend)
	}
	if err != nil {
		return nil, fmt.Errorf("open local backend: %w", err)
	}

	session := NewMemoryStore()

	scopes := &Scopes{Local: local, Session: session}
	if closer, ok := local.(interface{ Close() error }); ok {
		scopes.closers = append(scopes.closers, closer.Close)
	}
	scopes.closers = append(scopes.closers, session.Close)
	return scopes, nil
}

// OpenScopesFromEnv loads EnvConfig from the environment and opens it.
func OpenScopesFromEnv() (*Scopes, error) {
	cfg, err := LoadEnvConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Open()
}
