package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Storage drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverNone     = "none"
)

// Config selects and configures a backend.
type Config struct {
	Driver string      `mapstructure:"driver"`
	Dir    string      `mapstructure:"dir"`
	DSN    string      `mapstructure:"dsn"`
	Redis  RedisConfig `mapstructure:"redis"`
}

// New opens the configured backend. An empty driver selects the file store.
func New(cfg Config, logger *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case "", DriverFile:
		return NewFileStore(cfg.Dir, logger)
	case DriverSQLite, DriverPostgres:
		return NewSQLStore(cfg.Driver, cfg.DSN, logger)
	case DriverRedis:
		return NewRedisStore(cfg.Redis, logger)
	case DriverNone:
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Nop discards documents.
type Nop struct{}

func (Nop) Save(context.Context, *Document) error { return nil }

func (Nop) Load(context.Context, string) (*Document, error) { return nil, ErrNotFound }

func (Nop) Delete(context.Context, string) error { return nil }

func (Nop) Close() error { return nil }
