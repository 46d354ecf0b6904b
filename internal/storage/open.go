package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Drivers accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Options selects and locates a backend.
type Options struct {
	Driver      string
	SQLitePath  string
	PostgresURL string
}

// Open returns the backend named by opts.Driver.
func Open(ctx context.Context, opts Options, log zerolog.Logger) (Backend, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		return NewSQLiteStore(ctx, opts.SQLitePath, log)
	case DriverPostgres:
		return NewPostgresStore(ctx, opts.PostgresURL, log)
	case DriverMemory:
		log.Warn().Msg("using in-memory store, positions will not be kept")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
