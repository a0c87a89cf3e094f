package store

import (
	"fmt"

	"github.com/existflow/projtrack/internal/config"
	"github.com/existflow/projtrack/internal/db"
)

// Open creates the store selected by cfg.Driver
func Open(cfg config.Storage) (Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return NewMemoryStore()
	case config.DriverPostgres:
		conn, err := db.OpenPostgres(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(conn), nil
	case config.DriverSQLite, "":
		path := cfg.Path
		if path == "" {
			var err error
			if path, err = db.DefaultDBPath(); err != nil {
				return nil, err
			}
		}
		conn, err := db.Open(path)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(conn), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
