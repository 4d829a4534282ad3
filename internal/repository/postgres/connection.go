package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/dtroode/dailyphrase/database"
)

// Connection owns the pgx pool and a database/sql handle on top of it.
type Connection struct {
	*pgxpool.Pool
	DB *sql.DB
}

func NewConnection(ctx context.Context, dsn string) (*Connection, error) {
	conf, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection pool: %w", err)
	}

	conn := &Connection{
		Pool: pool,
		DB:   stdlib.OpenDBFromPool(pool),
	}

	if err := database.Migrate(ctx, conn.DB); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return conn, nil
}

func (s *Connection) Close() error {
	var err error
	if s.DB != nil {
		err = s.DB.Close()
	}
	if s.Pool != nil {
		s.Pool.Close()
	}
	return err
}

func (s *Connection) Ping(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("connection pool is nil")
	}
	return s.DB.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}
