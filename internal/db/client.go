// Package db opens and verifies connections for configured aliases. All four
// engines are driven through database/sql so the catalog adapters and the
// query layer see one connection surface.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	_ "github.com/sijms/go-ora/v2"

	"dbscout/internal/config"
	"dbscout/internal/dialect"
)

// Client is a live connection to one configured alias.
type Client struct {
	Alias string
	Kind  dialect.Kind
	db    *sql.DB
}

// Open resolves the alias to a dialect, builds its DSN, and connects.
// The caller owns the client and must Close it.
func Open(ctx context.Context, alias string) (*Client, error) {
	kind, err := config.DialectFor(alias)
	if err != nil {
		return nil, err
	}
	dsn, err := config.DSN(alias, kind)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driverName(kind), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", alias, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", alias, err)
	}

	return &Client{Alias: alias, Kind: kind, db: conn}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.db.Close()
}

// DB returns the underlying database handle.
func (c *Client) DB() *sql.DB {
	return c.db
}

func driverName(k dialect.Kind) string {
	switch k {
	case dialect.Oracle:
		return "oracle"
	case dialect.MySQL:
		return "mysql"
	case dialect.Postgres:
		return "pgx"
	case dialect.SQLServer:
		return "sqlserver"
	}
	return ""
}
