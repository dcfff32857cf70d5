package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"dbscout/internal/db"
	"dbscout/internal/dialect"
)

// engine is the closed set of per-dialect catalog adapters. Exactly four
// implementations exist; adding an engine means adding a case to engineFor.
type engine interface {
	inspect(ctx context.Context, conn *sql.DB, schema, table string) (*TableInfo, error)
	search(ctx context.Context, conn *sql.DB, opts SearchOptions) ([]ColumnMatch, error)
}

func engineFor(k dialect.Kind) (engine, error) {
	switch k {
	case dialect.Oracle:
		return oracleEngine{}, nil
	case dialect.MySQL:
		return mysqlEngine{}, nil
	case dialect.Postgres:
		return postgresEngine{}, nil
	case dialect.SQLServer:
		return sqlserverEngine{}, nil
	}
	return nil, fmt.Errorf("no catalog adapter for dialect %q", k)
}

// Inspect reads the table's comment, columns, indexes, partitions, and
// statistics from the engine's catalog. A table that does not exist yields
// empty substructures, not an error.
func Inspect(ctx context.Context, client *db.Client, schema, table string) (*TableInfo, error) {
	eng, err := engineFor(client.Kind)
	if err != nil {
		return nil, err
	}
	return eng.inspect(ctx, client.DB(), schema, table)
}

// Search scans the engine's column catalog for tables and columns whose
// names or comments match the keyword.
func Search(ctx context.Context, client *db.Client, opts SearchOptions) ([]ColumnMatch, error) {
	eng, err := engineFor(client.Kind)
	if err != nil {
		return nil, err
	}
	return eng.search(ctx, client.DB(), opts)
}
