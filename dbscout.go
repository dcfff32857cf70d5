// Package dbscout inspects relational database catalogs and runs guarded
// read-only queries against Oracle, MySQL, PostgreSQL, and SQL Server.
//
// Connections are named by alias: an alias FOO resolves to the environment
// variables FOO_TYPE, FOO_HOST, FOO_PORT, FOO_USERNAME, FOO_PASSWORD, and
// FOO_DATABASE (Oracle also accepts FOO_DSN). A .env file in the working
// directory is loaded automatically by the CLI.
//
// # Quick Start
//
//	info, err := dbscout.InspectTable(ctx, "DWH", "SALES", "DIM_CUSTOMER")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, col := range info.Columns {
//		fmt.Println(col.Name, col.DataType)
//	}
//
// # Read-Only Guarantee
//
// RunQuery and ExplainQuery refuse anything that is not a SELECT, WITH, or
// EXPLAIN statement; mutating keywords are rejected even when hidden behind
// comments or stacked after a semicolon. SELECT results are additionally
// capped with the engine's own pagination idiom so a stray full-table query
// cannot flood the client.
package dbscout

import (
	"context"
	"strings"
	"time"

	"dbscout/internal/catalog"
	"dbscout/internal/db"
	"dbscout/internal/query"
	"dbscout/internal/source"
)

// InspectTable returns the structure of one table: columns, indexes,
// partitions, and optimizer statistics, normalized across engines.
func InspectTable(ctx context.Context, alias, schema, table string) (*catalog.TableInfo, error) {
	client, err := db.Open(ctx, alias)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return catalog.Inspect(ctx, client, schema, table)
}

// SearchMetadata finds tables and columns whose names or comments match a
// keyword. Matching happens client-side so names fold per the engine's
// identifier convention while comments keep their original case.
func SearchMetadata(ctx context.Context, alias string, opts catalog.SearchOptions) ([]catalog.ColumnMatch, error) {
	client, err := db.Open(ctx, alias)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return catalog.Search(ctx, client, opts)
}

// SearchProcedures finds stored procedures, packages, and functions whose
// source references a table or text, or fetches one object's source by
// name. Oracle only; other engines return source.ErrUnsupportedDialect.
func SearchProcedures(ctx context.Context, alias string, opts source.Options) ([]source.Match, error) {
	client, err := db.Open(ctx, alias)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return source.Search(ctx, client, opts)
}

// RunQuery executes a read-only statement with a row cap. The guard runs
// before any connection is opened, so an unsafe statement fails fast even
// when the alias is not configured.
func RunQuery(ctx context.Context, alias, sqlText string, maxRows int) (*query.Result, error) {
	if !query.IsReadOnly(sqlText) {
		return nil, &query.UnsafeQueryError{Statement: strings.TrimSpace(sqlText)}
	}

	client, err := db.Open(ctx, alias)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return query.Run(ctx, client, sqlText, maxRows)
}

// ExplainQuery produces the execution plan of a read-only statement
// without executing it. Oracle plans come with a findings list.
func ExplainQuery(ctx context.Context, alias, sqlText string) (*query.Plan, error) {
	if !query.IsReadOnly(sqlText) {
		return nil, &query.UnsafeQueryError{Statement: strings.TrimSpace(sqlText)}
	}

	client, err := db.Open(ctx, alias)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return query.Explain(ctx, client, sqlText)
}

// VerifyConnection opens the aliased connection and runs the engine's ping
// statement. A zero timeout uses db.DefaultVerifyTimeout.
func VerifyConnection(ctx context.Context, alias string, timeout time.Duration) error {
	return db.Verify(ctx, alias, timeout)
}
