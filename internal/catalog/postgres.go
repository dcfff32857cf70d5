package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"dbscout/internal/dialect"
)

type postgresEngine struct{}

func (postgresEngine) inspect(ctx context.Context, conn *sql.DB, schema, table string) (*TableInfo, error) {
	info := newTableInfo(dialect.Postgres, schema, table)

	var comment sql.NullString
	err := conn.QueryRowContext(ctx, `
		SELECT obj_description(c.oid) FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relname = $2`, schema, table).Scan(&comment)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to read table comment: %w", err)
	}
	info.TableComment = comment.String

	rows, err := conn.QueryContext(ctx, `
		SELECT a.attname, format_type(a.atttypid, a.atttypmod),
		       NOT a.attnotnull, pg_get_expr(d.adbin, d.adrelid),
		       col_description(a.attrelid, a.attnum)
		FROM pg_attribute a
		JOIN pg_class c ON c.oid = a.attrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		LEFT JOIN pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
		WHERE n.nspname = $1 AND c.relname = $2 AND a.attnum > 0 AND NOT a.attisdropped
		ORDER BY a.attnum`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			name, dataType            string
			nullable                  bool
			defaultVal, columnComment sql.NullString
		)
		if err := rows.Scan(&name, &dataType, &nullable, &defaultVal, &columnComment); err != nil {
			return nil, err
		}
		col := Column{
			Name:     name,
			DataType: dataType,
			Nullable: nullable,
			Comment:  columnComment.String,
		}
		if defaultVal.Valid {
			v := defaultVal.String
			col.Default = &v
		}
		info.Columns = append(info.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	indexes, err := postgresIndexes(ctx, conn, schema, table)
	if err != nil {
		return nil, err
	}
	info.Indexes = indexes

	// Partition introspection is out of scope for PostgreSQL; the table may
	// still be partitioned, but the canonical model reports none.
	info.Partitions = []Partition{}

	stats, err := postgresStatistics(ctx, conn, schema, table)
	if err != nil {
		return nil, err
	}
	info.Statistics = stats

	return info, nil
}

func postgresIndexes(ctx context.Context, conn *sql.DB, schema, table string) ([]Index, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT i.relname, am.amname,
		       CASE WHEN ix.indisunique THEN 'UNIQUE' ELSE 'NONUNIQUE' END,
		       a.attname,
		       array_position(ix.indkey, a.attnum)
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_am am ON am.oid = i.relam
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		WHERE n.nspname = $1 AND t.relname = $2
		ORDER BY i.relname, 5`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read indexes: %w", err)
	}
	defer rows.Close()

	var raw []indexRow
	for rows.Next() {
		var r indexRow
		if err := rows.Scan(&r.name, &r.indexTyp, &r.unique, &r.column, &r.position); err != nil {
			return nil, err
		}
		raw = append(raw, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return foldIndexes(raw), nil
}

func postgresStatistics(ctx context.Context, conn *sql.DB, schema, table string) (*Statistics, error) {
	var liveTuples, totalSize sql.NullInt64
	err := conn.QueryRowContext(ctx, `
		SELECT s.n_live_tup, pg_total_relation_size(c.oid)
		FROM pg_stat_user_tables s
		JOIN pg_class c ON c.relname = s.relname
		JOIN pg_namespace n ON n.oid = c.relnamespace AND n.nspname = s.schemaname
		WHERE s.schemaname = $1 AND s.relname = $2`,
		schema, table).Scan(&liveTuples, &totalSize)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read statistics: %w", err)
	}
	return newStatistics(liveTuples, totalSize, sql.NullInt64{}, sql.NullTime{}), nil
}

func (postgresEngine) search(ctx context.Context, conn *sql.DB, opts SearchOptions) ([]ColumnMatch, error) {
	m, err := newMatcher(opts, strings.ToLower)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT n.nspname, c.relname, a.attname,
		       format_type(a.atttypid, a.atttypmod),
		       NOT a.attnotnull,
		       COALESCE(col_description(a.attrelid, a.attnum), '') AS col_comment,
		       COALESCE(obj_description(c.oid), '') AS tbl_comment
		FROM pg_attribute a
		JOIN pg_class c ON c.oid = a.attrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE a.attnum > 0 AND NOT a.attisdropped
		  AND c.relkind IN ('r', 'v', 'm')`
	var args []any
	if opts.Schema != "" {
		query += " AND n.nspname = " + dialect.Placeholder(dialect.Postgres, 1)
		args = append(args, opts.Schema)
	} else {
		query += " AND n.nspname NOT IN ('pg_catalog', 'information_schema')"
	}
	query += " ORDER BY n.nspname, c.relname, a.attnum"

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search metadata: %w", err)
	}
	defer rows.Close()

	matches := []ColumnMatch{}
	for rows.Next() {
		if len(matches) >= opts.limit() {
			break
		}
		var (
			namespace, tableName, columnName, dataType string
			nullable                                   bool
			columnComment, tableComment                string
		)
		if err := rows.Scan(&namespace, &tableName, &columnName, &dataType,
			&nullable, &columnComment, &tableComment); err != nil {
			return nil, err
		}
		if !m.matchRow(tableName, columnName, tableComment, columnComment) {
			continue
		}
		matches = append(matches, ColumnMatch{
			Schema:        namespace,
			Table:         tableName,
			TableComment:  tableComment,
			Column:        columnName,
			DataType:      dataType,
			Nullable:      nullable,
			ColumnComment: columnComment,
		})
	}
	return matches, rows.Err()
}
