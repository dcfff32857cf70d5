package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"dbscout/internal/dialect"
)

type sqlserverEngine struct{}

// sqlserverMaxLength is the max_length sentinel for varchar(max)/nvarchar(max).
const sqlserverMaxLength = -1

var (
	sqlserverCharTypes    = map[string]bool{"varchar": true, "nvarchar": true, "char": true, "nchar": true}
	sqlserverDecimalTypes = map[string]bool{"decimal": true, "numeric": true}
)

// sqlserverTypeString assembles the rendered type from the base type name
// and a suffix chosen by semantic category: character-length types carry
// (N) or (MAX), decimal types carry (precision,scale), everything else is
// the bare name.
func sqlserverTypeString(baseType string, maxLength, precision, scale int64) string {
	switch {
	case sqlserverCharTypes[baseType]:
		if maxLength == sqlserverMaxLength {
			return baseType + "(MAX)"
		}
		return fmt.Sprintf("%s(%d)", baseType, maxLength)
	case sqlserverDecimalTypes[baseType]:
		return fmt.Sprintf("%s(%d,%d)", baseType, precision, scale)
	default:
		return baseType
	}
}

func (sqlserverEngine) inspect(ctx context.Context, conn *sql.DB, schema, table string) (*TableInfo, error) {
	info := newTableInfo(dialect.SQLServer, schema, table)

	var comment sql.NullString
	err := conn.QueryRowContext(ctx, `
		SELECT CAST(value AS NVARCHAR(MAX))
		FROM sys.extended_properties ep
		JOIN sys.tables t ON ep.major_id = t.object_id
		JOIN sys.schemas s ON t.schema_id = s.schema_id
		WHERE s.name = @p1 AND t.name = @p2
		    AND ep.minor_id = 0 AND ep.name = 'MS_Description'`, schema, table).Scan(&comment)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to read table comment: %w", err)
	}
	info.TableComment = comment.String

	rows, err := conn.QueryContext(ctx, `
		SELECT c.name, TYPE_NAME(c.user_type_id), c.max_length, c.precision, c.scale,
		       c.is_nullable,
		       OBJECT_DEFINITION(c.default_object_id) AS default_value,
		       CAST(ep.value AS NVARCHAR(MAX)) AS description
		FROM sys.columns c
		JOIN sys.tables t ON c.object_id = t.object_id
		JOIN sys.schemas s ON t.schema_id = s.schema_id
		LEFT JOIN sys.extended_properties ep
		    ON ep.major_id = c.object_id AND ep.minor_id = c.column_id AND ep.name = 'MS_Description'
		WHERE s.name = @p1 AND t.name = @p2
		ORDER BY c.column_id`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			name, baseType            string
			maxLength, prec, scale    int64
			nullable                  bool
			defaultVal, columnComment sql.NullString
		)
		if err := rows.Scan(&name, &baseType, &maxLength, &prec, &scale, &nullable, &defaultVal, &columnComment); err != nil {
			return nil, err
		}
		col := Column{
			Name:     name,
			DataType: sqlserverTypeString(baseType, maxLength, prec, scale),
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

	indexes, err := sqlserverIndexes(ctx, conn, schema, table)
	if err != nil {
		return nil, err
	}
	info.Indexes = indexes

	partitions, err := sqlserverPartitions(ctx, conn, schema, table)
	if err != nil {
		return nil, err
	}
	info.Partitions = partitions

	stats, err := sqlserverStatistics(ctx, conn, schema, table)
	if err != nil {
		return nil, err
	}
	info.Statistics = stats

	return info, nil
}

func sqlserverIndexes(ctx context.Context, conn *sql.DB, schema, table string) ([]Index, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT i.name, i.type_desc,
		       CASE WHEN i.is_unique = 1 THEN 'UNIQUE' ELSE 'NONUNIQUE' END,
		       c.name, ic.key_ordinal
		FROM sys.indexes i
		JOIN sys.tables t ON i.object_id = t.object_id
		JOIN sys.schemas s ON t.schema_id = s.schema_id
		JOIN sys.index_columns ic ON i.object_id = ic.object_id AND i.index_id = ic.index_id
		JOIN sys.columns c ON ic.object_id = c.object_id AND ic.column_id = c.column_id
		WHERE s.name = @p1 AND t.name = @p2 AND i.name IS NOT NULL
		ORDER BY i.name, ic.key_ordinal`, schema, table)
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

func sqlserverPartitions(ctx context.Context, conn *sql.DB, schema, table string) ([]Partition, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT p.partition_number, p.rows, ps.name AS partition_scheme
		FROM sys.partitions p
		JOIN sys.tables t ON p.object_id = t.object_id
		JOIN sys.schemas s ON t.schema_id = s.schema_id
		LEFT JOIN sys.indexes i ON p.object_id = i.object_id AND p.index_id = i.index_id
		LEFT JOIN sys.partition_schemes ps ON i.data_space_id = ps.data_space_id
		WHERE s.name = @p1 AND t.name = @p2 AND i.index_id <= 1
		ORDER BY p.partition_number`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read partitions: %w", err)
	}
	defer rows.Close()

	partitions := []Partition{}
	for rows.Next() {
		var (
			number  int64
			numRows sql.NullInt64
			scheme  sql.NullString
		)
		if err := rows.Scan(&number, &numRows, &scheme); err != nil {
			return nil, err
		}
		// A partition scheme is present only when the table is partitioned;
		// heaps and unpartitioned clustered tables report a single row with
		// no scheme.
		if !scheme.Valid {
			continue
		}
		p := Partition{Name: fmt.Sprintf("Partition_%d", number), Position: number}
		if numRows.Valid {
			v := numRows.Int64
			p.NumRows = &v
		}
		v := scheme.String
		p.Compression = &v
		partitions = append(partitions, p)
	}
	return partitions, rows.Err()
}

func sqlserverStatistics(ctx context.Context, conn *sql.DB, schema, table string) (*Statistics, error) {
	var (
		numRows, totalSpaceKB, avgRowKB sql.NullInt64
		lastStatsUpdate                 sql.NullTime
	)
	err := conn.QueryRowContext(ctx, `
		SELECT SUM(p.rows) AS num_rows,
		       SUM(a.total_pages) * 8 AS total_space_kb,
		       SUM(a.total_pages) * 8 / NULLIF(SUM(p.rows), 0) AS avg_row_kb,
		       MAX(stats_date(i.object_id, i.index_id)) AS last_stats_update
		FROM sys.tables t
		JOIN sys.schemas s ON t.schema_id = s.schema_id
		JOIN sys.indexes i ON t.object_id = i.object_id
		JOIN sys.partitions p ON i.object_id = p.object_id AND i.index_id = p.index_id
		JOIN sys.allocation_units a ON p.partition_id = a.container_id
		WHERE s.name = @p1 AND t.name = @p2
		GROUP BY t.object_id`,
		schema, table).Scan(&numRows, &totalSpaceKB, &avgRowKB, &lastStatsUpdate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read statistics: %w", err)
	}
	return newStatistics(numRows, totalSpaceKB, avgRowKB, lastStatsUpdate), nil
}

func (sqlserverEngine) search(ctx context.Context, conn *sql.DB, opts SearchOptions) ([]ColumnMatch, error) {
	m, err := newMatcher(opts, strings.ToUpper)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT s.name AS schema_name, t.name AS table_name, c.name AS column_name,
		       TYPE_NAME(c.user_type_id), c.max_length, c.precision, c.scale,
		       c.is_nullable,
		       CAST(ep_col.value AS NVARCHAR(MAX)) AS col_comment,
		       CAST(ep_tbl.value AS NVARCHAR(MAX)) AS tbl_comment
		FROM sys.columns c
		JOIN sys.tables t ON c.object_id = t.object_id
		JOIN sys.schemas s ON t.schema_id = s.schema_id
		LEFT JOIN sys.extended_properties ep_col
		    ON ep_col.major_id = c.object_id AND ep_col.minor_id = c.column_id
		    AND ep_col.name = 'MS_Description'
		LEFT JOIN sys.extended_properties ep_tbl
		    ON ep_tbl.major_id = t.object_id AND ep_tbl.minor_id = 0
		    AND ep_tbl.name = 'MS_Description'
		WHERE 1=1`
	var args []any
	if opts.Schema != "" {
		query += " AND s.name = " + dialect.Placeholder(dialect.SQLServer, 1)
		args = append(args, opts.Schema)
	}
	query += " ORDER BY s.name, t.name, c.column_id"

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
			schemaName, tableName, columnName, baseType string
			maxLength, prec, scale                      int64
			nullable                                    bool
			columnComment, tableComment                 sql.NullString
		)
		if err := rows.Scan(&schemaName, &tableName, &columnName, &baseType,
			&maxLength, &prec, &scale, &nullable, &columnComment, &tableComment); err != nil {
			return nil, err
		}
		if !m.matchRow(tableName, columnName, tableComment.String, columnComment.String) {
			continue
		}
		matches = append(matches, ColumnMatch{
			Schema:        schemaName,
			Table:         tableName,
			TableComment:  tableComment.String,
			Column:        columnName,
			DataType:      sqlserverTypeString(baseType, maxLength, prec, scale),
			Nullable:      nullable,
			ColumnComment: columnComment.String,
		})
	}
	return matches, rows.Err()
}
