package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"dbscout/internal/dialect"
)

type mysqlEngine struct{}

func (mysqlEngine) inspect(ctx context.Context, conn *sql.DB, schema, table string) (*TableInfo, error) {
	info := newTableInfo(dialect.MySQL, schema, table)

	var comment sql.NullString
	err := conn.QueryRowContext(ctx, `
		SELECT TABLE_COMMENT FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?`, schema, table).Scan(&comment)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to read table comment: %w", err)
	}
	info.TableComment = comment.String

	rows, err := conn.QueryContext(ctx, `
		SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT, COLUMN_COMMENT
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			name, columnType, nullable string
			defaultVal, columnComment  sql.NullString
		)
		if err := rows.Scan(&name, &columnType, &nullable, &defaultVal, &columnComment); err != nil {
			return nil, err
		}
		col := Column{
			Name:     name,
			DataType: columnType,
			Nullable: nullable == "YES",
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

	indexes, err := mysqlIndexes(ctx, conn, schema, table)
	if err != nil {
		return nil, err
	}
	info.Indexes = indexes

	partitions, err := mysqlPartitions(ctx, conn, schema, table)
	if err != nil {
		return nil, err
	}
	info.Partitions = partitions

	stats, err := mysqlStatistics(ctx, conn, schema, table)
	if err != nil {
		return nil, err
	}
	info.Statistics = stats

	return info, nil
}

func mysqlIndexes(ctx context.Context, conn *sql.DB, schema, table string) ([]Index, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT INDEX_NAME, INDEX_TYPE, NON_UNIQUE, COLUMN_NAME, SEQ_IN_INDEX
		FROM INFORMATION_SCHEMA.STATISTICS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY INDEX_NAME, SEQ_IN_INDEX`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read indexes: %w", err)
	}
	defer rows.Close()

	var raw []indexRow
	for rows.Next() {
		var (
			r         indexRow
			nonUnique int64
		)
		if err := rows.Scan(&r.name, &r.indexTyp, &nonUnique, &r.column, &r.position); err != nil {
			return nil, err
		}
		if nonUnique == 0 {
			r.unique = "UNIQUE"
		} else {
			r.unique = "NONUNIQUE"
		}
		raw = append(raw, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return foldIndexes(raw), nil
}

func mysqlPartitions(ctx context.Context, conn *sql.DB, schema, table string) ([]Partition, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT PARTITION_NAME, PARTITION_ORDINAL_POSITION, PARTITION_DESCRIPTION,
		       TABLE_ROWS, PARTITION_METHOD
		FROM INFORMATION_SCHEMA.PARTITIONS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? AND PARTITION_NAME IS NOT NULL
		ORDER BY PARTITION_ORDINAL_POSITION`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read partitions: %w", err)
	}
	defer rows.Close()

	partitions := []Partition{}
	for rows.Next() {
		var (
			name              string
			position          int64
			highValue, method sql.NullString
			numRows           sql.NullInt64
		)
		if err := rows.Scan(&name, &position, &highValue, &numRows, &method); err != nil {
			return nil, err
		}
		p := Partition{Name: name, Position: position}
		if highValue.Valid {
			v := highValue.String
			p.HighValue = &v
		}
		if numRows.Valid {
			v := numRows.Int64
			p.NumRows = &v
		}
		if method.Valid {
			v := method.String
			p.Compression = &v
		}
		partitions = append(partitions, p)
	}
	return partitions, rows.Err()
}

func mysqlStatistics(ctx context.Context, conn *sql.DB, schema, table string) (*Statistics, error) {
	var (
		tableRows, dataLength, avgRowLength sql.NullInt64
		updateTime                          sql.NullTime
	)
	err := conn.QueryRowContext(ctx, `
		SELECT TABLE_ROWS, DATA_LENGTH, AVG_ROW_LENGTH, UPDATE_TIME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?`,
		schema, table).Scan(&tableRows, &dataLength, &avgRowLength, &updateTime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read statistics: %w", err)
	}
	return newStatistics(tableRows, dataLength, avgRowLength, updateTime), nil
}

func (mysqlEngine) search(ctx context.Context, conn *sql.DB, opts SearchOptions) ([]ColumnMatch, error) {
	m, err := newMatcher(opts, strings.ToUpper)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT c.TABLE_SCHEMA, c.TABLE_NAME, c.COLUMN_NAME, c.COLUMN_TYPE,
		       c.IS_NULLABLE, c.COLUMN_COMMENT,
		       COALESCE(t.TABLE_COMMENT, '') AS TBL_COMMENT
		FROM INFORMATION_SCHEMA.COLUMNS c
		LEFT JOIN INFORMATION_SCHEMA.TABLES t
		    ON t.TABLE_SCHEMA = c.TABLE_SCHEMA AND t.TABLE_NAME = c.TABLE_NAME
		WHERE 1=1`
	var args []any
	if opts.Schema != "" {
		query += " AND c.TABLE_SCHEMA = " + dialect.Placeholder(dialect.MySQL, 1)
		args = append(args, opts.Schema)
	}
	query += " ORDER BY c.TABLE_SCHEMA, c.TABLE_NAME, c.ORDINAL_POSITION"

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
			tableSchema, tableName, columnName, columnType, nullable string
			columnComment, tableComment                              sql.NullString
		)
		if err := rows.Scan(&tableSchema, &tableName, &columnName, &columnType,
			&nullable, &columnComment, &tableComment); err != nil {
			return nil, err
		}
		if !m.matchRow(tableName, columnName, tableComment.String, columnComment.String) {
			continue
		}
		matches = append(matches, ColumnMatch{
			Schema:        tableSchema,
			Table:         tableName,
			TableComment:  tableComment.String,
			Column:        columnName,
			DataType:      columnType,
			Nullable:      nullable == "YES",
			ColumnComment: columnComment.String,
		})
	}
	return matches, rows.Err()
}
