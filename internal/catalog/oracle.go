package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"dbscout/internal/dialect"
)

type oracleEngine struct{}

// oracleTypeString renders a column type the way Oracle spells it:
// character types carry their length, NUMBER carries precision and, when
// greater than zero, scale. Everything else is the bare type name.
func oracleTypeString(dataType string, length, precision, scale sql.NullInt64) string {
	if dataType == "VARCHAR2" || dataType == "CHAR" {
		return fmt.Sprintf("%s(%d)", dataType, length.Int64)
	}
	if dataType == "NUMBER" && precision.Valid && precision.Int64 > 0 {
		if scale.Valid && scale.Int64 > 0 {
			return fmt.Sprintf("%s(%d,%d)", dataType, precision.Int64, scale.Int64)
		}
		return fmt.Sprintf("%s(%d)", dataType, precision.Int64)
	}
	return dataType
}

func (oracleEngine) inspect(ctx context.Context, conn *sql.DB, schema, table string) (*TableInfo, error) {
	info := newTableInfo(dialect.Oracle, schema, table)

	var comment sql.NullString
	err := conn.QueryRowContext(ctx,
		"SELECT COMMENTS FROM ALL_TAB_COMMENTS WHERE OWNER = :1 AND TABLE_NAME = :2",
		schema, table).Scan(&comment)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to read table comment: %w", err)
	}
	info.TableComment = comment.String

	rows, err := conn.QueryContext(ctx, `
		SELECT c.COLUMN_NAME, c.DATA_TYPE, c.DATA_LENGTH, c.DATA_PRECISION,
		       c.DATA_SCALE, c.NULLABLE, c.DATA_DEFAULT,
		       NVL(cc.COMMENTS, '') AS COMMENTS
		FROM ALL_TAB_COLUMNS c
		LEFT JOIN ALL_COL_COMMENTS cc
		    ON cc.OWNER = c.OWNER AND cc.TABLE_NAME = c.TABLE_NAME AND cc.COLUMN_NAME = c.COLUMN_NAME
		WHERE c.OWNER = :1 AND c.TABLE_NAME = :2
		ORDER BY c.COLUMN_ID`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			name, dataType            string
			length, precision, scale  sql.NullInt64
			nullable                  string
			defaultVal, columnComment sql.NullString
		)
		if err := rows.Scan(&name, &dataType, &length, &precision, &scale, &nullable, &defaultVal, &columnComment); err != nil {
			return nil, err
		}
		col := Column{
			Name:     name,
			DataType: oracleTypeString(dataType, length, precision, scale),
			Nullable: nullable == "Y",
			Comment:  columnComment.String,
		}
		if defaultVal.Valid && strings.TrimSpace(defaultVal.String) != "" {
			v := defaultVal.String
			col.Default = &v
		}
		info.Columns = append(info.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	indexes, err := oracleIndexes(ctx, conn, schema, table)
	if err != nil {
		return nil, err
	}
	info.Indexes = indexes

	partitions, err := oraclePartitions(ctx, conn, schema, table)
	if err != nil {
		return nil, err
	}
	info.Partitions = partitions

	stats, err := oracleStatistics(ctx, conn, schema, table)
	if err != nil {
		return nil, err
	}
	info.Statistics = stats

	return info, nil
}

func oracleIndexes(ctx context.Context, conn *sql.DB, schema, table string) ([]Index, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT i.INDEX_NAME, i.INDEX_TYPE, i.UNIQUENESS, c.COLUMN_NAME, c.COLUMN_POSITION
		FROM ALL_INDEXES i
		JOIN ALL_IND_COLUMNS c
		    ON i.INDEX_NAME = c.INDEX_NAME AND i.TABLE_OWNER = c.TABLE_OWNER
		WHERE i.TABLE_OWNER = :1 AND i.TABLE_NAME = :2
		ORDER BY i.INDEX_NAME, c.COLUMN_POSITION`, schema, table)
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

func oraclePartitions(ctx context.Context, conn *sql.DB, schema, table string) ([]Partition, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT PARTITION_NAME, PARTITION_POSITION, HIGH_VALUE, NUM_ROWS, COMPRESSION
		FROM ALL_TAB_PARTITIONS
		WHERE TABLE_OWNER = :1 AND TABLE_NAME = :2
		ORDER BY PARTITION_POSITION`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read partitions: %w", err)
	}
	defer rows.Close()

	partitions := []Partition{}
	for rows.Next() {
		var (
			name                   string
			position               int64
			highValue, compression sql.NullString
			numRows                sql.NullInt64
		)
		if err := rows.Scan(&name, &position, &highValue, &numRows, &compression); err != nil {
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
		if compression.Valid {
			v := compression.String
			p.Compression = &v
		}
		partitions = append(partitions, p)
	}
	return partitions, rows.Err()
}

func oracleStatistics(ctx context.Context, conn *sql.DB, schema, table string) (*Statistics, error) {
	var (
		numRows, blocks, avgRowLen sql.NullInt64
		lastAnalyzed               sql.NullTime
	)
	err := conn.QueryRowContext(ctx, `
		SELECT NUM_ROWS, BLOCKS, AVG_ROW_LEN, LAST_ANALYZED
		FROM ALL_TABLES WHERE OWNER = :1 AND TABLE_NAME = :2`,
		schema, table).Scan(&numRows, &blocks, &avgRowLen, &lastAnalyzed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read statistics: %w", err)
	}
	return newStatistics(numRows, blocks, avgRowLen, lastAnalyzed), nil
}

func (oracleEngine) search(ctx context.Context, conn *sql.DB, opts SearchOptions) ([]ColumnMatch, error) {
	m, err := newMatcher(opts, strings.ToUpper)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT c.OWNER, c.TABLE_NAME, c.COLUMN_NAME, c.DATA_TYPE,
		       c.DATA_LENGTH, c.DATA_PRECISION, c.DATA_SCALE, c.NULLABLE,
		       NVL(cc.COMMENTS, '') AS COL_COMMENT,
		       NVL(tc.COMMENTS, '') AS TBL_COMMENT
		FROM ALL_TAB_COLUMNS c
		LEFT JOIN ALL_COL_COMMENTS cc
		    ON cc.OWNER = c.OWNER AND cc.TABLE_NAME = c.TABLE_NAME AND cc.COLUMN_NAME = c.COLUMN_NAME
		LEFT JOIN ALL_TAB_COMMENTS tc
		    ON tc.OWNER = c.OWNER AND tc.TABLE_NAME = c.TABLE_NAME
		WHERE 1=1`
	var args []any
	if opts.Schema != "" {
		query += " AND c.OWNER = " + dialect.Placeholder(dialect.Oracle, 1)
		args = append(args, strings.ToUpper(opts.Schema))
	}
	query += " ORDER BY c.OWNER, c.TABLE_NAME, c.COLUMN_ID"

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
			owner, tableName, columnName, dataType string
			length, precision, scale               sql.NullInt64
			nullable                               string
			columnComment, tableComment            sql.NullString
		)
		if err := rows.Scan(&owner, &tableName, &columnName, &dataType,
			&length, &precision, &scale, &nullable, &columnComment, &tableComment); err != nil {
			return nil, err
		}
		if !m.matchRow(tableName, columnName, tableComment.String, columnComment.String) {
			continue
		}
		matches = append(matches, ColumnMatch{
			Schema:        owner,
			Table:         tableName,
			TableComment:  tableComment.String,
			Column:        columnName,
			DataType:      oracleTypeString(dataType, length, precision, scale),
			Nullable:      nullable == "Y",
			ColumnComment: columnComment.String,
		})
	}
	return matches, rows.Err()
}
