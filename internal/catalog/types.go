// Package catalog normalizes each engine's native metadata views into one
// canonical table model, and searches table/column metadata by name or
// comment. One adapter per engine; all results are request-scoped values.
package catalog

import (
	"database/sql"
	"time"

	"dbscout/internal/dialect"
)

// TableInfo is the canonical description of one table.
type TableInfo struct {
	Schema       string       `json:"schema"`
	Table        string       `json:"table"`
	DBType       dialect.Kind `json:"db_type"`
	TableComment string       `json:"table_comment"`
	Columns      []Column     `json:"columns"`
	Indexes      []Index      `json:"indexes"`
	Partitions   []Partition  `json:"partitions"`
	Statistics   *Statistics  `json:"statistics"`
}

// Column preserves the engine's own type spelling in DataType; columns are
// ordered by the engine's ordinal position.
type Column struct {
	Name     string  `json:"name"`
	DataType string  `json:"data_type"`
	Nullable bool    `json:"nullable"`
	Default  *string `json:"default"`
	Comment  string  `json:"comment"`
}

// Index is one aggregated index: Columns is the comma-joined column list in
// key position order, Unique keeps the engine's own unique/nonunique label.
type Index struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Unique  string `json:"unique"`
	Columns string `json:"columns"`
}

// Partition is one table partition, ordered by position.
type Partition struct {
	Name        string  `json:"name"`
	Position    int64   `json:"position"`
	HighValue   *string `json:"high_value"`
	NumRows     *int64  `json:"num_rows"`
	Compression *string `json:"compression"`
}

// Statistics carries optimizer statistics; nil when the engine has no
// statistics rows for the object.
type Statistics struct {
	NumRows      *int64     `json:"num_rows"`
	Blocks       *int64     `json:"blocks"`
	AvgRowLen    *int64     `json:"avg_row_len"`
	LastAnalyzed *time.Time `json:"last_analyzed"`
}

// ColumnMatch is one metadata search hit: a single column of a single table.
type ColumnMatch struct {
	Schema        string `json:"schema"`
	Table         string `json:"table"`
	TableComment  string `json:"table_comment"`
	Column        string `json:"column"`
	DataType      string `json:"data_type"`
	Nullable      bool   `json:"nullable"`
	ColumnComment string `json:"column_comment"`
}

func newStatistics(numRows, blocks, avgRowLen sql.NullInt64, lastAnalyzed sql.NullTime) *Statistics {
	s := &Statistics{}
	if numRows.Valid {
		v := numRows.Int64
		s.NumRows = &v
	}
	if blocks.Valid {
		v := blocks.Int64
		s.Blocks = &v
	}
	if avgRowLen.Valid {
		v := avgRowLen.Int64
		s.AvgRowLen = &v
	}
	if lastAnalyzed.Valid {
		v := lastAnalyzed.Time
		s.LastAnalyzed = &v
	}
	return s
}

func newTableInfo(kind dialect.Kind, schema, table string) *TableInfo {
	return &TableInfo{
		Schema:     schema,
		Table:      table,
		DBType:     kind,
		Columns:    []Column{},
		Indexes:    []Index{},
		Partitions: []Partition{},
	}
}
