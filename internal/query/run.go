package query

import (
	"context"
	"strings"
	"time"

	"dbscout/internal/db"
)

// DefaultRowLimit caps result sets when the caller does not pick a limit.
const DefaultRowLimit = 100

// Result carries the outcome of a guarded query.
type Result struct {
	Columns         []string `json:"columns"`
	Rows            [][]any  `json:"rows"`
	RowCount        int      `json:"row_count"`
	ExecutionTimeMS int64    `json:"execution_time_ms"`
	Truncated       bool     `json:"truncated"`
	RowLimit        int      `json:"row_limit"`
}

// Run executes a read-only statement and returns at most maxRows rows.
// SELECT statements are rewritten with the engine's pagination idiom; WITH
// and EXPLAIN statements run as written and are capped client-side. One
// extra row is fetched past the cap so Truncated reflects the presence of
// more data, never a guess.
func Run(ctx context.Context, client *db.Client, sqlText string, maxRows int) (*Result, error) {
	if !IsReadOnly(sqlText) {
		return nil, &UnsafeQueryError{Statement: strings.TrimSpace(sqlText)}
	}
	if maxRows <= 0 {
		maxRows = DefaultRowLimit
	}

	executed := sqlText
	if isPlainSelect(sqlText) {
		executed = WrapWithLimit(sqlText, maxRows+1, client.Kind)
	}

	start := time.Now()
	rows, err := client.DB().QueryContext(ctx, executed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &Result{
		Columns:  columns,
		Rows:     [][]any{},
		RowLimit: maxRows,
	}

	for rows.Next() {
		if len(result.Rows) >= maxRows {
			result.Truncated = true
			break
		}
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, normalizeRow(values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result.RowCount = len(result.Rows)
	result.ExecutionTimeMS = time.Since(start).Milliseconds()
	return result, nil
}

func isPlainSelect(sqlText string) bool {
	upper := strings.ToUpper(strings.TrimSpace(stripComments(sqlText)))
	return strings.HasPrefix(upper, "SELECT")
}

// normalizeRow converts driver-specific scan values into JSON-friendly
// ones: []byte becomes string, time.Time stays as is.
func normalizeRow(values []any) []any {
	for i, v := range values {
		if b, ok := v.([]byte); ok {
			values[i] = string(b)
		}
	}
	return values
}
