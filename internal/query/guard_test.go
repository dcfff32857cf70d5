package query

import (
	"strings"
	"testing"
)

func TestIsReadOnly(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want bool
	}{
		{name: "plain select", sql: "SELECT * FROM employees", want: true},
		{name: "lowercase select", sql: "select id from t", want: true},
		{name: "cte", sql: "WITH x AS (SELECT 1 FROM dual) SELECT * FROM x", want: true},
		{name: "explain", sql: "EXPLAIN SELECT * FROM t", want: true},
		{name: "leading whitespace", sql: "   \n\tSELECT 1", want: true},
		{name: "trailing semicolon only", sql: "SELECT 1;", want: true},
		{name: "line comment before select", sql: "-- latest orders\nSELECT * FROM orders", want: true},
		{name: "block comment before select", sql: "/* audit */ SELECT 1 FROM dual", want: true},

		{name: "insert", sql: "INSERT INTO t VALUES (1)", want: false},
		{name: "update", sql: "UPDATE t SET a = 1", want: false},
		{name: "delete", sql: "DELETE FROM t", want: false},
		{name: "drop", sql: "DROP TABLE t", want: false},
		{name: "truncate", sql: "TRUNCATE TABLE t", want: false},
		{name: "merge", sql: "MERGE INTO t USING s ON (t.id = s.id) WHEN MATCHED THEN UPDATE SET a = 1", want: false},
		{name: "grant", sql: "GRANT SELECT ON t TO u", want: false},
		{name: "exec", sql: "EXEC sp_who", want: false},
		{name: "stacked statement", sql: "SELECT 1; DROP TABLE t", want: false},
		{name: "delete hidden in cte", sql: "WITH x AS (DELETE FROM t RETURNING *) SELECT * FROM x", want: false},
		{name: "keyword hidden behind comment", sql: "SELECT 1 /* ; */ ; DELETE FROM t", want: false},
		{name: "empty", sql: "", want: false},
		{name: "only comments", sql: "-- nothing here", want: false},
		{name: "random text", sql: "hello world", want: false},

		// Keyword substrings inside identifiers must not trip the guard.
		{name: "column named created_at", sql: "SELECT created_at FROM t", want: true},
		{name: "table named settings", sql: "SELECT * FROM settings", want: true},
		{name: "column named last_update_ts", sql: "SELECT last_update_ts FROM t", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsReadOnly(tt.sql); got != tt.want {
				t.Errorf("IsReadOnly(%q) = %v, want %v", tt.sql, got, tt.want)
			}
		})
	}
}

func TestStripComments(t *testing.T) {
	got := stripComments("SELECT a -- trailing\nFROM t /* multi\nline */ WHERE b = 1")
	for _, leaked := range []string{"trailing", "multi", "line */"} {
		if strings.Contains(got, leaked) {
			t.Errorf("comment text %q survived stripping: %q", leaked, got)
		}
	}
	for _, kept := range []string{"SELECT a", "FROM t", "WHERE b = 1"} {
		if !strings.Contains(got, kept) {
			t.Errorf("statement text %q lost during stripping: %q", kept, got)
		}
	}
}

func TestUnsafeQueryErrorMessage(t *testing.T) {
	err := &UnsafeQueryError{Statement: "DROP TABLE t"}
	if !strings.Contains(err.Error(), "DROP TABLE t") {
		t.Errorf("error should carry the rejected statement: %q", err.Error())
	}
	if !strings.Contains(err.Error(), "SELECT, WITH, and EXPLAIN") {
		t.Errorf("error should name the allowed statement kinds: %q", err.Error())
	}
}
