package query

import (
	"strings"
	"testing"

	"dbscout/internal/dialect"
)

func TestWrapWithLimit(t *testing.T) {
	tests := []struct {
		name string
		kind dialect.Kind
		sql  string
		want string
	}{
		{
			name: "oracle rownum wrapper",
			kind: dialect.Oracle,
			sql:  "SELECT * FROM employees",
			want: "SELECT * FROM (SELECT * FROM employees) WHERE ROWNUM <= 50",
		},
		{
			name: "mysql aliased subquery",
			kind: dialect.MySQL,
			sql:  "SELECT * FROM employees",
			want: "SELECT * FROM (SELECT * FROM employees) AS _limited LIMIT 50",
		},
		{
			name: "postgres aliased subquery",
			kind: dialect.Postgres,
			sql:  "SELECT id FROM t",
			want: "SELECT * FROM (SELECT id FROM t) AS _limited LIMIT 50",
		},
		{
			name: "sqlserver top injection",
			kind: dialect.SQLServer,
			sql:  "SELECT name FROM sys.tables",
			want: "SELECT TOP 50 name FROM sys.tables",
		},
		{
			name: "trailing semicolon stripped before wrapping",
			kind: dialect.Oracle,
			sql:  "SELECT * FROM t;",
			want: "SELECT * FROM (SELECT * FROM t) WHERE ROWNUM <= 50",
		},
		{
			name: "sqlserver lowercase select",
			kind: dialect.SQLServer,
			sql:  "select name from sys.tables",
			want: "SELECT TOP 50 name from sys.tables",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WrapWithLimit(tt.sql, 50, tt.kind); got != tt.want {
				t.Errorf("WrapWithLimit = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapWithLimitTopInjectedOnce(t *testing.T) {
	// SELECT appearing inside the statement body must not gain a TOP.
	got := WrapWithLimit("SELECT a FROM t WHERE x IN (SELECT y FROM u)", 10, dialect.SQLServer)
	if strings.Count(got, "TOP 10") != 1 {
		t.Errorf("TOP should be injected exactly once: %q", got)
	}
	if !strings.HasPrefix(got, "SELECT TOP 10 ") {
		t.Errorf("TOP should follow the leading SELECT: %q", got)
	}
}
