//go:build integration
// +build integration

package integration

import (
	"os"
	"testing"

	"dbscout/internal/catalog"
)

// configureAlias points a connection alias at a test database. Existing
// environment variables win so CI can override the defaults.
func configureAlias(t *testing.T, alias string, vars map[string]string) {
	t.Helper()
	for key, value := range vars {
		name := alias + "_" + key
		if os.Getenv(name) != "" {
			continue
		}
		t.Setenv(name, value)
	}
}

// verifyColumns checks that expected columns are present on a table
func verifyColumns(t *testing.T, info *catalog.TableInfo, expectedColumns []string) {
	t.Helper()

	columnMap := make(map[string]bool)
	for _, col := range info.Columns {
		columnMap[col.Name] = true
	}

	for _, colName := range expectedColumns {
		if !columnMap[colName] {
			t.Errorf("Expected column %s not found in %s.%s", colName, info.Schema, info.Table)
		}
	}
}

// findColumn returns a column by name, or nil
func findColumn(info *catalog.TableInfo, name string) *catalog.Column {
	for i := range info.Columns {
		if info.Columns[i].Name == name {
			return &info.Columns[i]
		}
	}
	return nil
}

// verifyIndex checks that an index exists with the expected column list
func verifyIndex(t *testing.T, info *catalog.TableInfo, indexName, expectedColumns string) {
	t.Helper()

	for _, idx := range info.Indexes {
		if idx.Name == indexName {
			if idx.Columns != expectedColumns {
				t.Errorf("Expected index %s on (%s), got (%s)", indexName, expectedColumns, idx.Columns)
			}
			return
		}
	}

	t.Errorf("Expected index %s not found on %s.%s", indexName, info.Schema, info.Table)
}

// verifyMatchContains checks that a search hit exists for a table/column pair
func verifyMatchContains(t *testing.T, matches []catalog.ColumnMatch, table, column string) {
	t.Helper()

	for _, m := range matches {
		if m.Table == table && m.Column == column {
			return
		}
	}
	t.Errorf("Expected a match for %s.%s, got %d other matches", table, column, len(matches))
}
