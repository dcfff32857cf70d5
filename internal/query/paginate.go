package query

import (
	"fmt"
	"regexp"
	"strings"

	"dbscout/internal/dialect"
)

var leadingSelectRE = regexp.MustCompile(`(?i)^select\b`)

// WrapWithLimit rewrites a SELECT so the engine returns at most maxRows,
// using the engine's own pagination idiom. The input is assumed to have
// passed IsReadOnly; this is a text rewrite, not a parse.
func WrapWithLimit(sqlText string, maxRows int, kind dialect.Kind) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}

	switch kind {
	case dialect.Oracle:
		// No trailing LIMIT in Oracle; cap via an outer ROWNUM filter.
		return fmt.Sprintf("SELECT * FROM (%s) WHERE ROWNUM <= %d", trimmed, maxRows)
	case dialect.MySQL, dialect.Postgres:
		// Aliased subquery keeps the rewrite composable when the capped
		// query is itself nested as a relation.
		return fmt.Sprintf("SELECT * FROM (%s) AS _limited LIMIT %d", trimmed, maxRows)
	case dialect.SQLServer:
		// TOP must sit in the projection clause, right after SELECT.
		if leadingSelectRE.MatchString(trimmed) {
			return leadingSelectRE.ReplaceAllString(trimmed, fmt.Sprintf("SELECT TOP %d", maxRows))
		}
		return trimmed
	}
	return trimmed
}
