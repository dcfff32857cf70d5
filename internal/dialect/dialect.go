// Package dialect defines the closed set of supported database engines and
// the per-engine SQL conventions (bind-parameter syntax, ping statements)
// shared by the catalog adapters and the query layer.
package dialect

import (
	"fmt"
	"strings"
)

// Kind identifies one of the four supported database engines.
type Kind string

const (
	Oracle    Kind = "oracle"
	MySQL     Kind = "mysql"
	Postgres  Kind = "postgresql"
	SQLServer Kind = "sqlserver"
)

// Kinds lists every supported engine, in display order.
var Kinds = []Kind{Oracle, MySQL, Postgres, SQLServer}

// Parse normalizes a dialect name to a Kind. Input is case-insensitive.
func Parse(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Oracle:
		return Oracle, nil
	case MySQL:
		return MySQL, nil
	case Postgres:
		return Postgres, nil
	case SQLServer:
		return SQLServer, nil
	default:
		return "", fmt.Errorf("unsupported database type %q (supported: oracle, mysql, postgresql, sqlserver)", s)
	}
}

func (k Kind) String() string {
	return string(k)
}

// Placeholder returns the bind-parameter syntax for the n-th (1-based)
// parameter of a statement built for the given engine. Used when predicates
// are assembled programmatically instead of written as literal SQL.
func Placeholder(k Kind, n int) string {
	switch k {
	case Oracle:
		return fmt.Sprintf(":%d", n)
	case MySQL:
		return "?"
	case Postgres:
		return fmt.Sprintf("$%d", n)
	case SQLServer:
		return fmt.Sprintf("@p%d", n)
	}
	return "?"
}

// PingSQL returns a minimal statement that verifies a live connection.
func PingSQL(k Kind) string {
	if k == Oracle {
		return "SELECT 1 FROM DUAL"
	}
	return "SELECT 1"
}
