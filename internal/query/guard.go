// Package query guards, caps, and executes caller-supplied SQL. A statement
// is admitted only when it is read-only; admitted SELECTs are rewritten to a
// row-capped form using each engine's pagination idiom.
package query

import (
	"fmt"
	"regexp"
	"strings"
)

// UnsafeQueryError reports a statement rejected by the read-only guard.
// It is always raised before any network call.
type UnsafeQueryError struct {
	Statement string
}

func (e *UnsafeQueryError) Error() string {
	return fmt.Sprintf("only SELECT, WITH, and EXPLAIN statements are allowed: %q", e.Statement)
}

var (
	lineCommentRE  = regexp.MustCompile(`--[^\n]*`)
	blockCommentRE = regexp.MustCompile(`(?s)/\*.*?\*/`)

	allowedPrefixes = []string{"SELECT", "WITH", "EXPLAIN"}

	// Statement keywords that mutate data, schema, or privileges. Matched
	// anywhere in the comment-stripped text, not only at the start, so a
	// stacked statement after a semicolon is still caught.
	disallowedKeywords = []string{
		"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE",
		"TRUNCATE", "MERGE", "GRANT", "REVOKE", "EXEC", "EXECUTE",
	}

	disallowedRE []*regexp.Regexp
)

func init() {
	for _, kw := range disallowedKeywords {
		disallowedRE = append(disallowedRE,
			regexp.MustCompile(`(?i)(?:^|[^A-Za-z0-9_])`+kw+`(?:[^A-Za-z0-9_]|$)`))
	}
}

// stripComments removes line comments (-- to end of line) and block
// comments (/* ... */) so a comment can neither hide a disallowed statement
// nor wrap an allowed one.
func stripComments(sqlText string) string {
	out := blockCommentRE.ReplaceAllString(sqlText, " ")
	out = lineCommentRE.ReplaceAllString(out, " ")
	return out
}

// IsReadOnly reports whether the statement is safe to execute: after comment
// stripping it must start with SELECT, WITH, or EXPLAIN, contain no
// disallowed keyword anywhere, and carry no stacked statement after a
// semicolon.
func IsReadOnly(sqlText string) bool {
	cleaned := strings.TrimSpace(stripComments(sqlText))
	if cleaned == "" {
		return false
	}

	upper := strings.ToUpper(cleaned)
	allowed := false
	for _, prefix := range allowedPrefixes {
		if upper == prefix || strings.HasPrefix(upper, prefix+" ") ||
			strings.HasPrefix(upper, prefix+"\n") || strings.HasPrefix(upper, prefix+"\t") ||
			strings.HasPrefix(upper, prefix+"(") {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}

	for _, re := range disallowedRE {
		if re.MatchString(cleaned) {
			return false
		}
	}

	if idx := strings.Index(cleaned, ";"); idx >= 0 {
		if strings.TrimSpace(cleaned[idx+1:]) != "" {
			return false
		}
	}

	return true
}
