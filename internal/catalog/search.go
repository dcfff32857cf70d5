package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// Search field selectors.
const (
	FieldNames    = "names"
	FieldComments = "comments"
)

// SearchOptions controls a metadata search.
type SearchOptions struct {
	Keyword string
	Schema  string   // optional schema/owner filter
	Fields  []string // subset of {names, comments}; empty means both
	Regex   bool     // treat Keyword as a case-insensitive regex
	Limit   int      // stop after this many matches
}

// matcher applies the keyword to identifiers and comments. Identifiers are
// compared through the engine's folding convention (upper for Oracle, MySQL
// and SQL Server, lower for PostgreSQL); comments are compared as stored.
type matcher struct {
	keyword  string
	re       *regexp.Regexp
	names    bool
	comments bool
	fold     func(string) string
}

func newMatcher(opts SearchOptions, fold func(string) string) (*matcher, error) {
	m := &matcher{keyword: opts.Keyword, fold: fold}
	if len(opts.Fields) == 0 {
		m.names, m.comments = true, true
	}
	for _, f := range opts.Fields {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case FieldNames:
			m.names = true
		case FieldComments:
			m.comments = true
		default:
			return nil, fmt.Errorf("unknown search field %q (expected names or comments)", f)
		}
	}
	if opts.Regex {
		re, err := regexp.Compile("(?i)" + opts.Keyword)
		if err != nil {
			return nil, fmt.Errorf("invalid search pattern: %w", err)
		}
		m.re = re
	}
	return m, nil
}

func (m *matcher) matchName(text string) bool {
	if !m.names || text == "" {
		return false
	}
	if m.re != nil {
		return m.re.MatchString(text)
	}
	return strings.Contains(m.fold(text), m.fold(m.keyword))
}

func (m *matcher) matchComment(text string) bool {
	if !m.comments || text == "" {
		return false
	}
	if m.re != nil {
		return m.re.MatchString(text)
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(m.keyword))
}

// matchRow decides whether one catalog row (a column of a table) is a hit:
// a name match on the column or its table, or a comment match on either.
func (m *matcher) matchRow(tableName, columnName, tableComment, columnComment string) bool {
	return m.matchName(columnName) || m.matchName(tableName) ||
		m.matchComment(columnComment) || m.matchComment(tableComment)
}

func (o SearchOptions) limit() int {
	if o.Limit > 0 {
		return o.Limit
	}
	return 200
}
