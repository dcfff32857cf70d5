// Package source finds stored procedures, packages, and functions by
// searching their source code, and fetches full object source by name.
// Only Oracle exposes line-level source through a catalog view (ALL_SOURCE),
// so the other engines are rejected up front.
package source

import (
	"context"
	"errors"
	"strings"

	"dbscout/internal/db"
	"dbscout/internal/dialect"
)

// ErrUnsupportedDialect is returned when the connection is not Oracle.
var ErrUnsupportedDialect = errors.New("procedure source search requires an Oracle connection")

// DefaultObjectLimit caps how many objects one search returns.
const DefaultObjectLimit = 100

// matchingLineCap bounds the matching_line_numbers list in each result;
// MatchCount still reports the full number of matching lines.
const matchingLineCap = 100

// validTypes are the ALL_SOURCE object types worth searching.
var validTypes = []string{"PROCEDURE", "PACKAGE", "PACKAGE BODY", "FUNCTION"}

// Line is one line of stored source.
type Line struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

// Match is one found object with its full source. MatchCount is zero when
// the object was fetched by name rather than found by a search.
type Match struct {
	Schema              string `json:"schema"`
	Name                string `json:"name"`
	Type                string `json:"type"`
	MatchCount          int    `json:"match_count"`
	MatchingLineNumbers []int  `json:"matching_line_numbers"`
	Lines               []Line `json:"lines"`
}

// Options selects what to search for. Table and Text are independent
// filters ANDed together at the object level: an object matches only when
// some line matches each supplied filter. Name switches to a direct fetch
// by object name ("NAME" or "OWNER.NAME") and ignores Table and Text.
type Options struct {
	Table  string
	Text   string
	Name   string
	Schema string
	Types  []string
	Regex  bool

	// ObjectLimit caps returned objects; 0 means DefaultObjectLimit.
	ObjectLimit int
	// LineLimit caps source lines per object; 0 means no cap. It never
	// affects MatchCount or MatchingLineNumbers.
	LineLimit int
}

func (o Options) objectLimit() int {
	if o.ObjectLimit <= 0 {
		return DefaultObjectLimit
	}
	return o.ObjectLimit
}

// Search runs a procedure source search or, when Options.Name is set, a
// direct fetch of one object's source.
func Search(ctx context.Context, client *db.Client, opts Options) ([]Match, error) {
	if client.Kind != dialect.Oracle {
		return nil, ErrUnsupportedDialect
	}

	if opts.Name != "" {
		return fetchByName(ctx, client, opts)
	}
	if opts.Table == "" && opts.Text == "" {
		return []Match{}, nil
	}
	return searchSource(ctx, client, opts)
}

// normalizeTypes upcases and filters the requested object types; an empty
// or fully invalid request falls back to every searchable type.
func normalizeTypes(requested []string) []string {
	var out []string
	for _, t := range requested {
		t = strings.ToUpper(strings.TrimSpace(t))
		for _, valid := range validTypes {
			if t == valid {
				out = append(out, t)
				break
			}
		}
	}
	if len(out) == 0 {
		return append([]string(nil), validTypes...)
	}
	return out
}

// splitObjectName separates "OWNER.NAME" into its parts; a bare name
// returns an empty owner.
func splitObjectName(name string) (owner, object string) {
	name = strings.TrimSpace(name)
	if idx := strings.Index(name, "."); idx >= 0 {
		return name[:idx], name[idx+1:]
	}
	return "", name
}
