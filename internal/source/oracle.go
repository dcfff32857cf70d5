package source

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"dbscout/internal/db"
	"dbscout/internal/dialect"
)

// argList collects bind values and hands out the matching Oracle
// placeholder for each.
type argList struct {
	values []any
}

func (a *argList) add(v any) string {
	a.values = append(a.values, v)
	return dialect.Placeholder(dialect.Oracle, len(a.values))
}

// searchSource is the two-phase search. Phase one fetches only lines the
// server says match at least one filter; the fold in match.go then decides
// which objects satisfy all of them. Phase two re-fetches the full source
// of the surviving objects, since a caller tracing lineage needs the whole
// body, not just the matching lines.
func searchSource(ctx context.Context, client *db.Client, opts Options) ([]Match, error) {
	m, err := newLineMatcher(opts)
	if err != nil {
		return nil, err
	}

	types := normalizeTypes(opts.Types)
	args := &argList{}

	typeMarks := make([]string, len(types))
	for i, t := range types {
		typeMarks[i] = args.add(t)
	}

	var conditions []string
	if m.table != "" {
		if opts.Regex {
			conditions = append(conditions, fmt.Sprintf("REGEXP_LIKE(TEXT, %s, 'i')", args.add(m.table)))
		} else {
			conditions = append(conditions, fmt.Sprintf("UPPER(TEXT) LIKE '%%' || %s || '%%'", args.add(strings.ToUpper(m.table))))
		}
	}
	if m.text != "" {
		if opts.Regex {
			conditions = append(conditions, fmt.Sprintf("REGEXP_LIKE(TEXT, %s, 'i')", args.add(m.text)))
		} else {
			conditions = append(conditions, fmt.Sprintf("UPPER(TEXT) LIKE '%%' || %s || '%%'", args.add(strings.ToUpper(m.text))))
		}
	}

	query := fmt.Sprintf(`SELECT OWNER, NAME, TYPE, LINE, TEXT
FROM ALL_SOURCE
WHERE TYPE IN (%s)
  AND ((%s))`, strings.Join(typeMarks, ", "), strings.Join(conditions, ") OR ("))
	if opts.Schema != "" {
		query += "\n  AND OWNER = " + args.add(strings.ToUpper(strings.TrimSpace(opts.Schema)))
	}
	query += "\nORDER BY OWNER, NAME, TYPE, LINE"

	rows, err := fetchSourceRows(ctx, client, query, args.values)
	if err != nil {
		return nil, err
	}

	states := accumulate(rows, m)
	selected := selectObjects(states, m, opts.objectLimit())
	if len(selected) == 0 {
		return []Match{}, nil
	}

	fullLines, err := fetchFullSource(ctx, client, selected)
	if err != nil {
		return nil, err
	}

	results := make([]Match, 0, len(selected))
	for _, key := range selected {
		state := states[key]
		results = append(results, Match{
			Schema:              key.Owner,
			Name:                key.Name,
			Type:                key.Type,
			MatchCount:          len(state.lineNums),
			MatchingLineNumbers: capLineNumbers(state.lineNums),
			Lines:               truncateLines(fullLines[key], opts.LineLimit),
		})
	}
	return results, nil
}

// fetchByName returns the full source of one named object, across every
// schema it exists in unless an owner narrows it down.
func fetchByName(ctx context.Context, client *db.Client, opts Options) ([]Match, error) {
	owner, object := splitObjectName(opts.Name)
	if owner == "" {
		owner = strings.TrimSpace(opts.Schema)
	}

	types := normalizeTypes(opts.Types)
	args := &argList{}

	nameMark := args.add(strings.ToUpper(object))
	typeMarks := make([]string, len(types))
	for i, t := range types {
		typeMarks[i] = args.add(t)
	}

	query := fmt.Sprintf(`SELECT OWNER, NAME, TYPE, LINE, TEXT
FROM ALL_SOURCE
WHERE NAME = %s
  AND TYPE IN (%s)`, nameMark, strings.Join(typeMarks, ", "))
	if owner != "" {
		query += "\n  AND OWNER = " + args.add(strings.ToUpper(owner))
	}
	query += "\nORDER BY OWNER, NAME, TYPE, LINE"

	rows, err := fetchSourceRows(ctx, client, query, args.values)
	if err != nil {
		return nil, err
	}

	byKey := make(map[objectKey][]Line)
	for _, row := range rows {
		key := objectKey{Owner: row.owner, Name: row.name, Type: row.typ}
		byKey[key] = append(byKey[key], Line{Line: row.line, Text: row.text})
	}

	keys := make([]objectKey, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Owner != b.Owner {
			return a.Owner < b.Owner
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Type < b.Type
	})

	results := make([]Match, 0, len(keys))
	for _, key := range keys {
		results = append(results, Match{
			Schema:              key.Owner,
			Name:                key.Name,
			Type:                key.Type,
			MatchCount:          0,
			MatchingLineNumbers: []int{},
			Lines:               truncateLines(byKey[key], opts.LineLimit),
		})
	}
	return results, nil
}

// fetchFullSource re-reads every line of the selected objects with one
// tuple IN-list query.
func fetchFullSource(ctx context.Context, client *db.Client, keys []objectKey) (map[objectKey][]Line, error) {
	args := &argList{}
	tuples := make([]string, len(keys))
	for i, key := range keys {
		tuples[i] = fmt.Sprintf("(%s, %s, %s)", args.add(key.Owner), args.add(key.Name), args.add(key.Type))
	}

	query := fmt.Sprintf(`SELECT OWNER, NAME, TYPE, LINE, TEXT
FROM ALL_SOURCE
WHERE (OWNER, NAME, TYPE) IN (%s)
ORDER BY OWNER, NAME, TYPE, LINE`, strings.Join(tuples, ", "))

	rows, err := fetchSourceRows(ctx, client, query, args.values)
	if err != nil {
		return nil, err
	}

	byKey := make(map[objectKey][]Line)
	for _, row := range rows {
		key := objectKey{Owner: row.owner, Name: row.name, Type: row.typ}
		byKey[key] = append(byKey[key], Line{Line: row.line, Text: row.text})
	}
	return byKey, nil
}

func fetchSourceRows(ctx context.Context, client *db.Client, query string, args []any) ([]sourceRow, error) {
	rows, err := client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sourceRow
	for rows.Next() {
		var (
			row  sourceRow
			text sql.NullString
		)
		if err := rows.Scan(&row.owner, &row.name, &row.typ, &row.line, &text); err != nil {
			return nil, err
		}
		row.text = strings.TrimRight(text.String, " \t\r\n")
		out = append(out, row)
	}
	return out, rows.Err()
}
