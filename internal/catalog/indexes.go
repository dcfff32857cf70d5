package catalog

import (
	"sort"
	"strings"
)

// indexRow is one raw catalog row: a single column of a single index.
type indexRow struct {
	name     string
	indexTyp string
	unique   string
	column   string
	position int64
}

// foldIndexes aggregates raw per-column rows into one Index per index name.
// Columns are ordered by key position regardless of fetch order; index order
// follows first appearance in the input.
func foldIndexes(rows []indexRow) []Index {
	type agg struct {
		typ    string
		unique string
		cols   []indexRow
	}

	var order []string
	byName := map[string]*agg{}
	for _, row := range rows {
		a, ok := byName[row.name]
		if !ok {
			a = &agg{typ: row.indexTyp, unique: row.unique}
			byName[row.name] = a
			order = append(order, row.name)
		}
		a.cols = append(a.cols, row)
	}

	indexes := make([]Index, 0, len(order))
	for _, name := range order {
		a := byName[name]
		sort.SliceStable(a.cols, func(i, j int) bool { return a.cols[i].position < a.cols[j].position })
		names := make([]string, len(a.cols))
		for i, c := range a.cols {
			names[i] = c.column
		}
		indexes = append(indexes, Index{
			Name:    name,
			Type:    a.typ,
			Unique:  a.unique,
			Columns: strings.Join(names, ", "),
		})
	}
	return indexes
}
