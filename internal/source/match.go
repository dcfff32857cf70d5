package source

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

type objectKey struct {
	Owner string
	Name  string
	Type  string
}

// matchState accumulates, per object, which filters any of its lines
// satisfied and which line numbers matched either filter.
type matchState struct {
	hasTable bool
	hasText  bool
	lineNums []int
}

type sourceRow struct {
	owner string
	name  string
	typ   string
	line  int
	text  string
}

// lineMatcher re-checks each fetched line against the filters. The server
// query only guarantees that a line matched at least one filter; deciding
// which filter it matched happens here.
type lineMatcher struct {
	table   string
	text    string
	tableRE *regexp.Regexp
	textRE  *regexp.Regexp
}

func newLineMatcher(opts Options) (*lineMatcher, error) {
	m := &lineMatcher{
		table: strings.TrimSpace(opts.Table),
		text:  strings.TrimSpace(opts.Text),
	}
	if !opts.Regex {
		return m, nil
	}

	var err error
	if m.table != "" {
		if m.tableRE, err = regexp.Compile("(?i)" + m.table); err != nil {
			return nil, fmt.Errorf("invalid table pattern: %w", err)
		}
	}
	if m.text != "" {
		if m.textRE, err = regexp.Compile("(?i)" + m.text); err != nil {
			return nil, fmt.Errorf("invalid text pattern: %w", err)
		}
	}
	return m, nil
}

func matchPattern(lineText, pattern string, re *regexp.Regexp) bool {
	if lineText == "" || pattern == "" {
		return false
	}
	if re != nil {
		return re.MatchString(lineText)
	}
	return strings.Contains(strings.ToUpper(lineText), strings.ToUpper(pattern))
}

func (m *lineMatcher) matchesTable(lineText string) bool {
	return matchPattern(lineText, m.table, m.tableRE)
}

func (m *lineMatcher) matchesText(lineText string) bool {
	return matchPattern(lineText, m.text, m.textRE)
}

// accumulate folds matched lines into per-object state. A filter that was
// not supplied counts as satisfied for every object.
func accumulate(rows []sourceRow, m *lineMatcher) map[objectKey]*matchState {
	states := make(map[objectKey]*matchState)
	for _, row := range rows {
		key := objectKey{Owner: row.owner, Name: row.name, Type: row.typ}
		state, ok := states[key]
		if !ok {
			state = &matchState{}
			states[key] = state
		}

		matchTable := m.table == "" || m.matchesTable(row.text)
		matchText := m.text == "" || m.matchesText(row.text)

		if matchTable {
			state.hasTable = true
		}
		if matchText {
			state.hasText = true
		}
		if matchTable || matchText {
			state.lineNums = append(state.lineNums, row.line)
		}
	}
	return states
}

// selectObjects keeps objects satisfying every supplied filter, in
// (owner, name, type) order, capped at limit.
func selectObjects(states map[objectKey]*matchState, m *lineMatcher, limit int) []objectKey {
	keys := make([]objectKey, 0, len(states))
	for key := range states {
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

	var selected []objectKey
	for _, key := range keys {
		state := states[key]
		if m.table != "" && !state.hasTable {
			continue
		}
		if m.text != "" && !state.hasText {
			continue
		}
		selected = append(selected, key)
		if len(selected) >= limit {
			break
		}
	}
	return selected
}

func capLineNumbers(nums []int) []int {
	if nums == nil {
		return []int{}
	}
	if len(nums) > matchingLineCap {
		return nums[:matchingLineCap]
	}
	return nums
}

func truncateLines(lines []Line, limit int) []Line {
	if lines == nil {
		return []Line{}
	}
	if limit > 0 && len(lines) > limit {
		return lines[:limit]
	}
	return lines
}
