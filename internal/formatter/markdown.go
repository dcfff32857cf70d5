package formatter

import (
	"fmt"
	"io"
	"strings"

	"dbscout/internal/catalog"
	"dbscout/internal/query"
	"dbscout/internal/source"
)

// MarkdownFormatter writes results as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// FormatTable writes one table's structure in markdown format
func (f *MarkdownFormatter) FormatTable(info *catalog.TableInfo) error {
	_, _ = fmt.Fprintf(f.writer, "# %s.%s (%s)\n\n", info.Schema, info.Table, info.DBType)
	if info.TableComment != "" {
		_, _ = fmt.Fprintf(f.writer, "%s\n\n", info.TableComment)
	}

	_, _ = fmt.Fprintln(f.writer, "## Columns")
	_, _ = fmt.Fprintln(f.writer)
	_, _ = fmt.Fprintln(f.writer, "| Column | Type | Nullable | Default | Comment |")
	_, _ = fmt.Fprintln(f.writer, "|--------|------|----------|---------|---------|")
	for _, col := range info.Columns {
		nullable := "NO"
		if col.Nullable {
			nullable = "YES"
		}
		deflt := ""
		if col.Default != nil {
			deflt = strings.TrimSpace(*col.Default)
		}
		_, _ = fmt.Fprintf(f.writer, "| %s | %s | %s | %s | %s |\n",
			escapeCell(col.Name), escapeCell(col.DataType), nullable, escapeCell(deflt), escapeCell(col.Comment))
	}
	_, _ = fmt.Fprintln(f.writer)

	if len(info.Indexes) > 0 {
		_, _ = fmt.Fprintln(f.writer, "## Indexes")
		_, _ = fmt.Fprintln(f.writer)
		for _, idx := range info.Indexes {
			if idx.Unique == "UNIQUE" {
				_, _ = fmt.Fprintf(f.writer, "- %s on (%s), unique\n", idx.Name, idx.Columns)
			} else {
				_, _ = fmt.Fprintf(f.writer, "- %s on (%s)\n", idx.Name, idx.Columns)
			}
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	if len(info.Partitions) > 0 {
		_, _ = fmt.Fprintf(f.writer, "## Partitions (%d)\n\n", len(info.Partitions))
		for _, p := range info.Partitions {
			line := "- " + p.Name
			if p.HighValue != nil {
				line += fmt.Sprintf(", high value `%s`", *p.HighValue)
			}
			if p.NumRows != nil {
				line += fmt.Sprintf(", %d rows", *p.NumRows)
			}
			_, _ = fmt.Fprintln(f.writer, line)
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	if s := info.Statistics; s != nil {
		_, _ = fmt.Fprintln(f.writer, "## Statistics")
		_, _ = fmt.Fprintln(f.writer)
		if s.NumRows != nil {
			_, _ = fmt.Fprintf(f.writer, "- rows: %d\n", *s.NumRows)
		}
		if s.Blocks != nil {
			_, _ = fmt.Fprintf(f.writer, "- blocks: %d\n", *s.Blocks)
		}
		if s.AvgRowLen != nil {
			_, _ = fmt.Fprintf(f.writer, "- avg row length: %d\n", *s.AvgRowLen)
		}
		if s.LastAnalyzed != nil {
			_, _ = fmt.Fprintf(f.writer, "- last analyzed: %s\n", s.LastAnalyzed.Format("2006-01-02 15:04:05"))
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	return nil
}

// FormatColumnMatches writes metadata search hits as a markdown table
func (f *MarkdownFormatter) FormatColumnMatches(matches []catalog.ColumnMatch) error {
	if len(matches) == 0 {
		_, _ = fmt.Fprintln(f.writer, "No matching tables or columns found.")
		return nil
	}

	_, _ = fmt.Fprintf(f.writer, "Found **%d** matching column(s).\n\n", len(matches))
	_, _ = fmt.Fprintln(f.writer, "| Schema | Table | Column | Type | Comment |")
	_, _ = fmt.Fprintln(f.writer, "|--------|-------|--------|------|---------|")
	for _, m := range matches {
		comment := m.ColumnComment
		if comment == "" {
			comment = m.TableComment
		}
		_, _ = fmt.Fprintf(f.writer, "| %s | %s | %s | %s | %s |\n",
			escapeCell(m.Schema), escapeCell(m.Table), escapeCell(m.Column), escapeCell(m.DataType), escapeCell(comment))
	}
	return nil
}

// FormatSourceMatches writes procedure search results with fenced source blocks
func (f *MarkdownFormatter) FormatSourceMatches(matches []source.Match) error {
	if len(matches) == 0 {
		_, _ = fmt.Fprintln(f.writer, "No matching procedure/package found.")
		return nil
	}

	_, _ = fmt.Fprintf(f.writer, "Found **%d** matching objects (full source).\n\n", len(matches))
	for _, m := range matches {
		if m.MatchCount > 0 {
			_, _ = fmt.Fprintf(f.writer, "### `%s.%s` (%s), %d lines reference search term\n\n", m.Schema, m.Name, m.Type, m.MatchCount)
		} else {
			_, _ = fmt.Fprintf(f.writer, "### `%s.%s` (%s)\n\n", m.Schema, m.Name, m.Type)
		}
		_, _ = fmt.Fprintln(f.writer, "```sql")
		for _, line := range m.Lines {
			_, _ = fmt.Fprintln(f.writer, line.Text)
		}
		_, _ = fmt.Fprintln(f.writer, "```")
		_, _ = fmt.Fprintln(f.writer)
	}
	return nil
}

// FormatResult writes query rows as a markdown table
func (f *MarkdownFormatter) FormatResult(res *query.Result) error {
	header := make([]string, len(res.Columns))
	sep := make([]string, len(res.Columns))
	for i, col := range res.Columns {
		header[i] = escapeCell(col)
		sep[i] = "---"
	}
	_, _ = fmt.Fprintf(f.writer, "| %s |\n", strings.Join(header, " | "))
	_, _ = fmt.Fprintf(f.writer, "| %s |\n", strings.Join(sep, " | "))

	for _, row := range res.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = escapeCell(displayValue(v))
		}
		_, _ = fmt.Fprintf(f.writer, "| %s |\n", strings.Join(cells, " | "))
	}

	_, _ = fmt.Fprintln(f.writer)
	suffix := ""
	if res.Truncated {
		suffix = fmt.Sprintf(" (truncated at %d)", res.RowLimit)
	}
	_, _ = fmt.Fprintf(f.writer, "%d row(s) in %d ms%s\n", res.RowCount, res.ExecutionTimeMS, suffix)
	return nil
}

// FormatPlan writes an execution plan in a fenced block with findings below
func (f *MarkdownFormatter) FormatPlan(plan *query.Plan) error {
	_, _ = fmt.Fprintln(f.writer, "```")
	for _, line := range plan.Lines {
		_, _ = fmt.Fprintln(f.writer, line)
	}
	_, _ = fmt.Fprintln(f.writer, "```")

	if len(plan.Issues) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "## Analysis")
		_, _ = fmt.Fprintln(f.writer)
		for _, issue := range plan.Issues {
			_, _ = fmt.Fprintf(f.writer, "- **%s** %s: %s\n", issue.Severity, issue.Issue, issue.Detail)
		}
	}
	return nil
}

// escapeCell keeps literal pipes from breaking markdown table rows
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
