package formatter

import (
	"fmt"
	"io"
	"strings"

	"dbscout/internal/catalog"
	"dbscout/internal/query"
	"dbscout/internal/source"
)

// TextFormatter writes results as compact text for terminal use
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// FormatTable writes one table's structure in compact text format
func (f *TextFormatter) FormatTable(info *catalog.TableInfo) error {
	_, _ = fmt.Fprintf(f.writer, "TABLE %s.%s (%s)\n", info.Schema, info.Table, info.DBType)
	if info.TableComment != "" {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", info.TableComment)
	}

	_, _ = fmt.Fprintln(f.writer)
	_, _ = fmt.Fprintln(f.writer, "COLUMNS:")
	for _, col := range info.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", f.formatColumn(col))
	}

	if len(info.Indexes) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "INDEXES:")
		for _, idx := range info.Indexes {
			unique := ""
			if idx.Unique == "UNIQUE" {
				unique = " UNIQUE"
			}
			_, _ = fmt.Fprintf(f.writer, "  %s (%s)%s\n", idx.Name, idx.Columns, unique)
		}
	}

	if len(info.Partitions) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintf(f.writer, "PARTITIONS (%d):\n", len(info.Partitions))
		for _, p := range info.Partitions {
			line := fmt.Sprintf("  %s", p.Name)
			if p.HighValue != nil {
				line += fmt.Sprintf(" < %s", *p.HighValue)
			}
			if p.NumRows != nil {
				line += fmt.Sprintf("  (%d rows)", *p.NumRows)
			}
			_, _ = fmt.Fprintln(f.writer, line)
		}
	}

	if info.Statistics != nil {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "STATISTICS:")
		s := info.Statistics
		if s.NumRows != nil {
			_, _ = fmt.Fprintf(f.writer, "  rows: %d\n", *s.NumRows)
		}
		if s.Blocks != nil {
			_, _ = fmt.Fprintf(f.writer, "  blocks: %d\n", *s.Blocks)
		}
		if s.AvgRowLen != nil {
			_, _ = fmt.Fprintf(f.writer, "  avg row length: %d\n", *s.AvgRowLen)
		}
		if s.LastAnalyzed != nil {
			_, _ = fmt.Fprintf(f.writer, "  last analyzed: %s\n", s.LastAnalyzed.Format("2006-01-02 15:04:05"))
		}
	}

	return nil
}

func (f *TextFormatter) formatColumn(col catalog.Column) string {
	parts := []string{col.Name + ":", col.DataType}
	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if col.Default != nil {
		parts = append(parts, fmt.Sprintf("DEFAULT %s", strings.TrimSpace(*col.Default)))
	}
	line := strings.Join(parts, " ")
	if col.Comment != "" {
		line += "  -- " + col.Comment
	}
	return line
}

// FormatColumnMatches writes metadata search hits, one line per column
func (f *TextFormatter) FormatColumnMatches(matches []catalog.ColumnMatch) error {
	if len(matches) == 0 {
		_, _ = fmt.Fprintln(f.writer, "No matching tables or columns found.")
		return nil
	}

	_, _ = fmt.Fprintf(f.writer, "Found %d matching column(s):\n\n", len(matches))
	for _, m := range matches {
		line := fmt.Sprintf("  %s.%s.%s  %s", m.Schema, m.Table, m.Column, m.DataType)
		if m.ColumnComment != "" {
			line += "  -- " + m.ColumnComment
		} else if m.TableComment != "" {
			line += "  -- (table) " + m.TableComment
		}
		_, _ = fmt.Fprintln(f.writer, line)
	}
	return nil
}

// FormatSourceMatches writes procedure search results with full source
func (f *TextFormatter) FormatSourceMatches(matches []source.Match) error {
	if len(matches) == 0 {
		_, _ = fmt.Fprintln(f.writer, "No matching procedure/package found.")
		return nil
	}

	_, _ = fmt.Fprintf(f.writer, "Found %d object(s) (full source below):\n\n", len(matches))
	for _, m := range matches {
		if m.MatchCount > 0 {
			_, _ = fmt.Fprintf(f.writer, "  [%s] %s.%s  (%d lines reference search term)\n", m.Type, m.Schema, m.Name, m.MatchCount)
		} else {
			_, _ = fmt.Fprintf(f.writer, "  [%s] %s.%s\n", m.Type, m.Schema, m.Name)
		}
		for _, line := range m.Lines {
			_, _ = fmt.Fprintln(f.writer, line.Text)
		}
		_, _ = fmt.Fprintln(f.writer)
	}
	return nil
}

// FormatResult writes query rows as an aligned separator-free listing
func (f *TextFormatter) FormatResult(res *query.Result) error {
	_, _ = fmt.Fprintln(f.writer, strings.Join(res.Columns, " | "))
	_, _ = fmt.Fprintln(f.writer, strings.Repeat("-", len(strings.Join(res.Columns, " | "))))
	for _, row := range res.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = displayValue(v)
		}
		_, _ = fmt.Fprintln(f.writer, strings.Join(cells, " | "))
	}

	_, _ = fmt.Fprintln(f.writer)
	suffix := ""
	if res.Truncated {
		suffix = fmt.Sprintf(" (truncated at %d)", res.RowLimit)
	}
	_, _ = fmt.Fprintf(f.writer, "%d row(s) in %d ms%s\n", res.RowCount, res.ExecutionTimeMS, suffix)
	return nil
}

// FormatPlan writes an execution plan followed by its findings
func (f *TextFormatter) FormatPlan(plan *query.Plan) error {
	for _, line := range plan.Lines {
		_, _ = fmt.Fprintln(f.writer, line)
	}
	if len(plan.Issues) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "ANALYSIS:")
		for _, issue := range plan.Issues {
			_, _ = fmt.Fprintf(f.writer, "  [%s] %s: %s\n", issue.Severity, issue.Issue, issue.Detail)
		}
	}
	return nil
}

// displayValue renders one cell; NULLs print as the bare word NULL
func displayValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}
