package query

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"dbscout/internal/db"
	"dbscout/internal/dialect"
)

// ErrExplainUnsupported is returned for engines without an execution plan
// surface reachable over a plain query connection.
var ErrExplainUnsupported = errors.New("explain is not supported for this database type")

// highCostThreshold flags optimizer cost estimates worth a second look.
const highCostThreshold = 100000

// PlanIssue is one finding from scanning an execution plan.
type PlanIssue struct {
	Severity string `json:"severity"`
	Issue    string `json:"issue"`
	Detail   string `json:"detail"`
}

// Plan is an execution plan plus the issues found in it. Issues are only
// produced for Oracle, where the plan layout is stable enough to scan.
type Plan struct {
	Lines  []string    `json:"plan"`
	Issues []PlanIssue `json:"analysis,omitempty"`
}

// Explain produces the execution plan for a read-only statement without
// executing it.
func Explain(ctx context.Context, client *db.Client, sqlText string) (*Plan, error) {
	if !IsReadOnly(sqlText) {
		return nil, &UnsafeQueryError{Statement: strings.TrimSpace(sqlText)}
	}

	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}

	switch client.Kind {
	case dialect.Oracle:
		return explainOracle(ctx, client, trimmed)
	case dialect.MySQL, dialect.Postgres:
		return explainRows(ctx, client, "EXPLAIN "+trimmed)
	case dialect.SQLServer:
		// SHOWPLAN needs a session-level SET toggle and a permission most
		// query accounts lack.
		return nil, ErrExplainUnsupported
	}
	return nil, ErrExplainUnsupported
}

func explainOracle(ctx context.Context, client *db.Client, sqlText string) (*Plan, error) {
	if _, err := client.DB().ExecContext(ctx, "EXPLAIN PLAN FOR "+sqlText); err != nil {
		return nil, fmt.Errorf("explain plan failed: %w", err)
	}

	rows, err := client.DB().QueryContext(ctx, "SELECT PLAN_TABLE_OUTPUT FROM TABLE(DBMS_XPLAN.DISPLAY)")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Plan{Lines: lines, Issues: analyzeOraclePlan(lines)}, nil
}

// explainRows runs an EXPLAIN statement and flattens the result rows into
// plan lines. Postgres returns one text column per line; MySQL returns a
// wide row per plan step.
func explainRows(ctx context.Context, client *db.Client, explainSQL string) (*Plan, error) {
	rows, err := client.DB().QueryContext(ctx, explainSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var lines []string
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		values = normalizeRow(values)

		if len(columns) == 1 {
			lines = append(lines, fmt.Sprintf("%v", values[0]))
			continue
		}
		parts := make([]string, len(columns))
		for i, col := range columns {
			parts[i] = fmt.Sprintf("%s=%v", col, values[i])
		}
		lines = append(lines, strings.Join(parts, "  "))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Plan{Lines: lines}, nil
}

var planCostRE = regexp.MustCompile(`^(\d+)`)

// analyzeOraclePlan scans DBMS_XPLAN output for common trouble spots. The
// operation and cost columns are located from the header row, so extra
// columns in the plan do not shift the scan.
func analyzeOraclePlan(lines []string) []PlanIssue {
	opIdx, nameIdx, costIdx := -1, -1, -1
	for _, line := range lines {
		if !strings.Contains(line, "Operation") {
			continue
		}
		for i, cell := range strings.Split(line, "|") {
			switch {
			case strings.Contains(cell, "Operation"):
				opIdx = i
			case strings.TrimSpace(cell) == "Name":
				nameIdx = i
			case strings.Contains(cell, "Cost"):
				costIdx = i
			}
		}
		break
	}

	var issues []PlanIssue
	for _, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "|") {
			continue
		}
		cells := strings.Split(line, "|")
		op := cellAt(cells, opIdx)
		name := cellAt(cells, nameIdx)

		switch {
		case strings.Contains(op, "MERGE JOIN CARTESIAN"):
			issues = append(issues, PlanIssue{
				Severity: "CRITICAL",
				Issue:    "CARTESIAN_PRODUCT",
				Detail:   "cartesian join found, check the join conditions",
			})
		case strings.Contains(op, "TABLE ACCESS FULL"):
			issues = append(issues, PlanIssue{
				Severity: "WARNING",
				Issue:    "FULL_TABLE_SCAN",
				Detail:   fmt.Sprintf("full scan of %s, an index may help", name),
			})
		case strings.Contains(op, "HASH JOIN"):
			issues = append(issues, PlanIssue{
				Severity: "INFO",
				Issue:    "HASH_JOIN",
				Detail:   "hash join in use, expected for large row sets",
			})
		}

		if cost, ok := parsePlanCost(cellAt(cells, costIdx)); ok && cost > highCostThreshold {
			issues = append(issues, PlanIssue{
				Severity: "WARNING",
				Issue:    "HIGH_COST",
				Detail:   fmt.Sprintf("estimated cost %d exceeds %d", cost, highCostThreshold),
			})
		}
	}

	if len(issues) == 0 {
		issues = append(issues, PlanIssue{
			Severity: "INFO",
			Issue:    "NO_ISSUES",
			Detail:   "no obvious problems found in the plan",
		})
	}
	return issues
}

func cellAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

// parsePlanCost reads the leading integer out of a cost cell such as
// "1234 (2)"; header and separator cells parse as no cost.
func parsePlanCost(cell string) (int, bool) {
	m := planCostRE.FindString(cell)
	if m == "" {
		return 0, false
	}
	cost, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return cost, true
}
