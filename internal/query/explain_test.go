package query

import (
	"strings"
	"testing"
)

func planWithOps(rows ...string) []string {
	lines := []string{
		"Plan hash value: 1445457117",
		"",
		"--------------------------------------------------------------------------------",
		"| Id  | Operation                 | Name      | Rows  | Bytes | Cost (%CPU)| Time     |",
		"--------------------------------------------------------------------------------",
	}
	lines = append(lines, rows...)
	lines = append(lines, "--------------------------------------------------------------------------------")
	return lines
}

func findIssue(issues []PlanIssue, name string) (PlanIssue, bool) {
	for _, issue := range issues {
		if issue.Issue == name {
			return issue, true
		}
	}
	return PlanIssue{}, false
}

func TestAnalyzeOraclePlanFullTableScan(t *testing.T) {
	issues := analyzeOraclePlan(planWithOps(
		"|   0 | SELECT STATEMENT          |           |   107 |  7383 |     3   (0)| 00:00:01 |",
		"|   1 |  TABLE ACCESS FULL        | EMPLOYEES |   107 |  7383 |     3   (0)| 00:00:01 |",
	))

	issue, ok := findIssue(issues, "FULL_TABLE_SCAN")
	if !ok {
		t.Fatalf("expected FULL_TABLE_SCAN, got %+v", issues)
	}
	if issue.Severity != "WARNING" {
		t.Errorf("severity = %q, want WARNING", issue.Severity)
	}
	if !strings.Contains(issue.Detail, "EMPLOYEES") {
		t.Errorf("detail should name the scanned table: %q", issue.Detail)
	}
}

func TestAnalyzeOraclePlanCartesianIsCritical(t *testing.T) {
	issues := analyzeOraclePlan(planWithOps(
		"|   1 |  MERGE JOIN CARTESIAN     |           |  1000 | 50000 |    90   (5)| 00:00:02 |",
	))

	issue, ok := findIssue(issues, "CARTESIAN_PRODUCT")
	if !ok {
		t.Fatalf("expected CARTESIAN_PRODUCT, got %+v", issues)
	}
	if issue.Severity != "CRITICAL" {
		t.Errorf("severity = %q, want CRITICAL", issue.Severity)
	}
}

func TestAnalyzeOraclePlanHashJoinIsInfo(t *testing.T) {
	issues := analyzeOraclePlan(planWithOps(
		"|   1 |  HASH JOIN                |           |   500 | 25000 |    12   (9)| 00:00:01 |",
	))

	issue, ok := findIssue(issues, "HASH_JOIN")
	if !ok {
		t.Fatalf("expected HASH_JOIN, got %+v", issues)
	}
	if issue.Severity != "INFO" {
		t.Errorf("severity = %q, want INFO", issue.Severity)
	}
}

func TestAnalyzeOraclePlanHighCost(t *testing.T) {
	issues := analyzeOraclePlan(planWithOps(
		"|   1 |  SORT ORDER BY            |           |  9000K|   500M|   250123  (3)| 00:01:40 |",
	))

	if _, ok := findIssue(issues, "HIGH_COST"); !ok {
		t.Fatalf("expected HIGH_COST for cost 250123, got %+v", issues)
	}
}

func TestAnalyzeOraclePlanCleanPlan(t *testing.T) {
	issues := analyzeOraclePlan(planWithOps(
		"|   0 | SELECT STATEMENT          |           |     1 |    10 |     1   (0)| 00:00:01 |",
		"|   1 |  INDEX UNIQUE SCAN        | PK_EMP    |     1 |    10 |     1   (0)| 00:00:01 |",
	))

	if len(issues) != 1 || issues[0].Issue != "NO_ISSUES" {
		t.Fatalf("clean plan should report NO_ISSUES only, got %+v", issues)
	}
	if issues[0].Severity != "INFO" {
		t.Errorf("severity = %q, want INFO", issues[0].Severity)
	}
}

func TestAnalyzeOraclePlanEmptyInput(t *testing.T) {
	issues := analyzeOraclePlan(nil)
	if len(issues) != 1 || issues[0].Issue != "NO_ISSUES" {
		t.Fatalf("empty plan should report NO_ISSUES, got %+v", issues)
	}
}

func TestParsePlanCost(t *testing.T) {
	tests := []struct {
		cell string
		want int
		ok   bool
	}{
		{cell: "3   (0)", want: 3, ok: true},
		{cell: "250123  (3)", want: 250123, ok: true},
		{cell: "Cost (%CPU)", ok: false},
		{cell: "", ok: false},
		{cell: "--------", ok: false},
	}

	for _, tt := range tests {
		got, ok := parsePlanCost(tt.cell)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parsePlanCost(%q) = (%d, %v), want (%d, %v)", tt.cell, got, ok, tt.want, tt.ok)
		}
	}
}
