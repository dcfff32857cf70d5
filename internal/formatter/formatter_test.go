package formatter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"dbscout/internal/catalog"
	"dbscout/internal/query"
	"dbscout/internal/source"
)

func sampleTableInfo() *catalog.TableInfo {
	deflt := "SYSDATE"
	high := "TO_DATE('2025-01-01')"
	rows := int64(1204000)
	analyzed := time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	return &catalog.TableInfo{
		Schema:       "SALES",
		Table:        "DIM_CUSTOMER",
		DBType:       "oracle",
		TableComment: "Customer dimension",
		Columns: []catalog.Column{
			{Name: "CUST_ID", DataType: "NUMBER(10)", Nullable: false},
			{Name: "CREATED_AT", DataType: "DATE", Nullable: true, Default: &deflt, Comment: "load timestamp"},
		},
		Indexes: []catalog.Index{
			{Name: "PK_DIM_CUSTOMER", Type: "NORMAL", Unique: "UNIQUE", Columns: "CUST_ID"},
		},
		Partitions: []catalog.Partition{
			{Name: "P2024", Position: 1, HighValue: &high},
		},
		Statistics: &catalog.Statistics{NumRows: &rows, LastAnalyzed: &analyzed},
	}
}

func TestTextFormatTable(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTextFormatter(&buf).FormatTable(sampleTableInfo()); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{
		"TABLE SALES.DIM_CUSTOMER (oracle)",
		"Customer dimension",
		"CUST_ID: NUMBER(10) NOT NULL",
		"DEFAULT SYSDATE",
		"-- load timestamp",
		"PK_DIM_CUSTOMER (CUST_ID) UNIQUE",
		"PARTITIONS (1):",
		"rows: 1204000",
		"last analyzed: 2025-06-01 03:00:00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdownFormatTableEscapesPipes(t *testing.T) {
	info := sampleTableInfo()
	info.Columns[1].Comment = "either A|B"

	var buf bytes.Buffer
	if err := NewMarkdownFormatter(&buf).FormatTable(info); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, `either A\|B`) {
		t.Errorf("pipe in comment not escaped:\n%s", out)
	}
	if !strings.Contains(out, "# SALES.DIM_CUSTOMER (oracle)") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "| CUST_ID | NUMBER(10) | NO |") {
		t.Errorf("missing column row:\n%s", out)
	}
}

func TestTextFormatColumnMatches(t *testing.T) {
	var buf bytes.Buffer
	matches := []catalog.ColumnMatch{
		{Schema: "SALES", Table: "FACT_ORDER", Column: "REVENUE_AMT", DataType: "NUMBER(18,2)", ColumnComment: "net revenue"},
	}
	if err := NewTextFormatter(&buf).FormatColumnMatches(matches); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "Found 1 matching column(s)") {
		t.Errorf("missing count line:\n%s", out)
	}
	if !strings.Contains(out, "SALES.FACT_ORDER.REVENUE_AMT  NUMBER(18,2)  -- net revenue") {
		t.Errorf("missing match line:\n%s", out)
	}

	buf.Reset()
	if err := NewTextFormatter(&buf).FormatColumnMatches(nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No matching tables or columns found.") {
		t.Errorf("missing empty message: %s", buf.String())
	}
}

func TestTextFormatSourceMatches(t *testing.T) {
	var buf bytes.Buffer
	matches := []source.Match{
		{
			Schema:              "DWHPROD",
			Name:                "PKG_LOAD",
			Type:                "PACKAGE BODY",
			MatchCount:          2,
			MatchingLineNumbers: []int{10, 42},
			Lines:               []source.Line{{Line: 1, Text: "PACKAGE BODY PKG_LOAD IS"}},
		},
	}
	if err := NewTextFormatter(&buf).FormatSourceMatches(matches); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "[PACKAGE BODY] DWHPROD.PKG_LOAD  (2 lines reference search term)") {
		t.Errorf("missing object header:\n%s", out)
	}
	if !strings.Contains(out, "PACKAGE BODY PKG_LOAD IS") {
		t.Errorf("missing source line:\n%s", out)
	}
}

func TestTextFormatResult(t *testing.T) {
	var buf bytes.Buffer
	res := &query.Result{
		Columns:         []string{"ID", "NAME"},
		Rows:            [][]any{{int64(1), "Ann"}, {int64(2), nil}},
		RowCount:        2,
		ExecutionTimeMS: 12,
		Truncated:       true,
		RowLimit:        2,
	}
	if err := NewTextFormatter(&buf).FormatResult(res); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "ID | NAME") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "2 | NULL") {
		t.Errorf("nil cell should print as NULL:\n%s", out)
	}
	if !strings.Contains(out, "2 row(s) in 12 ms (truncated at 2)") {
		t.Errorf("missing footer:\n%s", out)
	}
}

func TestMarkdownFormatPlan(t *testing.T) {
	var buf bytes.Buffer
	plan := &query.Plan{
		Lines: []string{"| 1 | TABLE ACCESS FULL | EMPLOYEES |"},
		Issues: []query.PlanIssue{
			{Severity: "WARNING", Issue: "FULL_TABLE_SCAN", Detail: "full scan of EMPLOYEES, an index may help"},
		},
	}
	if err := NewMarkdownFormatter(&buf).FormatPlan(plan); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "```") {
		t.Errorf("plan should be fenced:\n%s", out)
	}
	if !strings.Contains(out, "**WARNING** FULL_TABLE_SCAN") {
		t.Errorf("missing finding:\n%s", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter(&buf).Format(map[string]int{"row_count": 3}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\"row_count\": 3") {
		t.Errorf("unexpected JSON: %s", buf.String())
	}
}
