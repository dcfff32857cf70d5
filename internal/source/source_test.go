package source

import (
	"reflect"
	"testing"
)

func pkgRow(name string, line int, text string) sourceRow {
	return sourceRow{owner: "DWHPROD", name: name, typ: "PACKAGE BODY", line: line, text: text}
}

func TestAccumulateAndsFiltersAtObjectLevel(t *testing.T) {
	m, err := newLineMatcher(Options{Table: "DIM_CUSTOMER", Text: "INSERT INTO"})
	if err != nil {
		t.Fatal(err)
	}

	// PKG_A references the table and performs the insert on separate
	// lines; PKG_B only mentions the table.
	rows := []sourceRow{
		pkgRow("PKG_A", 10, "  FROM DIM_CUSTOMER c"),
		pkgRow("PKG_A", 42, "  INSERT INTO stage_tmp"),
		pkgRow("PKG_B", 7, "  JOIN DIM_CUSTOMER d ON d.id = f.cust_id"),
	}

	states := accumulate(rows, m)
	selected := selectObjects(states, m, DefaultObjectLimit)

	if len(selected) != 1 {
		t.Fatalf("selected = %v, want only PKG_A", selected)
	}
	if selected[0].Name != "PKG_A" {
		t.Errorf("selected %q, want PKG_A", selected[0].Name)
	}

	state := states[selected[0]]
	if !reflect.DeepEqual(state.lineNums, []int{10, 42}) {
		t.Errorf("matching lines = %v, want [10 42]", state.lineNums)
	}
}

func TestAccumulateSingleFilter(t *testing.T) {
	m, err := newLineMatcher(Options{Table: "fact_order"})
	if err != nil {
		t.Fatal(err)
	}

	rows := []sourceRow{
		pkgRow("PKG_LOAD", 3, "  MERGE INTO FACT_ORDER f"),
	}

	states := accumulate(rows, m)
	selected := selectObjects(states, m, DefaultObjectLimit)
	if len(selected) != 1 {
		t.Fatalf("case-folded single-filter match failed: %v", selected)
	}
}

func TestSelectObjectsOrderAndLimit(t *testing.T) {
	m, err := newLineMatcher(Options{Text: "COMMIT"})
	if err != nil {
		t.Fatal(err)
	}

	rows := []sourceRow{
		{owner: "B_OWNER", name: "PKG_Z", typ: "PACKAGE", line: 1, text: "COMMIT;"},
		{owner: "A_OWNER", name: "PKG_Y", typ: "PACKAGE", line: 1, text: "COMMIT;"},
		{owner: "A_OWNER", name: "PKG_X", typ: "PACKAGE", line: 1, text: "COMMIT;"},
	}

	states := accumulate(rows, m)

	all := selectObjects(states, m, 10)
	want := []objectKey{
		{Owner: "A_OWNER", Name: "PKG_X", Type: "PACKAGE"},
		{Owner: "A_OWNER", Name: "PKG_Y", Type: "PACKAGE"},
		{Owner: "B_OWNER", Name: "PKG_Z", Type: "PACKAGE"},
	}
	if !reflect.DeepEqual(all, want) {
		t.Errorf("order = %v, want %v", all, want)
	}

	capped := selectObjects(states, m, 2)
	if len(capped) != 2 || capped[1].Name != "PKG_Y" {
		t.Errorf("limit should keep the first two in sorted order, got %v", capped)
	}
}

func TestLineMatcherRegex(t *testing.T) {
	m, err := newLineMatcher(Options{Table: `DIM_\w+`, Regex: true})
	if err != nil {
		t.Fatal(err)
	}
	if !m.matchesTable("select * from dim_customer") {
		t.Error("case-insensitive regex should match lowercase source")
	}
	if m.matchesTable("select * from fact_order") {
		t.Error("regex matched unrelated line")
	}

	if _, err := newLineMatcher(Options{Text: "(", Regex: true}); err == nil {
		t.Error("expected error for invalid regex pattern")
	}
}

func TestLineMatcherEmptyLineNeverMatches(t *testing.T) {
	m, err := newLineMatcher(Options{Table: "X"})
	if err != nil {
		t.Fatal(err)
	}
	if m.matchesTable("") {
		t.Error("empty line should never match")
	}
}

func TestCapLineNumbers(t *testing.T) {
	long := make([]int, 150)
	for i := range long {
		long[i] = i + 1
	}
	if got := capLineNumbers(long); len(got) != matchingLineCap {
		t.Errorf("len = %d, want %d", len(got), matchingLineCap)
	}
	if got := capLineNumbers([]int{1, 2}); len(got) != 2 {
		t.Errorf("short list should pass through, got %v", got)
	}
	if got := capLineNumbers(nil); got == nil || len(got) != 0 {
		t.Errorf("nil should become an empty list, got %v", got)
	}
}

func TestTruncateLinesLeavesMatchesAlone(t *testing.T) {
	lines := []Line{{Line: 1, Text: "a"}, {Line: 2, Text: "b"}, {Line: 3, Text: "c"}}

	if got := truncateLines(lines, 2); len(got) != 2 || got[1].Line != 2 {
		t.Errorf("truncateLines(2) = %v", got)
	}
	if got := truncateLines(lines, 0); len(got) != 3 {
		t.Errorf("limit 0 should keep all lines, got %v", got)
	}
}

func TestNormalizeTypes(t *testing.T) {
	got := normalizeTypes([]string{" package body ", "procedure", "bogus"})
	want := []string{"PACKAGE BODY", "PROCEDURE"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("normalizeTypes = %v, want %v", got, want)
	}

	all := normalizeTypes(nil)
	if len(all) != 4 {
		t.Errorf("empty request should expand to all types, got %v", all)
	}
}

func TestSplitObjectName(t *testing.T) {
	owner, object := splitObjectName("DWHPROD.PKG_DIM_CUSTOMER")
	if owner != "DWHPROD" || object != "PKG_DIM_CUSTOMER" {
		t.Errorf("split = (%q, %q)", owner, object)
	}

	owner, object = splitObjectName("PKG_DIM_CUSTOMER")
	if owner != "" || object != "PKG_DIM_CUSTOMER" {
		t.Errorf("bare name split = (%q, %q)", owner, object)
	}
}

func TestObjectLimitDefault(t *testing.T) {
	if got := (Options{}).objectLimit(); got != DefaultObjectLimit {
		t.Errorf("default = %d, want %d", got, DefaultObjectLimit)
	}
	if got := (Options{ObjectLimit: 5}).objectLimit(); got != 5 {
		t.Errorf("explicit = %d, want 5", got)
	}
}
