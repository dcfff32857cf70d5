package catalog

import "testing"

func TestFoldIndexesOrdersByKeyPosition(t *testing.T) {
	raw := []indexRow{
		{name: "IDX1", indexTyp: "NORMAL", unique: "NONUNIQUE", column: "COL_B", position: 2},
		{name: "IDX1", indexTyp: "NORMAL", unique: "NONUNIQUE", column: "COL_A", position: 1},
	}

	indexes := foldIndexes(raw)
	if len(indexes) != 1 {
		t.Fatalf("expected 1 index, got %d", len(indexes))
	}
	if indexes[0].Columns != "COL_A, COL_B" {
		t.Errorf("columns = %q, want %q (key position order, not fetch order)", indexes[0].Columns, "COL_A, COL_B")
	}
}

func TestFoldIndexesOneEntryPerName(t *testing.T) {
	raw := []indexRow{
		{name: "PK_T", indexTyp: "NORMAL", unique: "UNIQUE", column: "ID", position: 1},
		{name: "IDX_T_AB", indexTyp: "NORMAL", unique: "NONUNIQUE", column: "A", position: 1},
		{name: "IDX_T_AB", indexTyp: "NORMAL", unique: "NONUNIQUE", column: "B", position: 2},
		{name: "IDX_T_AB", indexTyp: "NORMAL", unique: "NONUNIQUE", column: "C", position: 3},
	}

	indexes := foldIndexes(raw)
	if len(indexes) != 2 {
		t.Fatalf("expected 2 indexes, got %d", len(indexes))
	}

	byName := map[string]Index{}
	for _, idx := range indexes {
		byName[idx.Name] = idx
	}
	if byName["PK_T"].Unique != "UNIQUE" || byName["PK_T"].Columns != "ID" {
		t.Errorf("PK_T = %+v", byName["PK_T"])
	}
	if byName["IDX_T_AB"].Columns != "A, B, C" {
		t.Errorf("IDX_T_AB columns = %q", byName["IDX_T_AB"].Columns)
	}
}

func TestFoldIndexesEmpty(t *testing.T) {
	if got := foldIndexes(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}
