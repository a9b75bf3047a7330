package core

import "testing"

func TestGrid_InsertRows(t *testing.T) {
	g := GridFromRows("Sheet1", [][]string{
		{"a1", "b1"},
		{"a2"},
		{"a3", "b3"},
	})
	if err := g.SetRowHeight(3, 30); err != nil {
		t.Fatal(err)
	}
	if err := g.InsertRows(2, 2); err != nil {
		t.Fatal(err)
	}

	rows, _ := g.Rows()
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(rows))
	}
	want := map[[2]int]string{{1, 1}: "a1", {1, 4}: "a2", {2, 5}: "b3", {1, 2}: "", {1, 3}: ""}
	for pos, v := range want {
		got, _ := g.CellValue(pos[0], pos[1])
		if got != v {
			t.Errorf("cell (%d,%d) = %q, want %q", pos[0], pos[1], got, v)
		}
	}
	if h, _ := g.RowHeight(5); h != 30 {
		t.Errorf("height of moved row = %v, want 30", h)
	}
	if h, _ := g.RowHeight(3); h != DefaultRowHeight {
		t.Errorf("height of inserted row = %v, want default", h)
	}
}

func TestGrid_MergeOverlap(t *testing.T) {
	g := NewGrid("Sheet1")
	if err := g.Merge(Region{StartCol: 1, StartRow: 1, EndCol: 2, EndRow: 2}); err != nil {
		t.Fatal(err)
	}
	if err := g.Merge(Region{StartCol: 2, StartRow: 2, EndCol: 3, EndRow: 3}); err == nil {
		t.Error("expected overlap error")
	}
	if err := g.Unmerge(Region{StartCol: 5, StartRow: 5, EndCol: 6, EndRow: 6}); err == nil {
		t.Error("expected error unmerging unknown region")
	}
}

func TestGrid_InvalidCoordinates(t *testing.T) {
	g := NewGrid("Sheet1")
	if err := g.SetCellValue(0, 1, "x"); err == nil {
		t.Error("expected error for column 0")
	}
	if err := g.SetCellValue(1, 1, []int{1}); err == nil {
		t.Error("expected error for non-scalar value")
	}
}
