package core

import (
	"testing"

	"github.com/NikBulygin/xlsx2pdf/config"
)

func TestDataView_Table(t *testing.T) {
	conf := &config.DataViewConfig{
		Name: "test_view",
		Columns: []config.ColumnConfig{
			{Name: "Name", Column: "NAME"},
			{Name: "Dept", Column: "DEPT"},
			{Name: "Extra"},
		},
		RowLimit: 2,
	}
	data := []map[string]interface{}{
		{"DEPT": "D1", "NAME": "Alice", "Extra": []int{1}},
		{"DEPT": "D1", "NAME": "Bob"},
		{"DEPT": "D2", "NAME": "Charlie"},
	}
	table := NewDataView(conf, data).Table()

	if len(table.Columns) != 3 || table.Columns[0].Name != "Name" {
		t.Fatalf("columns = %+v", table.Columns)
	}
	if table.NumRows() != 2 {
		t.Errorf("rows = %d, want 2 (row limit)", table.NumRows())
	}
	if table.Value(0, 1) != "Bob" || table.Value(1, 0) != "D1" {
		t.Errorf("values = %v, %v", table.Value(0, 1), table.Value(1, 0))
	}
	if table.Value(2, 0) != "[1]" {
		t.Errorf("non-scalar = %v, want [1]", table.Value(2, 0))
	}
	if table.Value(2, 1) != nil {
		t.Errorf("missing value = %v, want nil", table.Value(2, 1))
	}
}

func TestDataView_DerivedColumns(t *testing.T) {
	vv := NewDataView(&config.DataViewConfig{Name: "v"}, []map[string]interface{}{
		{"b": 1, "a": "x"},
		{"c": true},
	})
	cols := vv.Columns()
	if len(cols) != 3 || cols[0].Name != "a" || cols[2].Name != "c" {
		t.Errorf("columns = %+v", cols)
	}
}

func TestDataView_FilterAndCopy(t *testing.T) {
	conf := &config.DataViewConfig{
		Name:    "v",
		Filters: map[string]string{"dept": "DEPT", "day": "DAY"},
	}
	vv := NewDataView(conf, []map[string]interface{}{
		{"DEPT": "D1", "N": 1},
		{"DEPT": "D2", "N": 2},
		{"DEPT": "D2", "N": 3},
	})

	filters := vv.Filters(map[string]any{"dept": "D2", "unrelated": "x"})
	if len(filters) != 1 || filters["DEPT"] != "D2" {
		t.Fatalf("filters = %v", filters)
	}

	cp := vv.Copy()
	cp.Filter(filters)
	if cp.GetRowCount() != 2 {
		t.Errorf("filtered rows = %d, want 2", cp.GetRowCount())
	}
	if vv.GetRowCount() != 3 {
		t.Errorf("original rows = %d, want 3", vv.GetRowCount())
	}
	cp.Data[0]["N"] = 99
	if vv.Data[1]["N"] != 2 {
		t.Error("copy shares rows with the original")
	}
}
