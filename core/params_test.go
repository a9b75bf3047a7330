package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/NikBulygin/xlsx2pdf/config"
)

func TestFormatScalar(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   string
		wantOK bool
	}{
		{"nil", nil, "", true},
		{"string", "Ada", "Ada", true},
		{"bool", true, "true", true},
		{"int", 42, "42", true},
		{"int64", int64(-7), "-7", true},
		{"float without exponent", 1e21, "1000000000000000000000", true},
		{"float fraction", 2.5, "2.5", true},
		{"json number", json.Number("12.30"), "12.30", true},
		{"time", time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC), "2024-03-09", true},
		{"slice", []any{"x"}, "", false},
		{"map", map[string]any{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FormatScalar(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("FormatScalar(%v) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestTableValue_RaggedColumns(t *testing.T) {
	table := &TableValue{Columns: []TableColumn{
		{Name: "col1", Values: []any{"x", "y"}},
		{Name: "col2", Values: []any{"z"}},
	}}
	if n := table.NumRows(); n != 2 {
		t.Fatalf("NumRows = %d, want 2", n)
	}
	if v := table.Value(1, 1); v != "" {
		t.Errorf("Value(1,1) = %v, want empty padding", v)
	}
	if v := table.Value(5, 0); v != "" {
		t.Errorf("Value out of range = %v, want empty", v)
	}
}

func TestParseParamMap(t *testing.T) {
	var decoded map[string]any
	raw := `{"name":"Ada","count":3,"items":{"col2":["z"],"col1":["x","y"]}}`
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatal(err)
	}

	params, err := ParseParamMap(decoded)
	if err != nil {
		t.Fatalf("ParseParamMap error: %v", err)
	}
	if params["name"] != "Ada" {
		t.Errorf("name = %v, want Ada", params["name"])
	}
	table, ok := params["items"].(*TableValue)
	if !ok {
		t.Fatalf("items = %T, want *TableValue", params["items"])
	}
	if table.Columns[0].Name != "col1" || table.Columns[1].Name != "col2" {
		t.Errorf("columns = %s,%s, want col1,col2", table.Columns[0].Name, table.Columns[1].Name)
	}

	typed, err := ParseParamMap(map[string]any{"items": map[string][]string{"a": {"1", "2"}}})
	if err != nil {
		t.Fatalf("ParseParamMap typed error: %v", err)
	}
	if got := typed["items"].(*TableValue).NumRows(); got != 2 {
		t.Errorf("typed rows = %d, want 2", got)
	}
}

func TestParseParamMap_OrderedColumns(t *testing.T) {
	decoded, err := config.DecodeJSON(strings.NewReader(`{"items":{"col2":["z"],"col1":["x","y"]},"n":1}`))
	if err != nil {
		t.Fatal(err)
	}
	params, err := ParseParamMap(decoded)
	if err != nil {
		t.Fatalf("ParseParamMap error: %v", err)
	}
	table := params["items"].(*TableValue)
	if table.Columns[0].Name != "col2" || table.Columns[1].Name != "col1" {
		t.Errorf("columns = %s,%s, want col2,col1", table.Columns[0].Name, table.Columns[1].Name)
	}
	if s, _ := FormatScalar(params["n"]); s != "1" {
		t.Errorf("n = %v, want 1", params["n"])
	}
}

func TestParseParamMap_InvalidShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  any
	}{
		{"not a mapping", []any{"a"}},
		{"string result", "oops"},
		{"list value", map[string]any{"x": []any{"a"}}},
		{"column not a list", map[string]any{"t": map[string]any{"c": "a"}}},
		{"nested table", map[string]any{"t": map[string]any{"c": []any{map[string]any{}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseParamMap(tt.raw)
			if !errors.Is(err, ErrInvalidExtensionResult) {
				t.Fatalf("error = %v, want ErrInvalidExtensionResult", err)
			}
		})
	}
}
