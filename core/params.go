package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/NikBulygin/xlsx2pdf/config"
)

// ParamMap maps placeholder names to scalars or *TableValue.
type ParamMap map[string]any

// TableColumn is one named, ordered column of a TableValue.
type TableColumn struct {
	Name   string
	Values []any
}

// TableValue is a set of named columns expanded into rows of the sheet.
// Columns may have different lengths; missing cells render as empty.
type TableValue struct {
	Columns []TableColumn
}

// NumRows returns the length of the longest column.
func (t *TableValue) NumRows() int {
	n := 0
	for _, c := range t.Columns {
		n = max(n, len(c.Values))
	}
	return n
}

// Value returns the cell at column c, row r, or "" past the end of a short column.
func (t *TableValue) Value(c, r int) any {
	if c < 0 || c >= len(t.Columns) {
		return ""
	}
	values := t.Columns[c].Values
	if r < 0 || r >= len(values) {
		return ""
	}
	return values[r]
}

// FormatScalar renders a scalar parameter as cell text.
// ok is false when v is not a scalar.
func FormatScalar(v any) (s string, ok bool) {
	switch x := v.(type) {
	case nil:
		return "", true
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case int:
		return strconv.Itoa(x), true
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", x), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case json.Number:
		return x.String(), true
	case time.Time:
		return x.Format("2006-01-02"), true
	case fmt.Stringer:
		return x.String(), true
	}
	return "", false
}

func isScalar(v any) bool {
	_, ok := FormatScalar(v)
	return ok
}

// ParseParamMap converts decoded JSON or YAML into a ParamMap.
// Every value must be a scalar or a mapping of column name to a list of
// scalars; anything else fails with ErrInvalidExtensionResult. Columns of
// *config.OrderedMap tables keep their key order; columns of plain Go maps
// are sorted by name.
func ParseParamMap(raw any) (ParamMap, error) {
	var src map[string]any
	switch m := raw.(type) {
	case *config.OrderedMap:
		src = m.Values
	case ParamMap:
		src = m
	case map[string]any:
		src = m
	default:
		return nil, fmt.Errorf("%w: expected a mapping of names to values, got %T", ErrInvalidExtensionResult, raw)
	}

	params := make(ParamMap, len(src))
	for key, v := range src {
		val, err := parseParamValue(v)
		if err != nil {
			return nil, fmt.Errorf("%w: parameter %q: %v", ErrInvalidExtensionResult, key, err)
		}
		params[key] = val
	}
	return params, nil
}

func parseParamValue(v any) (any, error) {
	switch x := v.(type) {
	case *TableValue:
		return x, nil
	case TableValue:
		return &x, nil
	case *config.OrderedMap:
		return tableFromMap(x.Keys, x.Values)
	case map[string]any:
		return tableFromMap(sortedKeys(x), x)
	case map[string][]any:
		m := make(map[string]any, len(x))
		for k, col := range x {
			m[k] = col
		}
		return tableFromMap(sortedKeys(m), m)
	case map[string][]string:
		m := make(map[string]any, len(x))
		for k, col := range x {
			values := make([]any, len(col))
			for i, s := range col {
				values[i] = s
			}
			m[k] = values
		}
		return tableFromMap(sortedKeys(m), m)
	}
	if isScalar(v) {
		return v, nil
	}
	return nil, fmt.Errorf("unsupported value of type %T", v)
}

func sortedKeys(m map[string]any) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// tableFromMap builds a table with one column per name, in the given order.
func tableFromMap(names []string, m map[string]any) (*TableValue, error) {
	table := &TableValue{Columns: make([]TableColumn, 0, len(names))}
	for _, name := range names {
		list, ok := m[name].([]any)
		if !ok {
			return nil, fmt.Errorf("column %q must be a list, got %T", name, m[name])
		}
		for i, cell := range list {
			if !isScalar(cell) {
				return nil, fmt.Errorf("column %q row %d: unsupported value of type %T", name, i, cell)
			}
		}
		table.Columns = append(table.Columns, TableColumn{Name: name, Values: list})
	}
	return table, nil
}
