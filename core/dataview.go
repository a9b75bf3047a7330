package core

import (
	"fmt"
	"sort"

	"github.com/NikBulygin/xlsx2pdf/config"
)

// DataView represents fetched rows with the column mapping of a data view.
type DataView struct {
	Config        *config.DataViewConfig
	Data          []map[string]interface{}
	ColumnMapping map[string]string // table column name -> source column
}

// NewDataView creates a new DataView instance.
func NewDataView(conf *config.DataViewConfig, data []map[string]interface{}) *DataView {
	mapping := make(map[string]string, len(conf.Columns))
	for _, c := range conf.Columns {
		source := c.Column
		if source == "" {
			source = c.Name
		}
		mapping[c.Name] = source
	}
	return &DataView{
		Config:        conf,
		Data:          data,
		ColumnMapping: mapping,
	}
}

// Filters returns the source-column filters for the given parameters.
// Parameters the view does not filter on are ignored.
func (v *DataView) Filters(params map[string]any) map[string]string {
	return viewFilters(v.Config, params)
}

func viewFilters(conf *config.DataViewConfig, params map[string]any) map[string]string {
	if len(conf.Filters) == 0 {
		return nil
	}
	filters := make(map[string]string, len(conf.Filters))
	for param, column := range conf.Filters {
		val, ok := params[param]
		if !ok {
			continue
		}
		if s, ok := FormatScalar(val); ok {
			filters[column] = s
		}
	}
	return filters
}

// Filter keeps only the rows whose columns equal the given filter values.
func (v *DataView) Filter(filters map[string]string) {
	if len(filters) == 0 {
		return
	}

	var filtered []map[string]interface{}
	for _, row := range v.Data {
		match := true
		for column, want := range filters {
			if rowVal, hasCol := row[column]; hasCol {
				if got, _ := FormatScalar(rowVal); got != want {
					match = false
					break
				}
			}
		}
		if match {
			filtered = append(filtered, row)
		}
	}
	v.Data = filtered
}

// GetRowCount returns the number of rows.
func (v *DataView) GetRowCount() int {
	return len(v.Data)
}

// Copy creates a copy of the DataView whose rows can be filtered without
// affecting the original. Config and ColumnMapping are shared as they are read-only.
func (v *DataView) Copy() *DataView {
	newData := make([]map[string]interface{}, len(v.Data))
	for i, row := range v.Data {
		newRow := make(map[string]interface{}, len(row))
		for k, val := range row {
			newRow[k] = val
		}
		newData[i] = newRow
	}
	return &DataView{
		Config:        v.Config,
		Data:          newData,
		ColumnMapping: v.ColumnMapping,
	}
}

// Columns returns the configured columns, or every source column in name
// order when the view declares none.
func (v *DataView) Columns() []config.ColumnConfig {
	if len(v.Config.Columns) > 0 {
		return v.Config.Columns
	}
	seen := make(map[string]struct{})
	for _, row := range v.Data {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	cols := make([]config.ColumnConfig, len(names))
	for i, n := range names {
		cols[i] = config.ColumnConfig{Name: n, Column: n}
	}
	return cols
}

// Table converts the rows into a column-major TableValue, honouring RowLimit.
// Values that are not scalars are rendered with %v.
func (v *DataView) Table() *TableValue {
	rows := v.Data
	if limit := v.Config.RowLimit; limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	cols := v.Columns()
	table := &TableValue{Columns: make([]TableColumn, len(cols))}
	for i, c := range cols {
		source := c.Column
		if source == "" {
			source = c.Name
		}
		values := make([]any, len(rows))
		for r, row := range rows {
			val := row[source]
			if !isScalar(val) {
				val = fmt.Sprintf("%v", val)
			}
			values[r] = val
		}
		table.Columns[i] = TableColumn{Name: c.Name, Values: values}
	}
	return table
}
