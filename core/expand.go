package core

import (
	"fmt"
	"log/slog"
)

// Expander writes a table value into a sheet, growing it in place.
//
// The anchor row becomes the first data row and numRows-1 blank rows are
// inserted directly below it. Merged regions are detached before the
// insertion and re-created afterwards: regions starting below the anchor
// move down by the inserted count, regions crossing the anchor row grow.
// Style and height come from the row above the anchor.
type Expander struct {
	logger *slog.Logger
}

// NewExpander creates an expander logging to logger.
func NewExpander(logger *slog.Logger) *Expander {
	return &Expander{logger: logger}
}

// Expand applies x to sheet and returns the number of rows inserted.
// The anchor row holds the first table row and numRows-1 rows are inserted
// below it, so the sheet grows by numRows-1 (less any rows Reserved by an
// earlier table on the same row). An empty table changes nothing.
func (e *Expander) Expand(sheet Sheet, x Expansion) (int, error) {
	numRows := x.Table.NumRows()
	e.logger.Debug("Replacing table", "sheet", sheet.Name(), "cell", cellName(x.Col, x.Row),
		"key", x.Key, "columns", len(x.Table.Columns), "rows", numRows)
	if numRows == 0 {
		return 0, nil
	}

	insertAt := x.Row + 1 + x.Reserved
	insertCount := max(numRows-1-x.Reserved, 0)

	var tracker *MergeTracker
	if insertCount > 0 {
		var err error
		if tracker, err = NewMergeTracker(sheet); err != nil {
			return 0, err
		}
		if err := tracker.Detach(); err != nil {
			return 0, err
		}
		if err := sheet.InsertRows(insertAt, insertCount); err != nil {
			return 0, fmt.Errorf("failed to insert rows: %w", err)
		}
	}

	styles, height, hasProto := e.prototype(sheet, x)

	for c := range x.Table.Columns {
		col := x.Col + c
		for r := range numRows {
			row := x.Row + r
			if err := sheet.SetCellValue(col, row, x.Table.Value(c, r)); err != nil {
				return 0, fmt.Errorf("write %s: %w", cellName(col, row), err)
			}
			if styles == nil || !styles[c].ok {
				continue
			}
			if err := sheet.SetCellStyle(col, row, styles[c].snapshot); err != nil {
				e.logger.Warn("Failed to copy style", "cell", cellName(col, row), "error", err)
			}
		}
	}

	if hasProto && height > 0 {
		for r := range numRows {
			if err := sheet.SetRowHeight(x.Row+r, height); err != nil {
				e.logger.Warn("Failed to copy row height", "row", x.Row+r, "error", err)
			}
		}
	}

	if tracker != nil {
		if err := tracker.Restore(insertAt-1, insertCount); err != nil {
			return 0, fmt.Errorf("restore merged cells: %w", err)
		}
	}
	return insertCount, nil
}

type protoStyle struct {
	snapshot StyleSnapshot
	ok       bool
}

// prototype reads the styles and height of the row above the anchor.
// Failures are logged and leave the affected cells unstyled.
func (e *Expander) prototype(sheet Sheet, x Expansion) ([]protoStyle, float64, bool) {
	proto := x.Row - 1
	if proto < 1 {
		e.logger.Warn("No prototype row above table, skipping style copy",
			"sheet", sheet.Name(), "cell", cellName(x.Col, x.Row), "key", x.Key)
		return nil, 0, false
	}

	styles := make([]protoStyle, len(x.Table.Columns))
	for c := range x.Table.Columns {
		snap, err := sheet.CellStyle(x.Col+c, proto)
		if err != nil {
			e.logger.Warn("Failed to read prototype style", "cell", cellName(x.Col+c, proto), "error", err)
			continue
		}
		styles[c] = protoStyle{snapshot: snap, ok: true}
	}

	height, err := sheet.RowHeight(proto)
	if err != nil {
		e.logger.Warn("Failed to read prototype row height", "row", proto, "error", err)
		return styles, 0, false
	}
	return styles, height, true
}
