package core

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// tokenPattern matches {{name}}; names may contain inner spaces.
var tokenPattern = regexp.MustCompile(`\{\{\s*([^{}]*?)\s*\}\}`)

// Expansion is a queued table insertion at the cell that held the table token.
type Expansion struct {
	Col, Row int
	Key      string
	Table    *TableValue
	// Reserved is the number of rows already inserted below Row by an
	// earlier table on the same row.
	Reserved int
}

// Engine substitutes {{name}} tokens on a sheet and expands table values.
type Engine struct {
	// AllowUnused accepts parameters whose token does not occur on the
	// sheet. By default they fail like a missing value does, so a second
	// pass over a filled sheet is an error.
	AllowUnused bool

	logger   *slog.Logger
	expander *Expander
}

// NewEngine creates an engine logging to logger.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{
		logger:   logger,
		expander: NewExpander(logger),
	}
}

// Populate substitutes every token on the sheet, then applies the queued
// table expansions in the order their tokens were found.
func (e *Engine) Populate(sheet Sheet, params ParamMap) error {
	queue, err := e.Substitute(sheet, params)
	if err != nil {
		return err
	}

	// Rows inserted below an anchor push later anchors down. Tables that
	// share an anchor row reuse the rows inserted for earlier ones.
	inserted := make(map[int]int)
	for _, x := range queue {
		anchor := x.Row
		for r, n := range inserted {
			if anchor > r {
				x.Row += n
			}
		}
		x.Reserved = inserted[anchor]
		added, err := e.expander.Expand(sheet, x)
		if err != nil {
			return fmt.Errorf("expand table %q at %s: %w", x.Key, cellName(x.Col, x.Row), err)
		}
		inserted[anchor] += added
	}
	return nil
}

// Substitute replaces scalar tokens in place and clears table tokens,
// returning the expansions to apply. No rows move during the scan.
func (e *Engine) Substitute(sheet Sheet, params ParamMap) ([]Expansion, error) {
	e.logger.Debug("Replacing variables in sheet", "sheet", sheet.Name(), "params", len(params))

	rows, err := sheet.Rows()
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet.Name(), err)
	}

	used := make(map[string]struct{}, len(params))
	var queue []Expansion
	for r, row := range rows {
		for c, text := range row {
			if !strings.Contains(text, "{{") {
				continue
			}
			col, rowNum := c+1, r+1
			out, table, err := e.substituteCell(text, col, rowNum, params, used)
			if err != nil {
				e.logger.Error("Unresolved placeholder", "sheet", sheet.Name(), "error", err)
				return nil, err
			}
			if out != text {
				if err := sheet.SetCellValue(col, rowNum, out); err != nil {
					return nil, fmt.Errorf("write %s: %w", cellName(col, rowNum), err)
				}
			}
			if table != nil {
				queue = append(queue, *table)
			}
		}
	}

	if !e.AllowUnused {
		var unused []string
		for key := range params {
			if _, ok := used[key]; !ok {
				unused = append(unused, key)
			}
		}
		if len(unused) > 0 {
			sort.Strings(unused)
			err := &MissingPlaceholderError{Key: unused[0]}
			e.logger.Error("Unused parameter", "sheet", sheet.Name(), "unused", unused, "error", err)
			return nil, err
		}
	}

	e.logger.Debug("Finished replacing variables", "sheet", sheet.Name(), "tables", len(queue))
	return queue, nil
}

// substituteCell rewrites one cell's text. Tokens are resolved left to
// right against the original text, so substituted values are never scanned
// again. Only the first table token of a cell is queued; later ones are
// cleared.
func (e *Engine) substituteCell(text string, col, row int, params ParamMap, used map[string]struct{}) (string, *Expansion, error) {
	matches := tokenPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil, nil
	}

	var (
		b     strings.Builder
		queue *Expansion
		last  int
	)
	for _, m := range matches {
		key := text[m[2]:m[3]]
		b.WriteString(text[last:m[0]])
		last = m[1]

		value, ok := params[key]
		if !ok {
			return "", nil, &MissingPlaceholderError{Key: key, Cell: cellName(col, row)}
		}
		used[key] = struct{}{}

		if table, isTable := value.(*TableValue); isTable {
			if queue == nil {
				queue = &Expansion{Col: col, Row: row, Key: key, Table: table}
			} else {
				e.logger.Warn("Ignoring second table placeholder in cell",
					"cell", cellName(col, row), "key", key, "queued", queue.Key)
			}
			continue
		}

		s, ok := FormatScalar(value)
		if !ok {
			return "", nil, fmt.Errorf("%w: parameter %q has unsupported type %T", ErrInvalidExtensionResult, key, value)
		}
		b.WriteString(s)
	}
	b.WriteString(text[last:])
	return b.String(), queue, nil
}

func cellName(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Sprintf("R%dC%d", row, col)
	}
	return name
}
