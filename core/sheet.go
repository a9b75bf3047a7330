package core

import (
	"fmt"
	"sort"
)

// Sheet is the mutable grid the substitution engine and the table expander
// operate on. Coordinates are 1-based (column, row).
type Sheet interface {
	Name() string
	// Rows returns the raw text of every cell, indexed [row-1][col-1].
	Rows() ([][]string, error)
	CellValue(col, row int) (string, error)
	SetCellValue(col, row int, value any) error
	// InsertRows inserts n blank rows before row, moving row and everything below it down.
	InsertRows(row, n int) error
	MergedRegions() ([]Region, error)
	Merge(r Region) error
	Unmerge(r Region) error
	CellStyle(col, row int) (StyleSnapshot, error)
	SetCellStyle(col, row int, s StyleSnapshot) error
	RowHeight(row int) (float64, error)
	SetRowHeight(row int, height float64) error
}

// DefaultRowHeight is the height reported for rows without a custom height.
const DefaultRowHeight = 15.0

type gridCell struct {
	value string
	style StyleSnapshot
}

// Grid is an in-memory Sheet: rows of sparse column maps.
type Grid struct {
	name    string
	cells   map[int]map[int]gridCell
	heights map[int]float64
	merges  []Region
}

// NewGrid returns an empty grid with the given sheet name.
func NewGrid(name string) *Grid {
	return &Grid{
		name:    name,
		cells:   make(map[int]map[int]gridCell),
		heights: make(map[int]float64),
	}
}

// GridFromRows builds a grid from text rows; rows[0][0] is A1.
func GridFromRows(name string, rows [][]string) *Grid {
	g := NewGrid(name)
	for r, row := range rows {
		for c, v := range row {
			if v != "" {
				g.set(c+1, r+1, func(cell *gridCell) { cell.value = v })
			}
		}
	}
	return g
}

func (g *Grid) Name() string { return g.name }

func (g *Grid) set(col, row int, fn func(*gridCell)) {
	cols, ok := g.cells[row]
	if !ok {
		cols = make(map[int]gridCell)
		g.cells[row] = cols
	}
	cell := cols[col]
	fn(&cell)
	cols[col] = cell
}

func checkCoords(col, row int) error {
	if col < 1 || row < 1 {
		return fmt.Errorf("invalid cell coordinates (%d, %d)", col, row)
	}
	return nil
}

// Rows returns the cell text up to the last non-empty row and column.
func (g *Grid) Rows() ([][]string, error) {
	maxRow, maxCol := 0, 0
	for r, cols := range g.cells {
		for c, cell := range cols {
			if cell.value == "" {
				continue
			}
			maxRow, maxCol = max(maxRow, r), max(maxCol, c)
		}
	}
	rows := make([][]string, maxRow)
	for r := range maxRow {
		rows[r] = make([]string, maxCol)
		for c, cell := range g.cells[r+1] {
			if c <= maxCol {
				rows[r][c-1] = cell.value
			}
		}
	}
	return rows, nil
}

func (g *Grid) CellValue(col, row int) (string, error) {
	if err := checkCoords(col, row); err != nil {
		return "", err
	}
	return g.cells[row][col].value, nil
}

func (g *Grid) SetCellValue(col, row int, value any) error {
	if err := checkCoords(col, row); err != nil {
		return err
	}
	s, ok := FormatScalar(value)
	if !ok {
		return fmt.Errorf("unsupported cell value of type %T", value)
	}
	g.set(col, row, func(cell *gridCell) { cell.value = s })
	return nil
}

func (g *Grid) InsertRows(row, n int) error {
	if row < 1 || n < 1 {
		return fmt.Errorf("invalid row insertion at %d count %d", row, n)
	}
	keys := make([]int, 0, len(g.cells))
	for r := range g.cells {
		keys = append(keys, r)
	}
	// Move bottom rows first so no row is overwritten before it moves.
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))
	for _, r := range keys {
		if r >= row {
			g.cells[r+n] = g.cells[r]
			delete(g.cells, r)
		}
	}
	heights := make(map[int]float64, len(g.heights))
	for r, h := range g.heights {
		if r >= row {
			r += n
		}
		heights[r] = h
	}
	g.heights = heights
	for i, m := range g.merges {
		g.merges[i] = m.shiftForInsert(row-1, n)
	}
	return nil
}

func (g *Grid) MergedRegions() ([]Region, error) {
	return append([]Region(nil), g.merges...), nil
}

func (g *Grid) Merge(r Region) error {
	for _, m := range g.merges {
		if m.Overlaps(r) {
			return fmt.Errorf("region %s overlaps merged region %s", r, m)
		}
	}
	g.merges = append(g.merges, r)
	return nil
}

func (g *Grid) Unmerge(r Region) error {
	for i, m := range g.merges {
		if m == r {
			g.merges = append(g.merges[:i], g.merges[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("region %s is not merged", r)
}

func (g *Grid) CellStyle(col, row int) (StyleSnapshot, error) {
	if err := checkCoords(col, row); err != nil {
		return StyleSnapshot{}, err
	}
	return g.cells[row][col].style, nil
}

func (g *Grid) SetCellStyle(col, row int, s StyleSnapshot) error {
	if err := checkCoords(col, row); err != nil {
		return err
	}
	g.set(col, row, func(cell *gridCell) { cell.style = s })
	return nil
}

func (g *Grid) RowHeight(row int) (float64, error) {
	if row < 1 {
		return 0, fmt.Errorf("invalid row %d", row)
	}
	if h, ok := g.heights[row]; ok {
		return h, nil
	}
	return DefaultRowHeight, nil
}

func (g *Grid) SetRowHeight(row int, height float64) error {
	if row < 1 {
		return fmt.Errorf("invalid row %d", row)
	}
	g.heights[row] = height
	return nil
}
