package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Region is a rectangular merged range, 1-based and inclusive.
type Region struct {
	StartCol, StartRow, EndCol, EndRow int
}

// ParseRegion parses a reference such as "A1:C3".
func ParseRegion(ref string) (Region, error) {
	parts := strings.Split(ref, ":")
	if len(parts) != 2 {
		return Region{}, fmt.Errorf("invalid range: %s", ref)
	}
	c1, r1, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return Region{}, err
	}
	c2, r2, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return Region{}, err
	}
	return Region{StartCol: min(c1, c2), StartRow: min(r1, r2), EndCol: max(c1, c2), EndRow: max(r1, r2)}, nil
}

// Cells returns the top-left and bottom-right cell names.
func (r Region) Cells() (string, string, error) {
	start, err := excelize.CoordinatesToCellName(r.StartCol, r.StartRow)
	if err != nil {
		return "", "", err
	}
	end, err := excelize.CoordinatesToCellName(r.EndCol, r.EndRow)
	if err != nil {
		return "", "", err
	}
	return start, end, nil
}

func (r Region) String() string {
	start, end, err := r.Cells()
	if err != nil {
		return fmt.Sprintf("R%dC%d:R%dC%d", r.StartRow, r.StartCol, r.EndRow, r.EndCol)
	}
	return start + ":" + end
}

// Overlaps reports whether the two regions share at least one cell.
func (r Region) Overlaps(o Region) bool {
	return r.StartCol <= o.EndCol && o.StartCol <= r.EndCol &&
		r.StartRow <= o.EndRow && o.StartRow <= r.EndRow
}

// Contains reports whether the cell at (col, row) lies inside the region.
func (r Region) Contains(col, row int) bool {
	return col >= r.StartCol && col <= r.EndCol && row >= r.StartRow && row <= r.EndRow
}

// shiftForInsert remaps r after rows were added directly below anchorRow.
// Regions starting below the anchor move down by n; regions that start at
// or above the anchor and extend below it grow by n; the rest stay put.
func (r Region) shiftForInsert(anchorRow, n int) Region {
	switch {
	case r.StartRow > anchorRow:
		r.StartRow += n
		r.EndRow += n
	case r.EndRow > anchorRow:
		r.EndRow += n
	}
	return r
}

// MergeTracker records the merged regions of a sheet before a structural
// edit and re-creates them at their remapped coordinates afterwards.
type MergeTracker struct {
	sheet   Sheet
	regions []Region
}

// NewMergeTracker snapshots the current merged regions of sheet.
func NewMergeTracker(sheet Sheet) (*MergeTracker, error) {
	regions, err := sheet.MergedRegions()
	if err != nil {
		return nil, fmt.Errorf("failed to read merged cells: %w", err)
	}
	sort.Slice(regions, func(i, j int) bool {
		if regions[i].StartRow != regions[j].StartRow {
			return regions[i].StartRow < regions[j].StartRow
		}
		return regions[i].StartCol < regions[j].StartCol
	})
	return &MergeTracker{sheet: sheet, regions: regions}, nil
}

// Regions returns a copy of the recorded regions.
func (t *MergeTracker) Regions() []Region {
	return append([]Region(nil), t.regions...)
}

// Detach removes every recorded region from the sheet.
func (t *MergeTracker) Detach() error {
	for _, r := range t.regions {
		if err := t.sheet.Unmerge(r); err != nil {
			return fmt.Errorf("failed to unmerge %s: %w", r, err)
		}
	}
	return nil
}

// Restore re-creates every recorded region, shifted for n rows added below
// anchorRow, after checking that the result is consistent.
func (t *MergeTracker) Restore(anchorRow, n int) error {
	remapped := make([]Region, len(t.regions))
	for i, r := range t.regions {
		remapped[i] = r.shiftForInsert(anchorRow, n)
	}
	if err := ValidateRegions(remapped); err != nil {
		return err
	}
	for _, r := range remapped {
		if err := t.sheet.Merge(r); err != nil {
			return fmt.Errorf("failed to merge %s: %w", r, err)
		}
	}
	t.regions = remapped
	return nil
}

// ValidateRegions checks that every region lies inside the worksheet limits
// and that no two regions overlap.
func ValidateRegions(regions []Region) error {
	for i, r := range regions {
		if r.StartCol < 1 || r.StartRow < 1 || r.EndCol > excelize.MaxColumns || r.EndRow > excelize.TotalRows ||
			r.StartCol > r.EndCol || r.StartRow > r.EndRow {
			return fmt.Errorf("merged region %s is out of bounds", r)
		}
		for _, o := range regions[i+1:] {
			if r.Overlaps(o) {
				return fmt.Errorf("merged regions %s and %s overlap", r, o)
			}
		}
	}
	return nil
}
