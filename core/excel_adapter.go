package core

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExcelFile abstracts workbook operations to decouple generator logic from excelize.
type ExcelFile interface {
	Close() error
	GetActiveSheetIndex() int
	GetSheetName(index int) string
	GetSheetList() []string
	GetRows(sheet string, opts ...excelize.Options) ([][]string, error)
	GetCellStyle(sheet, cell string) (int, error)
	GetCellValue(sheet, cell string, opts ...excelize.Options) (string, error)
	GetStyle(idx int) (*excelize.Style, error)
	NewStyle(style *excelize.Style) (int, error)
	InsertRows(sheet string, row, rows int) error
	MergeCell(sheet, hcell, vcell string) error
	UnmergeCell(sheet, hcell, vcell string) error
	GetMergeCells(sheet string, withoutValues ...bool) ([]excelize.MergeCell, error)
	GetRowHeight(sheet string, row int) (float64, error)
	SetRowHeight(sheet string, row int, height float64) error
	SaveAs(name string, opts ...excelize.Options) error
	SetCellStyle(sheet, hcell, vcell string, styleID int) error
	SetCellValue(sheet, cell string, value interface{}) error
	SetSelection(sheetName, cell string) error
}

type ExcelizeFile struct {
	*excelize.File
}

func openExcelFile(path string) (ExcelFile, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return &ExcelizeFile{File: file}, nil
}

func (e *ExcelizeFile) SetSelection(sheetName, cell string) error {
	// Keep frozen or split panes and only move the selection.
	panes, err := e.File.GetPanes(sheetName)
	if err == nil {
		panes.Selection = []excelize.Selection{
			{
				ActiveCell: cell,
				SQRef:      cell,
			},
		}
		return e.File.SetPanes(sheetName, &panes)
	}

	return e.File.SetPanes(sheetName, &excelize.Panes{
		Selection: []excelize.Selection{
			{
				ActiveCell: cell,
				SQRef:      cell,
			},
		},
	})
}

// WorkbookSheet is a Sheet backed by one worksheet of an ExcelFile.
type WorkbookSheet struct {
	file ExcelFile
	name string
	// applied caches style IDs created for snapshots, so repeated copies of
	// the same prototype reuse one workbook style.
	applied []appliedStyle
}

type appliedStyle struct {
	snapshot StyleSnapshot
	id       int
}

// NewWorkbookSheet wraps the named worksheet of f.
func NewWorkbookSheet(f ExcelFile, name string) *WorkbookSheet {
	return &WorkbookSheet{file: f, name: name}
}

// ActiveSheet wraps the workbook's active worksheet.
func ActiveSheet(f ExcelFile) (*WorkbookSheet, error) {
	name := f.GetSheetName(f.GetActiveSheetIndex())
	if name == "" {
		return nil, fmt.Errorf("workbook has no active sheet")
	}
	return NewWorkbookSheet(f, name), nil
}

func (s *WorkbookSheet) Name() string { return s.name }

func (s *WorkbookSheet) Rows() ([][]string, error) {
	return s.file.GetRows(s.name, excelize.Options{RawCellValue: true})
}

func (s *WorkbookSheet) CellValue(col, row int) (string, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	return s.file.GetCellValue(s.name, cell, excelize.Options{RawCellValue: true})
}

func (s *WorkbookSheet) SetCellValue(col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return s.file.SetCellValue(s.name, cell, value)
}

func (s *WorkbookSheet) InsertRows(row, n int) error {
	return s.file.InsertRows(s.name, row, n)
}

func (s *WorkbookSheet) MergedRegions() ([]Region, error) {
	merged, err := s.file.GetMergeCells(s.name, true)
	if err != nil {
		return nil, err
	}
	regions := make([]Region, 0, len(merged))
	for _, mc := range merged {
		r, err := ParseRegion(mc.GetStartAxis() + ":" + mc.GetEndAxis())
		if err != nil {
			return nil, err
		}
		regions = append(regions, r)
	}
	return regions, nil
}

func (s *WorkbookSheet) Merge(r Region) error {
	start, end, err := r.Cells()
	if err != nil {
		return err
	}
	return s.file.MergeCell(s.name, start, end)
}

func (s *WorkbookSheet) Unmerge(r Region) error {
	start, end, err := r.Cells()
	if err != nil {
		return err
	}
	return s.file.UnmergeCell(s.name, start, end)
}

func (s *WorkbookSheet) CellStyle(col, row int) (StyleSnapshot, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return StyleSnapshot{}, err
	}
	id, err := s.file.GetCellStyle(s.name, cell)
	if err != nil {
		return StyleSnapshot{}, err
	}
	if id == 0 {
		return StyleSnapshot{}, nil
	}
	style, err := s.file.GetStyle(id)
	if err != nil {
		return StyleSnapshot{}, fmt.Errorf("read style %d of %s: %w", id, cell, err)
	}
	return CaptureStyle(style), nil
}

func (s *WorkbookSheet) SetCellStyle(col, row int, snap StyleSnapshot) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	id, err := s.styleID(snap)
	if err != nil {
		return err
	}
	return s.file.SetCellStyle(s.name, cell, cell, id)
}

func (s *WorkbookSheet) styleID(snap StyleSnapshot) (int, error) {
	if snap.IsZero() {
		return 0, nil
	}
	for _, a := range s.applied {
		if a.snapshot.Equal(snap) {
			return a.id, nil
		}
	}
	id, err := s.file.NewStyle(snap.Style())
	if err != nil {
		return 0, fmt.Errorf("create style: %w", err)
	}
	s.applied = append(s.applied, appliedStyle{snapshot: snap, id: id})
	return id, nil
}

func (s *WorkbookSheet) RowHeight(row int) (float64, error) {
	return s.file.GetRowHeight(s.name, row)
}

func (s *WorkbookSheet) SetRowHeight(row int, height float64) error {
	return s.file.SetRowHeight(s.name, row, height)
}
