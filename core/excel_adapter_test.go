package core

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestActiveSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	idx, err := f.NewSheet("Data")
	if err != nil {
		t.Fatal(err)
	}
	f.SetActiveSheet(idx)

	sheet, err := ActiveSheet(&ExcelizeFile{File: f})
	if err != nil {
		t.Fatalf("ActiveSheet error: %v", err)
	}
	if sheet.Name() != "Data" {
		t.Errorf("active sheet = %s, want Data", sheet.Name())
	}
}

func TestWorkbookSheet_CellsAndMerges(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := NewWorkbookSheet(&ExcelizeFile{File: f}, "Sheet1")

	if err := sheet.SetCellValue(2, 3, "x"); err != nil {
		t.Fatal(err)
	}
	if got, _ := f.GetCellValue("Sheet1", "B3"); got != "x" {
		t.Errorf("B3 = %q, want x", got)
	}
	if got := cell(t, sheet, 2, 3); got != "x" {
		t.Errorf("CellValue = %q, want x", got)
	}

	r := mustRegion(t, "A1:B2")
	if err := sheet.Merge(r); err != nil {
		t.Fatal(err)
	}
	regions, err := sheet.MergedRegions()
	if err != nil {
		t.Fatal(err)
	}
	if len(regions) != 1 || regions[0] != r {
		t.Fatalf("regions = %v, want [A1:B2]", regions)
	}
	if err := sheet.Unmerge(r); err != nil {
		t.Fatal(err)
	}
	if regions, _ := sheet.MergedRegions(); len(regions) != 0 {
		t.Errorf("regions after unmerge = %v", regions)
	}
}

func TestWorkbookSheet_StyleReuse(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := NewWorkbookSheet(&ExcelizeFile{File: f}, "Sheet1")

	snap := CaptureStyle(&excelize.Style{Font: &excelize.Font{Italic: true}})
	for r := 1; r <= 3; r++ {
		if err := sheet.SetCellStyle(1, r, snap); err != nil {
			t.Fatal(err)
		}
	}
	id1, _ := f.GetCellStyle("Sheet1", "A1")
	id3, _ := f.GetCellStyle("Sheet1", "A3")
	if id1 == 0 || id1 != id3 {
		t.Errorf("style ids = %d, %d, want one shared non-default id", id1, id3)
	}

	got, err := sheet.CellStyle(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got.IsZero() || !got.Style().Font.Italic {
		t.Error("CellStyle did not read back the italic font")
	}

	if err := sheet.SetCellStyle(1, 1, StyleSnapshot{}); err != nil {
		t.Fatal(err)
	}
	if id, _ := f.GetCellStyle("Sheet1", "A1"); id != 0 {
		t.Errorf("zero snapshot applied style %d, want 0", id)
	}
	if s, _ := sheet.CellStyle(5, 5); !s.IsZero() {
		t.Error("unstyled cell returned a snapshot")
	}
}

func TestExcelizeFile_SetSelectionKeepsPanes(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetPanes("Sheet1", &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
		Selection:   []excelize.Selection{{SQRef: "C5", ActiveCell: "C5", Pane: "bottomLeft"}},
	}); err != nil {
		t.Fatal(err)
	}

	adapter := &ExcelizeFile{File: f}
	if err := adapter.SetSelection("Sheet1", "A1"); err != nil {
		t.Fatalf("SetSelection error: %v", err)
	}
	panes, err := f.GetPanes("Sheet1")
	if err != nil {
		t.Fatal(err)
	}
	if !panes.Freeze || panes.YSplit != 1 {
		t.Errorf("panes = %+v, freeze lost", panes)
	}
	if len(panes.Selection) != 1 || panes.Selection[0].ActiveCell != "A1" {
		t.Errorf("selection = %+v, want A1", panes.Selection)
	}
}
