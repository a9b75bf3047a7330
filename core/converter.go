package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	marotoconfig "github.com/johnfercher/maroto/v2/pkg/config"
	mcore "github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/xuri/excelize/v2"
)

// Converter turns a workbook into a PDF placed in outDir and returns its path.
type Converter interface {
	Convert(ctx context.Context, xlsxPath, outDir string) (string, error)
}

func pdfPathFor(xlsxPath, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(xlsxPath), filepath.Ext(xlsxPath))
	return filepath.Join(outDir, base+".pdf")
}

// OfficeConverter runs an office suite in headless mode:
//
//	<Path> --headless --convert-to pdf --outdir <outDir> <xlsx>
type OfficeConverter struct {
	Path string

	logger *slog.Logger
}

// NewOfficeConverter creates a converter for the office executable at path.
func NewOfficeConverter(logger *slog.Logger, path string) *OfficeConverter {
	return &OfficeConverter{Path: path, logger: logger}
}

func (c *OfficeConverter) Convert(ctx context.Context, xlsxPath, outDir string) (string, error) {
	absIn, err := filepath.Abs(xlsxPath)
	if err != nil {
		return "", &ConversionError{Command: c.Path, Err: err}
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return "", &ConversionError{Command: c.Path, Err: err}
	}

	args := []string{"--headless", "--convert-to", "pdf", "--outdir", absOut, absIn}
	command := c.Path + " " + strings.Join(args, " ")
	c.logger.Info("Converting workbook", "command", command)

	out, err := exec.CommandContext(ctx, c.Path, args...).CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		convErr := &ConversionError{Command: command, Output: output, Err: err}
		c.logger.Error("Conversion failed", "error", convErr)
		return "", convErr
	}

	pdfPath := pdfPathFor(absIn, absOut)
	if _, err := os.Stat(pdfPath); err != nil {
		convErr := &ConversionError{Command: command, Output: output, Err: fmt.Errorf("no PDF produced: %w", err)}
		c.logger.Error("Conversion failed", "error", convErr)
		return "", convErr
	}
	c.logger.Debug("Converter finished", "pdf", pdfPath, "output", output)
	return pdfPath, nil
}

// BuiltinConverter renders the active sheet's cell text as a PDF table with
// maroto. It keeps neither styles nor merges and serves hosts without an
// office suite.
type BuiltinConverter struct {
	FontSize  float64
	RowHeight float64

	logger *slog.Logger
}

// NewBuiltinConverter creates a converter with an 8pt font.
func NewBuiltinConverter(logger *slog.Logger) *BuiltinConverter {
	return &BuiltinConverter{FontSize: 8, RowHeight: 6, logger: logger}
}

func (c *BuiltinConverter) Convert(ctx context.Context, xlsxPath, outDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &ConversionError{Command: "builtin", Err: err}
	}
	pdfPath := pdfPathFor(xlsxPath, outDir)
	if err := c.render(xlsxPath, pdfPath); err != nil {
		convErr := &ConversionError{Command: "builtin", Err: err}
		c.logger.Error("Conversion failed", "error", convErr)
		return "", convErr
	}
	c.logger.Info("Workbook rendered", "pdf", pdfPath)
	return pdfPath, nil
}

func (c *BuiltinConverter) render(xlsxPath, pdfPath string) (err error) {
	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	if err != nil {
		return err
	}

	width := 1
	for _, row := range rows {
		width = max(width, len(row))
	}

	m := maroto.New(marotoconfig.NewBuilder().WithMaxGridSize(width).Build())
	cellProps := props.Text{Size: c.FontSize}
	for _, row := range rows {
		cols := make([]mcore.Col, width)
		for i := range cols {
			var value string
			if i < len(row) {
				value = row[i]
			}
			cols[i] = text.NewCol(1, value, cellProps)
		}
		m.AddRow(c.RowHeight, cols...)
	}

	doc, err := m.Generate()
	if err != nil {
		return err
	}
	return doc.Save(pdfPath)
}
