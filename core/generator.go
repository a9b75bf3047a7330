package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Job describes one report run.
type Job struct {
	// ReportName is the base name of the output; the template's base name
	// is used when empty.
	ReportName string
	Template   string
	OutputDir  string
	Watermark  string
	Metadata   map[string]string
	// Params are the raw parameters handed to the resolver.
	Params map[string]any
}

func (j Job) baseName() string {
	if j.ReportName != "" {
		return j.ReportName
	}
	return strings.TrimSuffix(filepath.Base(j.Template), filepath.Ext(j.Template))
}

// Generator runs the pipeline: resolve parameters, populate the template's
// active sheet, save it under a unique temporary name, convert it and stamp
// the PDF. Intermediate files are removed on every path.
type Generator struct {
	Resolver  ParamResolver
	Converter Converter
	Stamper   Stamper
	// Publisher, when set, receives the final PDF.
	Publisher Publisher
	Engine    *Engine

	logger *slog.Logger
	now    func() time.Time
	newID  func() string
	open   func(path string) (ExcelFile, error)
}

// NewGenerator creates a generator whose engine rejects unused parameters.
func NewGenerator(logger *slog.Logger, resolver ParamResolver, converter Converter, stamper Stamper) *Generator {
	return &Generator{
		Resolver:  resolver,
		Converter: converter,
		Stamper:   stamper,
		Engine:    NewEngine(logger),
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
		open:      openExcelFile,
	}
}

// Generate executes the job and returns the path of the final PDF.
func (g *Generator) Generate(ctx context.Context, job Job) (_ string, err error) {
	start := g.now()
	base := job.baseName()
	logger := g.logger.With("report", base)
	logger.Info("Start generation process", "template", job.Template, "output", job.OutputDir)

	params, err := g.Resolver.Resolve(ctx, job.Params)
	if err != nil {
		logger.Error("Parameter resolution failed", "error", err)
		return "", fmt.Errorf("resolve parameters: %w", err)
	}

	workDir := filepath.Join(job.OutputDir, ".xlsx2pdf-"+g.newID())
	if err := os.Mkdir(workDir, 0o755); err != nil {
		logger.Error("Cannot create work directory", "dir", workDir, "error", err)
		return "", fmt.Errorf("%w: %w", ErrTemplateWrite, err)
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			logger.Warn("Failed to remove temporary files", "dir", workDir, "error", rmErr)
		} else {
			logger.Debug("Temporary files removed", "dir", workDir)
		}
	}()

	xlsxPath := filepath.Join(workDir, base+".xlsx")
	if err := g.populate(job.Template, xlsxPath, params); err != nil {
		logger.Error("Template population failed", "error", err)
		return "", err
	}
	logger.Info("Temporary workbook generated", "path", xlsxPath)

	pdfPath, err := g.Converter.Convert(ctx, xlsxPath, workDir)
	if err != nil {
		logger.Error("Conversion failed", "error", err)
		return "", err
	}
	logger.Info("PDF converted", "path", pdfPath)

	final := filepath.Join(job.OutputDir, fmt.Sprintf("%s_%s.pdf", base, formatTime(start, "stamp")))
	if err := g.Stamper.Stamp(pdfPath, final, job.Watermark, job.Metadata); err != nil {
		logger.Error("Stamping failed", "error", err)
		return "", err
	}
	logger.Info("Report generated", "path", final, "elapsed", g.now().Sub(start))

	if g.Publisher != nil {
		location, err := g.Publisher.Publish(ctx, final)
		if err != nil {
			logger.Error("Publishing failed", "path", final, "error", err)
			return final, fmt.Errorf("publish %s: %w", final, err)
		}
		logger.Info("Report published", "location", location)
	}
	return final, nil
}

// populate fills the template's active sheet and saves it to out.
func (g *Generator) populate(template, out string, params ParamMap) (err error) {
	f, err := g.open(template)
	if err != nil {
		return fmt.Errorf("%w: open template: %w", ErrTemplateWrite, err)
	}
	defer func(f ExcelFile) {
		if closeErr := f.Close(); closeErr != nil {
			if err == nil {
				err = fmt.Errorf("%w: close template: %w", ErrTemplateWrite, closeErr)
			} else {
				err = fmt.Errorf("%w; (cleanup error: %v)", err, closeErr)
			}
		}
	}(f)

	sheet, err := ActiveSheet(f)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTemplateWrite, err)
	}

	if err := g.Engine.Populate(sheet, params); err != nil {
		if errors.Is(err, ErrMissingPlaceholder) || errors.Is(err, ErrInvalidExtensionResult) {
			return err
		}
		return fmt.Errorf("%w: sheet %s: %w", ErrTemplateWrite, sheet.Name(), err)
	}

	// Reset the view to A1 on every sheet.
	for _, name := range f.GetSheetList() {
		if err := f.SetSelection(name, "A1"); err != nil {
			g.logger.Warn("Cannot reset selection", "sheet", name, "error", err)
		}
	}

	if err := f.SaveAs(out); err != nil {
		return fmt.Errorf("%w: save %s: %w", ErrTemplateWrite, out, err)
	}
	return nil
}
