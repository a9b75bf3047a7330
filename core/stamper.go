package core

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Stamper writes the final PDF: in with the watermark overlaid and the
// metadata set. An empty watermark path skips the overlay.
type Stamper interface {
	Stamp(in, out, watermark string, metadata map[string]string) error
}

// PDFStamper stamps PDFs with pdfcpu. Page 1 of the watermark PDF is drawn
// over every page at its natural size.
type PDFStamper struct {
	Conf *model.Configuration

	logger *slog.Logger
}

// NewPDFStamper creates a stamper with pdfcpu's default configuration.
func NewPDFStamper(logger *slog.Logger) *PDFStamper {
	return &PDFStamper{Conf: model.NewDefaultConfiguration(), logger: logger}
}

const watermarkDescription = "scalefactor:1 abs, rotation:0"

func (s *PDFStamper) Stamp(in, out, watermark string, metadata map[string]string) error {
	if err := s.stamp(in, out, watermark, metadata); err != nil {
		s.logger.Error("Stamping failed", "input", in, "output", out, "error", err)
		_ = os.Remove(out)
		return fmt.Errorf("%w: %w", ErrStamping, err)
	}
	s.logger.Info("PDF stamped", "output", out, "watermark", watermark, "metadata", len(metadata))
	return nil
}

func (s *PDFStamper) stamp(in, out, watermark string, metadata map[string]string) error {
	if watermark != "" {
		wm, err := api.PDFWatermark(watermark+":1", watermarkDescription, true, false, types.POINTS)
		if err != nil {
			return fmt.Errorf("watermark %s: %w", watermark, err)
		}
		if err := api.AddWatermarksFile(in, out, nil, wm, s.Conf); err != nil {
			return fmt.Errorf("apply watermark: %w", err)
		}
	} else if err := copyFile(in, out); err != nil {
		return err
	}

	props := pdfProperties(metadata)
	if len(props) == 0 {
		return nil
	}
	if err := api.AddPropertiesFile(out, "", props, s.Conf); err != nil {
		return fmt.Errorf("set metadata: %w", err)
	}
	return nil
}

// pdfProperties drops the leading slash of PDF name keys ("/Title") and
// empty keys.
func pdfProperties(metadata map[string]string) map[string]string {
	props := make(map[string]string, len(metadata))
	for k, v := range metadata {
		k = strings.TrimPrefix(strings.TrimSpace(k), "/")
		if k == "" {
			continue
		}
		props[k] = v
	}
	return props
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
