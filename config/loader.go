package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadBundle loads a configuration bundle from a YAML file.
// Relative paths inside the bundle are resolved against the file's directory.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config bundle: %w", err)
	}

	var b Bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse config bundle: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	b.Dir = filepath.Dir(abs)

	// CSV sources name a directory, which is relative to the bundle too.
	for i := range b.DataSources {
		if b.DataSources[i].Driver == "csv" {
			b.DataSources[i].DSN = b.Path(b.DataSources[i].DSN)
		}
	}

	if err := NewValidator(NewRegistryFromBundle(&b)).ValidateBundle(&b); err != nil {
		return nil, fmt.Errorf("invalid config bundle %s: %w", path, err)
	}
	return &b, nil
}

// Report returns the report definition with the given name.
func (b *Bundle) Report(name string) (*ReportConfig, error) {
	for i := range b.Reports {
		if b.Reports[i].Name == name {
			return &b.Reports[i], nil
		}
	}
	return nil, fmt.Errorf("report %q not found in config bundle", name)
}

// Path resolves p against the bundle directory. Empty and absolute paths are returned unchanged.
func (b *Bundle) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || b.Dir == "" {
		return p
	}
	return filepath.Join(b.Dir, p)
}

// Overrides are per-run values supplied on the command line.
// Empty fields fall back to the bundle.
type Overrides struct {
	Template  string
	Resolver  string
	Watermark string
	OutputDir string
	Prepared  bool
	Params    map[string]any
	Metadata  map[string]string
}

// Prepare merges the bundle's report definition with the overrides and
// validates that every referenced file and directory is usable.
func Prepare(b *Bundle, reportName string, o Overrides) (*RunConfig, error) {
	rep, err := b.Report(reportName)
	if err != nil && o.Template == "" {
		return nil, err
	}
	if rep == nil {
		rep = &ReportConfig{Name: reportName}
	}

	rc := &RunConfig{
		ReportName:  reportName,
		Template:    firstNonEmpty(o.Template, b.Path(rep.Template)),
		Interpreter: rep.Interpreter,
		Watermark:   firstNonEmpty(o.Watermark, b.Path(rep.Watermark)),
		OutputDir:   firstNonEmpty(o.OutputDir, b.Path(rep.OutputDir), b.Path(b.DefaultOutput)),
		Converter:   b.Converter,
		Prepared:    o.Prepared,
		Params:      o.Params,
		Tables:      rep.Tables,
		Report:      rep,
	}
	// Bare command names such as "soffice" stay as they are for a PATH lookup.
	if rc.Converter != ConverterBuiltin && filepath.Base(rc.Converter) != rc.Converter {
		rc.Converter = b.Path(rc.Converter)
	}
	if !o.Prepared {
		rc.Resolver = firstNonEmpty(o.Resolver, b.Path(rep.Resolver))
	}

	// Explicit per-report and per-run metadata win over bundle defaults.
	rc.Metadata = make(map[string]string, len(b.DefaultMetadata)+len(rep.Metadata)+len(o.Metadata))
	for _, m := range []map[string]string{b.DefaultMetadata, rep.Metadata, o.Metadata} {
		for k, v := range m {
			rc.Metadata[k] = v
		}
	}

	if err := NewValidator(NewRegistryFromBundle(b)).ValidateRun(rc); err != nil {
		return nil, err
	}
	return rc, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
