package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Validator validates the configuration objects.
type Validator struct {
	Provider Provider
}

// NewValidator creates a new Validator.
func NewValidator(provider Provider) *Validator {
	return &Validator{Provider: provider}
}

// ValidateBundle validates the structure of a Bundle. It does not touch the filesystem.
func (v *Validator) ValidateBundle(b *Bundle) error {
	for i := range b.DataSources {
		if err := v.ValidateDataSource(&b.DataSources[i]); err != nil {
			return fmt.Errorf("data source %d error: %w", i, err)
		}
	}
	for i := range b.DataViews {
		if err := v.ValidateDataView(&b.DataViews[i]); err != nil {
			return fmt.Errorf("data view %d error: %w", i, err)
		}
	}

	seen := make(map[string]struct{}, len(b.Reports))
	for i := range b.Reports {
		rep := &b.Reports[i]
		if err := v.ValidateReport(rep); err != nil {
			return fmt.Errorf("report %d error: %w", i, err)
		}
		if _, dup := seen[rep.Name]; dup {
			return fmt.Errorf("report %d error: duplicate report name '%s'", i, rep.Name)
		}
		seen[rep.Name] = struct{}{}
	}
	return nil
}

// ValidateReport validates the ReportConfig.
func (v *Validator) ValidateReport(rep *ReportConfig) error {
	if rep.Name == "" {
		return fmt.Errorf("report name is required")
	}
	if rep.Template == "" {
		return fmt.Errorf("report '%s' template is required", rep.Name)
	}
	for param, view := range rep.Tables {
		if param == "" || view == "" {
			return fmt.Errorf("report '%s' has an incomplete table binding", rep.Name)
		}
		if v.Provider != nil {
			if _, err := v.Provider.GetDataViewConfig(view); err != nil {
				return fmt.Errorf("report '%s' table '%s' references unknown DataView '%s'", rep.Name, param, view)
			}
		}
	}
	return nil
}

// ValidateDataView validates the DataViewConfig.
func (v *Validator) ValidateDataView(dv *DataViewConfig) error {
	if dv.Name == "" {
		return fmt.Errorf("data view name is required")
	}
	if dv.DataSource == "" {
		return fmt.Errorf("data view '%s' requires a DataSource", dv.Name)
	}
	if v.Provider != nil {
		if _, err := v.Provider.GetDataSourceConfig(dv.DataSource); err != nil {
			return fmt.Errorf("data view '%s' references unknown DataSource '%s'", dv.Name, dv.DataSource)
		}
	}
	for i, col := range dv.Columns {
		if col.Name == "" {
			return fmt.Errorf("data view '%s' column %d name is required", dv.Name, i)
		}
	}
	if dv.RowLimit < 0 {
		return fmt.Errorf("data view '%s' rowLimit must not be negative", dv.Name)
	}
	return nil
}

// ValidateDataSource validates the DataSourceConfig.
func (v *Validator) ValidateDataSource(ds *DataSourceConfig) error {
	if ds.Name == "" {
		return fmt.Errorf("data source name is required")
	}
	switch ds.Driver {
	case "":
		return fmt.Errorf("data source '%s' driver is required", ds.Name)
	case "csv", "mysql", "postgres", "pgx":
		if ds.DSN == "" {
			return fmt.Errorf("data source '%s' DSN is required", ds.Name)
		}
	case "dynamodb":
		// Credentials and region come from the AWS environment.
	default:
		return fmt.Errorf("data source '%s' has unsupported driver '%s'", ds.Name, ds.Driver)
	}
	return nil
}

// ValidateRun checks that a resolved run can start: every input file is
// readable, the output directory is writable and the parameters are
// serializable.
func (v *Validator) ValidateRun(rc *RunConfig) error {
	if rc.Template == "" {
		return fmt.Errorf("report '%s' template is required", rc.ReportName)
	}
	if err := CheckReadable(rc.Template); err != nil {
		return fmt.Errorf("template: %w", err)
	}
	// Reports fed only by data views need no resolver.
	switch {
	case rc.Resolver != "":
		if err := CheckReadable(rc.Resolver); err != nil {
			return fmt.Errorf("resolver: %w", err)
		}
	case !rc.Prepared && len(rc.Tables) == 0:
		return fmt.Errorf("report '%s' requires a resolver unless data is prepared", rc.ReportName)
	}
	if rc.Watermark != "" {
		if err := CheckReadable(rc.Watermark); err != nil {
			return fmt.Errorf("watermark: %w", err)
		}
	}
	if rc.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if err := CheckWritableDir(rc.OutputDir); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	switch rc.Converter {
	case "":
		return fmt.Errorf("converter is required")
	case ConverterBuiltin:
	default:
		// A bare command name is looked up on PATH.
		if _, err := exec.LookPath(rc.Converter); err != nil {
			if err := CheckReadable(rc.Converter); err != nil {
				return fmt.Errorf("converter: %w", err)
			}
		}
	}
	if _, err := json.Marshal(rc.Params); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	for param, view := range rc.Tables {
		if v.Provider == nil {
			break
		}
		if _, err := v.Provider.GetDataViewConfig(view); err != nil {
			return fmt.Errorf("table '%s': %w", param, err)
		}
	}
	return nil
}

// CheckReadable reports whether path is an existing, readable regular file.
func CheckReadable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("required file %s not found: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("required file %s is a directory", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	return f.Close()
}

// CheckWritableDir reports whether dir is an existing directory that accepts new files.
func CheckWritableDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output directory %s does not exist: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output path %s is not a directory", dir)
	}
	tmp, err := os.CreateTemp(dir, ".write-check-*")
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := tmp.Name()
	return errors.Join(tmp.Close(), os.Remove(name))
}
