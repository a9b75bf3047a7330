package config

// ConverterBuiltin selects the in-process PDF renderer instead of an office suite.
const ConverterBuiltin = "builtin"

// ColumnConfig：maps a table column name to the source column
type ColumnConfig struct {
	Name   string `json:"name"   yaml:"name"`   // column name exposed to the template
	Column string `json:"column" yaml:"column"` // actual column name in the source
}

// DataSourceConfig：datasource config
type DataSourceConfig struct {
	Name    string `json:"name"    yaml:"name"`
	Driver  string `json:"driver"  yaml:"driver"` // "csv", "mysql", "postgres", "pgx", "dynamodb"
	DSN     string `json:"dsn"     yaml:"dsn"`    // connection string, or directory for csv
	Charset string `json:"charset,omitempty" yaml:"charset,omitempty"`
}

// DataViewConfig：a tabular view over a data source, bound to a table parameter
type DataViewConfig struct {
	Name       string            `json:"name"       yaml:"name"`
	DataSource string            `json:"dataSource" yaml:"dataSource"`
	Table      string            `json:"table,omitempty" yaml:"table,omitempty"`
	Columns    []ColumnConfig    `json:"columns,omitempty" yaml:"columns,omitempty"`
	Filters    map[string]string `json:"filters,omitempty" yaml:"filters,omitempty"` // param name -> column
	RowLimit   int               `json:"rowLimit,omitempty" yaml:"rowLimit,omitempty"`
}

// SourceName returns the table (or file) name the view reads from.
func (v *DataViewConfig) SourceName() string {
	if v.Table != "" {
		return v.Table
	}
	return v.Name
}

// ReportConfig：a single report definition
type ReportConfig struct {
	Name        string            `json:"name"        yaml:"name"`
	Template    string            `json:"template"    yaml:"template"`
	Resolver    string            `json:"resolver,omitempty" yaml:"resolver,omitempty"`       // extension program
	Interpreter string            `json:"interpreter,omitempty" yaml:"interpreter,omitempty"` // e.g. python3
	Watermark   string            `json:"watermark,omitempty" yaml:"watermark,omitempty"`
	OutputDir   string            `json:"outputDir,omitempty" yaml:"outputDir,omitempty"`
	Parameters  Params            `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Tables      map[string]string `json:"tables,omitempty" yaml:"tables,omitempty"` // param name -> data view
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Bundle：the whole configuration file
type Bundle struct {
	Converter       string             `json:"converter"       yaml:"converter"`
	DefaultOutput   string             `json:"defaultOutput"   yaml:"defaultOutput"`
	DefaultMetadata map[string]string  `json:"defaultMetadata,omitempty" yaml:"defaultMetadata,omitempty"`
	DataSources     []DataSourceConfig `json:"dataSources,omitempty" yaml:"dataSources,omitempty"`
	DataViews       []DataViewConfig   `json:"dataViews,omitempty" yaml:"dataViews,omitempty"`
	Reports         []ReportConfig     `json:"reports"         yaml:"reports"`

	// Dir is the directory of the loaded file; relative paths resolve against it.
	Dir string `json:"-" yaml:"-"`
}

// RunConfig is a fully resolved, validated set of settings for one generation run.
type RunConfig struct {
	ReportName  string
	Template    string
	Resolver    string
	Interpreter string
	Watermark   string
	OutputDir   string
	Converter   string
	Prepared    bool
	Params      map[string]any
	Metadata    map[string]string
	Tables      map[string]string
	Report      *ReportConfig
}
