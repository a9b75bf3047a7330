package core

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/NikBulygin/xlsx2pdf/config"
)

// DataFetcher defines the interface for fetching the rows of a data view.
type DataFetcher interface {
	// Fetch returns the rows of source, restricted to rows whose columns
	// equal the filter values when the fetcher can filter.
	Fetch(ctx context.Context, source string, filters map[string]string) ([]map[string]interface{}, error)
}

// FetcherProvider hands out the fetcher for a data source.
type FetcherProvider interface {
	FetcherFor(ctx context.Context, ds *config.DataSourceConfig) (DataFetcher, error)
}

// GenerationContext holds the parameters and data views of one report run.
type GenerationContext struct {
	Report         *config.ReportConfig
	Parameters     map[string]any
	ConfigProvider config.Provider
	Fetchers       FetcherProvider
	// Cache for loaded DataViews, so a view bound twice is fetched once.
	LoadedViews map[string]*DataView

	logger *slog.Logger
}

// NewGenerationContext merges the report's parameters with the run
// parameters (run values win) and expands dynamic date values.
func NewGenerationContext(logger *slog.Logger, report *config.ReportConfig, provider config.Provider, fetchers FetcherProvider, params map[string]any, now time.Time) *GenerationContext {
	if report == nil {
		report = &config.ReportConfig{}
	}
	merged := make(map[string]any, len(report.Parameters)+len(params))
	for k, v := range report.Parameters {
		merged[k] = v
	}
	for k, v := range params {
		merged[k] = v
	}

	for k, v := range merged {
		s, ok := v.(string)
		if !ok || !strings.HasPrefix(s, dynamicDatePrefix) {
			continue
		}
		val, err := ParseDynamicDate(s, now)
		if err != nil {
			logger.Warn("Invalid dynamic date parameter", "param", k, "value", s, "error", err)
			continue
		}
		merged[k] = val
	}

	return &GenerationContext{
		Report:         report,
		Parameters:     merged,
		ConfigProvider: provider,
		Fetchers:       fetchers,
		LoadedViews:    make(map[string]*DataView),
		logger:         logger,
	}
}

// GetDataView resolves and loads a DataView by name. The cached view holds
// the fetched rows; callers get a copy they may filter.
func (c *GenerationContext) GetDataView(ctx context.Context, viewName string) (*DataView, error) {
	if cached, ok := c.LoadedViews[viewName]; ok {
		return cached.Copy(), nil
	}

	conf, err := c.ConfigProvider.GetDataViewConfig(viewName)
	if err != nil {
		return nil, err
	}
	ds, err := c.ConfigProvider.GetDataSourceConfig(conf.DataSource)
	if err != nil {
		return nil, fmt.Errorf("data view %s: %w", viewName, err)
	}
	fetcher, err := c.Fetchers.FetcherFor(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("data view %s: %w", viewName, err)
	}

	filters := viewFilters(conf, c.Parameters)
	data, err := fetcher.Fetch(ctx, conf.SourceName(), filters)
	if err != nil {
		return nil, fmt.Errorf("fetch data view %s: %w", viewName, err)
	}

	vv := NewDataView(conf, data)
	vv.Filter(filters)
	c.LoadedViews[viewName] = vv

	c.logger.Debug("Data view fetched",
		"view", viewName,
		"source", conf.SourceName(),
		"filters", filters,
		"rows", len(vv.Data),
	)
	return vv.Copy(), nil
}

// DataViewResolver resolves parameters with Base, then binds the report's
// table parameters to the rows of their data views.
type DataViewResolver struct {
	Base    ParamResolver
	Context *GenerationContext
}

func (r *DataViewResolver) Resolve(ctx context.Context, raw map[string]any) (ParamMap, error) {
	params, err := r.Base.Resolve(ctx, raw)
	if err != nil {
		return nil, err
	}

	tables := r.Context.Report.Tables
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		view, err := r.Context.GetDataView(ctx, tables[name])
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		if _, exists := params[name]; exists {
			r.Context.logger.Warn("Data view replaces resolved parameter", "param", name, "view", tables[name])
		}
		params[name] = view.Table()
	}
	return params, nil
}
