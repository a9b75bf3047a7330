package config

import "fmt"

// Provider defines the interface for retrieving configurations.
type Provider interface {
	GetDataViewConfig(name string) (*DataViewConfig, error)
	GetDataSourceConfig(name string) (*DataSourceConfig, error)
}

// MemoryConfigRegistry implements Provider using in-memory maps.
type MemoryConfigRegistry struct {
	dataViews   map[string]*DataViewConfig
	dataSources map[string]*DataSourceConfig
}

// NewMemoryConfigRegistry creates a new registry with the given configurations.
func NewMemoryConfigRegistry(v map[string]*DataViewConfig, s map[string]*DataSourceConfig) *MemoryConfigRegistry {
	return &MemoryConfigRegistry{
		dataViews:   v,
		dataSources: s,
	}
}

// NewRegistryFromBundle indexes the bundle's data views and data sources by name.
func NewRegistryFromBundle(b *Bundle) *MemoryConfigRegistry {
	views := make(map[string]*DataViewConfig, len(b.DataViews))
	for i := range b.DataViews {
		views[b.DataViews[i].Name] = &b.DataViews[i]
	}
	sources := make(map[string]*DataSourceConfig, len(b.DataSources))
	for i := range b.DataSources {
		sources[b.DataSources[i].Name] = &b.DataSources[i]
	}
	return NewMemoryConfigRegistry(views, sources)
}

// GetDataViewConfig retrieves a DataViewConfig by name.
func (r *MemoryConfigRegistry) GetDataViewConfig(name string) (*DataViewConfig, error) {
	if conf, ok := r.dataViews[name]; ok {
		return conf, nil
	}
	return nil, fmt.Errorf("data view config not found: %s", name)
}

// GetDataSourceConfig retrieves a DataSourceConfig by name.
func (r *MemoryConfigRegistry) GetDataSourceConfig(name string) (*DataSourceConfig, error) {
	if conf, ok := r.dataSources[name]; ok {
		return conf, nil
	}
	return nil, fmt.Errorf("data source config not found: %s", name)
}
