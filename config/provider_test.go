package config

import "testing"

func TestMemoryConfigRegistry_GetDataViewConfig(t *testing.T) {
	views := map[string]*DataViewConfig{
		"view1": {Name: "view1"},
	}
	registry := NewMemoryConfigRegistry(views, nil)

	conf, err := registry.GetDataViewConfig("view1")
	if err != nil {
		t.Fatalf("expected config, got error: %v", err)
	}
	if conf.Name != "view1" {
		t.Fatalf("unexpected config name: %s", conf.Name)
	}
}

func TestMemoryConfigRegistry_NotFound(t *testing.T) {
	registry := NewMemoryConfigRegistry(map[string]*DataViewConfig{}, nil)
	if _, err := registry.GetDataViewConfig("missing"); err == nil {
		t.Fatalf("expected error for missing view")
	}
	if _, err := registry.GetDataSourceConfig("missing"); err == nil {
		t.Fatalf("expected error for missing data source")
	}
}

func TestNewRegistryFromBundle(t *testing.T) {
	b := &Bundle{
		DataSources: []DataSourceConfig{{Name: "ds1", Driver: "csv", DSN: "data"}},
		DataViews:   []DataViewConfig{{Name: "items", DataSource: "ds1", Table: "items_2024"}},
	}
	registry := NewRegistryFromBundle(b)

	view, err := registry.GetDataViewConfig("items")
	if err != nil {
		t.Fatalf("GetDataViewConfig error: %v", err)
	}
	if view.SourceName() != "items_2024" {
		t.Fatalf("SourceName = %s, want items_2024", view.SourceName())
	}
	if _, err := registry.GetDataSourceConfig("ds1"); err != nil {
		t.Fatalf("GetDataSourceConfig error: %v", err)
	}
}
