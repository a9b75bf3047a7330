package core

import (
	"context"
	"database/sql"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/NikBulygin/xlsx2pdf/config"
)

func TestSourceFetchers(t *testing.T) {
	ctx := context.Background()
	s := NewSourceFetchers(testLogger())

	var opened []string
	s.Open = func(driver, dsn string) (*sql.DB, error) {
		opened = append(opened, driver)
		// Drivers connect lazily, so no server is needed.
		return sql.Open(driver, dsn)
	}
	var region string
	s.LoadAWS = func(_ context.Context, r string) (aws.Config, error) {
		region = r
		return aws.Config{Region: r}, nil
	}

	csvSrc := &config.DataSourceConfig{Name: "files", Driver: "csv", DSN: "/data", Charset: "gbk"}
	f, err := s.FetcherFor(ctx, csvSrc)
	if err != nil {
		t.Fatal(err)
	}
	if c, ok := f.(*CsvDataFetcher); !ok || c.RootDir != "/data" || c.Charset != "gbk" {
		t.Errorf("csv fetcher = %#v", f)
	}
	again, _ := s.FetcherFor(ctx, csvSrc)
	if again != f {
		t.Error("fetcher not cached per data source")
	}

	sources := []config.DataSourceConfig{
		{Name: "my", Driver: "mysql", DSN: "user:pw@tcp(127.0.0.1:3306)/reports"},
		{Name: "pq", Driver: "postgres", DSN: "postgres://user:pw@127.0.0.1/reports?sslmode=disable"},
		{Name: "px", Driver: "pgx", DSN: "postgres://user:pw@127.0.0.1/reports"},
	}
	for i := range sources {
		f, err := s.FetcherFor(ctx, &sources[i])
		if err != nil {
			t.Fatalf("%s: %v", sources[i].Driver, err)
		}
		if sf, ok := f.(*SQLDataFetcher); !ok || sf.DriverName != sources[i].Driver {
			t.Errorf("%s fetcher = %#v", sources[i].Driver, f)
		}
	}
	if len(opened) != 3 {
		t.Errorf("opened = %v", opened)
	}

	f, err = s.FetcherFor(ctx, &config.DataSourceConfig{Name: "ddb", Driver: "dynamodb", DSN: "eu-west-1"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := f.(*DynamoDBDataFetcher); !ok || region != "eu-west-1" {
		t.Errorf("dynamodb fetcher = %#v, region %q", f, region)
	}

	if _, err := s.FetcherFor(ctx, &config.DataSourceConfig{Name: "x", Driver: "oracle"}); err == nil {
		t.Error("expected error for unsupported driver")
	}

	if err := s.Close(); err != nil {
		t.Errorf("Close error: %v", err)
	}
}
