package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"github.com/NikBulygin/xlsx2pdf/config"
)

// SourceFetchers creates one fetcher per data source and keeps it for the
// rest of the run. Close releases the database handles it opened.
type SourceFetchers struct {
	// Open opens SQL connections; sql.Open when nil.
	Open func(driver, dsn string) (*sql.DB, error)
	// LoadAWS loads the AWS configuration for DynamoDB sources. The data
	// source DSN, when set, is the region.
	LoadAWS func(ctx context.Context, region string) (aws.Config, error)

	logger   *slog.Logger
	mu       sync.Mutex
	fetchers map[string]DataFetcher
	dbs      []*sql.DB
}

// NewSourceFetchers creates an empty fetcher cache.
func NewSourceFetchers(logger *slog.Logger) *SourceFetchers {
	return &SourceFetchers{
		logger:   logger,
		fetchers: make(map[string]DataFetcher),
	}
}

func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

func (s *SourceFetchers) FetcherFor(ctx context.Context, ds *config.DataSourceConfig) (DataFetcher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.fetchers[ds.Name]; ok {
		return f, nil
	}

	var f DataFetcher
	switch ds.Driver {
	case "csv":
		f = &CsvDataFetcher{RootDir: ds.DSN, Charset: ds.Charset}
	case "mysql", "postgres", "pgx":
		open := s.Open
		if open == nil {
			open = sql.Open
		}
		db, err := open(ds.Driver, ds.DSN)
		if err != nil {
			return nil, fmt.Errorf("open data source %s: %w", ds.Name, err)
		}
		s.dbs = append(s.dbs, db)
		f = NewSQLDataFetcher(db, ds.Driver)
	case "dynamodb":
		load := s.LoadAWS
		if load == nil {
			load = loadAWSConfig
		}
		cfg, err := load(ctx, ds.DSN)
		if err != nil {
			return nil, fmt.Errorf("load aws config for %s: %w", ds.Name, err)
		}
		f = NewDynamoDBDataFetcher(cfg)
	default:
		return nil, fmt.Errorf("data source %s: unsupported driver %q", ds.Name, ds.Driver)
	}

	s.logger.Debug("Data source opened", "source", ds.Name, "driver", ds.Driver)
	s.fetchers[ds.Name] = f
	return f, nil
}

// Close closes every database handle opened by FetcherFor.
func (s *SourceFetchers) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, db := range s.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.dbs = nil
	s.fetchers = make(map[string]DataFetcher)
	return errors.Join(errs...)
}
