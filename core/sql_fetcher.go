package core

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var sqlIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SQLDataFetcher implements DataFetcher using a generic SQL database (MySQL, PostgreSQL).
// It maps the source name to a table name.
type SQLDataFetcher struct {
	DB         *sql.DB
	DriverName string // "mysql", "postgres" or "pgx"
}

// NewSQLDataFetcher creates a new fetcher.
func NewSQLDataFetcher(db *sql.DB, driverName string) *SQLDataFetcher {
	return &SQLDataFetcher{
		DB:         db,
		DriverName: driverName,
	}
}

// buildQuery renders the SELECT for table with equality conditions on the
// filter columns, in column order. Identifiers are checked, values are bound.
func (f *SQLDataFetcher) buildQuery(table string, filters map[string]string) (string, []interface{}, error) {
	if !sqlIdentifier.MatchString(table) {
		return "", nil, fmt.Errorf("invalid table name %q", table)
	}
	query := "SELECT * FROM " + table
	if len(filters) == 0 {
		return query, nil, nil
	}

	columns := make([]string, 0, len(filters))
	for k := range filters {
		if !sqlIdentifier.MatchString(k) {
			return "", nil, fmt.Errorf("invalid column name %q", k)
		}
		columns = append(columns, k)
	}
	sort.Strings(columns)

	conditions := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, k := range columns {
		switch f.DriverName {
		case "postgres", "pgx":
			conditions[i] = fmt.Sprintf("%s = $%d", k, i+1)
		default:
			conditions[i] = k + " = ?"
		}
		args[i] = filters[k]
	}
	return query + " WHERE " + strings.Join(conditions, " AND "), args, nil
}

// Fetch executes a SELECT on the table named by source.
func (f *SQLDataFetcher) Fetch(ctx context.Context, source string, filters map[string]string) ([]map[string]interface{}, error) {
	query, args, err := f.buildQuery(source, filters)
	if err != nil {
		return nil, err
	}

	rows, err := f.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var result []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}

		entry := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			// MySQL returns text columns as []byte.
			if b, ok := values[i].([]byte); ok {
				entry[col] = string(b)
			} else {
				entry[col] = values[i]
			}
		}
		result = append(result, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
