package core

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/htmlindex"
)

// CsvDataFetcher implements DataFetcher using CSV files.
// It maps a source name to <RootDir>/<source>.csv; the first record is the header.
type CsvDataFetcher struct {
	RootDir string
	// Charset names the file encoding (e.g. "windows-1251", "gbk"); empty means UTF-8.
	Charset string
}

func NewCsvDataFetcher(rootDir string) *CsvDataFetcher {
	return &CsvDataFetcher{RootDir: rootDir}
}

func (f *CsvDataFetcher) reader(file io.Reader) (io.Reader, error) {
	if f.Charset == "" {
		return file, nil
	}
	enc, err := htmlindex.Get(f.Charset)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", f.Charset, err)
	}
	return enc.NewDecoder().Reader(file), nil
}

func (f *CsvDataFetcher) Fetch(ctx context.Context, source string, filters map[string]string) ([]map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filePath := filepath.Join(f.RootDir, source+".csv")

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file %s: %w", filePath, err)
	}
	defer file.Close()

	r, err := f.reader(file)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv content %s: %w", filePath, err)
	}

	if len(records) < 1 {
		return nil, nil
	}

	header := records[0]
	var result []map[string]interface{}
	for _, row := range records[1:] {
		item := make(map[string]interface{}, len(header))
		for j, col := range row {
			if j < len(header) {
				item[header[j]] = col
			}
		}

		match := true
		for k, v := range filters {
			if colVal, hasCol := item[k]; hasCol && colVal != v {
				match = false
				break
			}
		}
		if match {
			result = append(result, item)
		}
	}

	return result, nil
}
