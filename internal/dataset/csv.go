package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ReadCSV loads a table from the CSV file at path. The first record is
// taken as the header. A zero-byte file yields an empty table rather
// than an error so the schema validator can report the missing columns
// and emptiness together.
func ReadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// Read header
	header, err := reader.Read()
	if err == io.EOF {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	table := &Table{Columns: header}

	// Read data rows
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row %d: %w", len(table.Records)+2, err)
		}
		table.Records = append(table.Records, record)
	}

	return table, nil
}

// WriteCSV writes the table to path, creating parent directories as
// needed. Existing files are truncated.
func (t *Table) WriteCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for i, record := range t.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write CSV record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
