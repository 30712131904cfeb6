// Package datagenio writes a generated table.Dataset to disk: CSV,
// JSON, and a dataset-metadata document naming the run. Persistence is
// a boundary concern the core itself never performs (spec section 6),
// grounded on the teacher's internal/output.WriteCSV / WriteJSON, kept
// column-header-ordered and formatted the same way but reading from
// the columnar table.Table this repo's core produces instead of a
// []map[string]interface{} row slice.
package datagenio

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/datagen-io/datagen/internal/table"
)

// WriteCSV writes one table to <dir>/<tableName>.csv, columns in the
// table's declared order.
func WriteCSV(dir string, t *table.Table) error {
	filename := filepath.Join(dir, fmt.Sprintf("%s.csv", t.Name))
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Name
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := 0; i < t.RowCount; i++ {
		record := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			record[j] = formatValue(c.Values[i])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	return nil
}

// WriteJSON writes one table to <dir>/<tableName>.json as a list of
// row objects.
func WriteJSON(dir string, t *table.Table) error {
	filename := filepath.Join(dir, fmt.Sprintf("%s.json", t.Name))
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	rows := make([]map[string]interface{}, t.RowCount)
	for i := 0; i < t.RowCount; i++ {
		rows[i] = t.Row(i)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// WriteAll writes every table in ds to dir in the requested format
// ("csv" or "json").
func WriteAll(dir, format string, ds *table.Dataset) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, t := range ds.Tables {
		var err error
		switch format {
		case "json":
			err = WriteJSON(dir, t)
		default:
			err = WriteCSV(dir, t)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case int, int32, int64:
		return fmt.Sprintf("%d", val)
	case float32, float64:
		return fmt.Sprintf("%v", val)
	case bool:
		return fmt.Sprintf("%t", val)
	case time.Time:
		return val.Format(time.RFC3339)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}
