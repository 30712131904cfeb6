package datagenio

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/datagen-io/datagen/internal/dataset"
	"github.com/datagen-io/datagen/internal/table"
)

// TableSummary records one table's shape in the metadata document.
type TableSummary struct {
	Name        string `yaml:"name"`
	RowCount    int    `yaml:"row_count"`
	ColumnCount int    `yaml:"column_count"`
}

// Metadata is the document written alongside a run's output files: a
// run id, the master seed used, and a per-table shape summary, plus a
// hash of the schema document that produced it so a later run can
// detect schema drift.
type Metadata struct {
	RunID      string         `yaml:"run_id"`
	Name       string         `yaml:"name"`
	Version    string         `yaml:"version"`
	MasterSeed uint64         `yaml:"master_seed"`
	SchemaHash string         `yaml:"schema_hash"`
	Tables     []TableSummary `yaml:"tables"`
}

// BuildMetadata summarizes a completed run. schemaDocument is the raw
// bytes parse_schema read, hashed here so the metadata document
// doesn't need to embed the whole schema.
func BuildMetadata(ds *dataset.Dataset, gt *table.Dataset, masterSeed uint64, schemaDocument []byte) Metadata {
	sum := sha256.Sum256(schemaDocument)

	md := Metadata{
		RunID:      uuid.New().String(),
		Name:       ds.Metadata.Name,
		Version:    ds.Version,
		MasterSeed: masterSeed,
		SchemaHash: hex.EncodeToString(sum[:]),
	}
	for _, t := range gt.Tables {
		md.Tables = append(md.Tables, TableSummary{Name: t.Name, RowCount: t.RowCount, ColumnCount: len(t.Columns)})
	}
	return md
}

// WriteMetadata writes md to <dir>/metadata.yaml.
func WriteMetadata(dir string, md Metadata) error {
	filename := filepath.Join(dir, "metadata.yaml")
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create metadata file: %w", err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(md); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}
