package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datagen-io/datagen/internal/dataset"
	"github.com/datagen-io/datagen/internal/validator"
)

// TestGenerateThenValidateProducesACleanReport runs a full
// executor.Generate -> validator.Validate round trip and checks the
// two layers agree: every generated foreign key actually resolves,
// and the resulting report scores accordingly. Unlike the table
// assertions elsewhere in this package, the expected/actual sets here
// are unordered containers (row-order is an implementation detail),
// which is what pulls in testify's set-style matchers instead of a
// hand-rolled comparison loop.
func TestGenerateThenValidateProducesACleanReport(t *testing.T) {
	ds := simpleDataset()
	ds.Constraints.Unique = []dataset.UniqueConstraint{{Table: "customers", Columns: []string{"id"}}}

	tables, err := New().Generate(ds, 99, nil)
	require.NoError(t, err)

	customers, ok := tables.ByName("customers")
	require.True(t, ok)
	orders, ok := tables.ByName("orders")
	require.True(t, ok)

	customerIDCol, ok := customers.ColumnByName("id")
	require.True(t, ok)
	fkCol, ok := orders.ColumnByName("customer_id")
	require.True(t, ok)

	validIDs := make([]interface{}, len(customerIDCol.Values))
	copy(validIDs, customerIDCol.Values)
	seen := make(map[interface{}]bool)
	for _, v := range fkCol.Values {
		seen[v] = true
	}
	var referenced []interface{}
	for id := range seen {
		referenced = append(referenced, id)
	}
	assert.Subset(t, validIDs, referenced, "every referenced customer id must be a real customer id")

	report := validator.Validate(ds, tables)
	assert.Equal(t, 1.0, report.StructuralScore, "structural checks should pass: %+v", report.Findings)
	assert.GreaterOrEqual(t, report.OverallScore, 0.9)
}
