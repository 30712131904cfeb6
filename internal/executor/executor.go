// Package executor runs a planned dataset to completion: for each
// dependency level in document order it builds every node's columns,
// applies each column's modifier pipeline, casts to the declared
// type, and (for fact nodes) expands fanout from the first declared
// parent. Grounded on the teacher's generateTableData /
// generateBalancedDistribution, which walks tables in dependency order
// inserting rows table by table — generalized here from "insert into a
// live database" to "append to an in-memory columnar Table".
package executor

import (
	"fmt"
	"log"

	"github.com/datagen-io/datagen/internal/dataset"
	"github.com/datagen-io/datagen/internal/gencontext"
	"github.com/datagen-io/datagen/internal/generators"
	"github.com/datagen-io/datagen/internal/modifiers"
	"github.com/datagen-io/datagen/internal/planner"
	"github.com/datagen-io/datagen/internal/seedfabric"
	"github.com/datagen-io/datagen/internal/table"
)

// ProgressFunc is called after each node finishes, for callers (the
// cmd/datagen CLI in particular) that want to drive a progress bar.
type ProgressFunc func(nodeID string, rowCount int)

// Executor runs a planned dataset against a master seed.
type Executor struct {
	OnProgress ProgressFunc
}

// New returns an Executor with no progress callback.
func New() *Executor {
	return &Executor{}
}

// Generate builds every node of ds in dependency order and returns the
// resulting columnar tables.
func (e *Executor) Generate(ds *dataset.Dataset, masterSeed uint64, cancel <-chan struct{}) (*table.Dataset, error) {
	levels, err := planner.Plan(ds)
	if err != nil {
		return nil, &GenerationError{Kind: BadTopology, Node: "", Err: err}
	}

	tables := table.NewDataset()

	for _, level := range levels {
		for _, nodeID := range level {
			select {
			case <-cancel:
				return nil, &Cancelled{Node: nodeID}
			default:
			}

			node, _ := ds.NodeByID(nodeID)
			built, err := e.buildNode(ds, node, tables, masterSeed, cancel)
			if err != nil {
				return nil, &GenerationError{Kind: NodeFailed, Node: nodeID, Err: err}
			}

			log.Printf("INFO: generated table %s with %d rows", nodeID, built.RowCount)
			if e.OnProgress != nil {
				e.OnProgress(nodeID, built.RowCount)
			}
		}
	}

	return tables, nil
}

func (e *Executor) buildNode(ds *dataset.Dataset, node *dataset.Node, tables *table.Dataset, masterSeed uint64, cancel <-chan struct{}) (*table.Table, error) {
	rowCount := node.RowCount
	var driverKeys []interface{}
	var driverColumn string

	if node.Kind == dataset.NodeFact {
		parentName := node.Parents[0]
		parent, ok := tables.ByName(parentName)
		if !ok {
			return nil, fmt.Errorf("driver parent %s has not been generated yet", parentName)
		}
		parentNode, _ := ds.NodeByID(parentName)
		keyCol, ok := parent.ColumnByName(parentNode.PrimaryKey)
		if !ok {
			return nil, fmt.Errorf("parent %s is missing its primary key column %s", parentName, parentNode.PrimaryKey)
		}

		counts, err := fanoutCounts(node, parent, keyCol.Values, tables, masterSeed, ds.Timeframe.Start, ds.Timeframe.End)
		if err != nil {
			return nil, err
		}

		total := 0
		for _, c := range counts {
			total += c
		}
		rowCount = total

		driverKeys = make([]interface{}, 0, total)
		for i, c := range counts {
			for j := 0; j < c; j++ {
				driverKeys = append(driverKeys, keyCol.Values[i])
			}
		}
		driverColumn = driverForeignKeyColumn(ds, node, parentName)
	}

	built := &table.Table{Name: node.ID, RowCount: rowCount}
	// Registered before any column runs (rather than after the node
	// finishes) so that expressions, lookups-with-on and
	// self-referential lookups can see the sibling columns of this
	// same row that were declared earlier and have already run.
	tables.Add(built)

	for _, col := range node.Columns {
		select {
		case <-cancel:
			return nil, &Cancelled{Node: node.ID}
		default:
		}

		var values []interface{}

		if driverColumn != "" && col.Name == driverColumn {
			values = driverKeys
		} else {
			ctx := gencontext.Context{
				Tables: tables, Start: ds.Timeframe.Start, End: ds.Timeframe.End, Freq: ds.Timeframe.Freq,
				Node: node, Column: &col, Cancel: cancel,
			}
			rng := seedfabric.Derive(masterSeed, node.ID, col.Name)

			var err error
			values, err = generators.Generate(col.Generator, rowCount, rng, ctx)
			if err != nil {
				return nil, err
			}
			for _, mod := range col.Modifiers {
				values, err = modifiers.Apply(mod, values, rng, gencontext.Context{Tables: tables, Node: node, Column: &col, Start: ds.Timeframe.Start, End: ds.Timeframe.End})
				if err != nil {
					return nil, err
				}
			}
		}

		if isSelfReferentialFK(node, &col) {
			values = nullifySelfReferences(values, col.Nullable)
		}

		cast, err := castColumn(node.ID, &col, values)
		if err != nil {
			return nil, err
		}
		built.Columns = append(built.Columns, table.Column{Name: col.Name, Values: cast})
	}

	return built, nil
}

// driverForeignKeyColumn finds the column on node that holds the
// foreign key to parentName, preferring a declared constraint and
// falling back to a lookup generator that targets the parent's primary
// key, since that lookup's random draw would otherwise be inconsistent
// with the fanout expansion already computed for this node.
func driverForeignKeyColumn(ds *dataset.Dataset, node *dataset.Node, parentName string) string {
	for _, fk := range ds.Constraints.ForeignKeys {
		if fk.ChildTable == node.ID && fk.ParentTable == parentName {
			return fk.ChildColumn
		}
	}
	parent, ok := ds.NodeByID(parentName)
	if !ok {
		return ""
	}
	for _, col := range node.Columns {
		if col.Generator.Kind != dataset.GenLookup {
			continue
		}
		from, _ := col.Generator.Params["from"].(string)
		if from == parentName+"."+parent.PrimaryKey {
			return col.Name
		}
	}
	return ""
}

func isSelfReferentialFK(node *dataset.Node, col *dataset.Column) bool {
	if col.Generator.Kind != dataset.GenLookup {
		return false
	}
	from, _ := col.Generator.Params["from"].(string)
	refTable, _ := splitTableColumn(from)
	return refTable == node.ID
}

// nullifySelfReferences breaks self-referential FK cycles by nulling
// roughly the first 0.5% of rows (minimum one), the minimum share
// needed so a topological walk of the resulting rows always has a
// root to start from.
func nullifySelfReferences(values []interface{}, nullable bool) []interface{} {
	if !nullable || len(values) == 0 {
		return values
	}
	k := len(values) / 200
	if k < 1 {
		k = 1
	}
	if k > len(values) {
		k = len(values)
	}
	for i := 0; i < k; i++ {
		values[i] = nil
	}
	return values
}

func splitTableColumn(ref string) (tableName, columnName string) {
	for i := len(ref) - 1; i >= 0; i-- {
		if ref[i] == '.' {
			return ref[:i], ref[i+1:]
		}
	}
	return "", ""
}
