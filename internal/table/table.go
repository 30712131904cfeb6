// Package table holds the in-memory columnar result of generation: the
// GeneratedTables value the executor produces and the validator and
// output writers consume, grounded on the column-oriented slices the
// teacher builds up in generateTableData before handing them to its
// output/seeder layers.
package table

// Column is one generated column's values, indexed by row. A nil
// interface{} entry represents SQL NULL.
type Column struct {
	Name   string
	Values []interface{}
}

// Table is one generated node's rows, stored column-major so that
// modifiers and validators can operate on a whole column without
// walking row-by-row structs.
type Table struct {
	Name     string
	Columns  []Column
	RowCount int
}

// ColumnByName returns the named column, or false if absent.
func (t *Table) ColumnByName(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// Row reconstructs a single row as a name->value map. Used by output
// writers and by tests that want to assert on row shape rather than
// column shape.
func (t *Table) Row(i int) map[string]interface{} {
	row := make(map[string]interface{}, len(t.Columns))
	for _, c := range t.Columns {
		row[c.Name] = c.Values[i]
	}
	return row
}

// Dataset is the full generation result: every table keyed by node id,
// plus the order they were produced in (a flattened planner schedule).
type Dataset struct {
	Tables []*Table
	order  map[string]int
}

// NewDataset returns an empty Dataset ready to receive tables in
// generation order.
func NewDataset() *Dataset {
	return &Dataset{order: make(map[string]int)}
}

// Add appends a table to the dataset. The pointer is stored, so
// columns appended to the table afterwards are visible through ByName.
func (d *Dataset) Add(t *Table) {
	if d.order == nil {
		d.order = make(map[string]int)
	}
	d.order[t.Name] = len(d.Tables)
	d.Tables = append(d.Tables, t)
}

// ByName returns the table with the given name, or false if absent.
func (d *Dataset) ByName(name string) (*Table, bool) {
	if d.order == nil {
		return nil, false
	}
	i, ok := d.order[name]
	if !ok {
		return nil, false
	}
	return d.Tables[i], true
}
