package generators

import (
	"math/rand/v2"

	"github.com/datagen-io/datagen/internal/gencontext"
	"github.com/datagen-io/datagen/internal/table"
)

// generateLookup draws each row's value from an already-generated
// column of another table (spec section 4.3's lookup kind). Without
// "on" every row picks uniformly at random over the whole referenced
// column. With "on" (a {this_key: other_key} map), each row resolves
// its own already-produced this_key columns, restricts the candidate
// parent rows to those whose other_key columns match every mapping,
// and samples uniformly among the matches via the column-scoped rng.
// When the lookup target is the node's own table (a self-referential
// foreign key), the "no self-pointing" rule applies: a row may never
// choose its own row index, keyed or not.
func generateLookup(params map[string]interface{}, rowCount int, rng *rand.Rand, ctx gencontext.Context) ([]interface{}, error) {
	from, ok := toString(params["from"])
	if !ok || from == "" {
		return nil, &LookupError{Node: ctx.Node.ID, Column: ctx.Column.Name, From: from, Detail: "from is required"}
	}
	tableName, columnName := splitRef(from)
	if tableName == "" || columnName == "" {
		return nil, &LookupError{Node: ctx.Node.ID, Column: ctx.Column.Name, From: from,
			Detail: "from must be of the form table.column"}
	}

	selfReferential := tableName == ctx.Node.ID

	var parent *table.Table
	if selfReferential {
		// The current table isn't finished yet; the executor registers
		// it in Tables under its own name before its first column runs,
		// so columns declared earlier (such as the primary key) are
		// visible here.
		tbl, ok := ctx.Tables.ByName(ctx.Node.ID)
		if !ok {
			return nil, &LookupError{Node: ctx.Node.ID, Column: ctx.Column.Name, From: from,
				Detail: "self-referential lookup requires the primary key column to already be generated"}
		}
		parent = tbl
	} else {
		tbl, ok := ctx.Tables.ByName(tableName)
		if !ok {
			return nil, &LookupError{Node: ctx.Node.ID, Column: ctx.Column.Name, From: from,
				Detail: "referenced table has not been generated yet: " + tableName}
		}
		parent = tbl
	}

	col, ok := parent.ColumnByName(columnName)
	if !ok {
		return nil, &LookupError{Node: ctx.Node.ID, Column: ctx.Column.Name, From: from,
			Detail: "column not found on referenced table: " + columnName}
	}
	if len(col.Values) == 0 {
		return nil, &LookupError{Node: ctx.Node.ID, Column: ctx.Column.Name, From: from, Detail: "lookup pool is empty"}
	}

	onRaw, hasOn := params["on"].(map[string]interface{})
	if !hasOn || len(onRaw) == 0 {
		values := make([]interface{}, rowCount)
		for i := 0; i < rowCount; i++ {
			idx := rng.IntN(len(col.Values))
			if selfReferential {
				for len(col.Values) > 1 && idx == i {
					idx = rng.IntN(len(col.Values))
				}
			}
			values[i] = col.Values[idx]
		}
		return values, nil
	}

	own, ok := ctx.Tables.ByName(ctx.Node.ID)
	if !ok {
		return nil, &LookupError{Node: ctx.Node.ID, Column: ctx.Column.Name, From: from,
			Detail: "on requires the child table's own join-key columns to already be generated"}
	}

	type joinKey struct {
		ownName   string
		ownCol    *table.Column
		parentCol *table.Column
	}
	keys := make([]joinKey, 0, len(onRaw))
	for ownName, v := range onRaw {
		parentName, ok := toString(v)
		if !ok || parentName == "" {
			return nil, &LookupError{Node: ctx.Node.ID, Column: ctx.Column.Name, From: from,
				Detail: "on values must name a column on the referenced table"}
		}
		oc, ok := own.ColumnByName(ownName)
		if !ok {
			return nil, &LookupError{Node: ctx.Node.ID, Column: ctx.Column.Name, From: from,
				Detail: "on references a column not yet generated on this table: " + ownName}
		}
		pc, ok := parent.ColumnByName(parentName)
		if !ok {
			return nil, &LookupError{Node: ctx.Node.ID, Column: ctx.Column.Name, From: from,
				Detail: "on references a column absent from the referenced table: " + parentName}
		}
		keys = append(keys, joinKey{ownName: ownName, ownCol: oc, parentCol: pc})
	}

	values := make([]interface{}, rowCount)
	for i := 0; i < rowCount; i++ {
		var matches []int
		for j := range col.Values {
			if selfReferential && j == i {
				continue
			}
			match := true
			for _, k := range keys {
				if k.ownCol.Values[i] != k.parentCol.Values[j] {
					match = false
					break
				}
			}
			if match {
				matches = append(matches, j)
			}
		}
		if len(matches) == 0 {
			if ctx.Column.Nullable {
				values[i] = nil
				continue
			}
			rowKeys := make(map[string]interface{}, len(keys))
			for _, k := range keys {
				rowKeys[k.ownName] = k.ownCol.Values[i]
			}
			return nil, &LookupError{Node: ctx.Node.ID, Column: ctx.Column.Name, From: from,
				Table: tableName, Keys: rowKeys, RowIndex: i, Detail: "no parent row matches every on key"}
		}
		idx := matches[rng.IntN(len(matches))]
		values[i] = col.Values[idx]
	}
	return values, nil
}

func splitRef(ref string) (table, column string) {
	for i := len(ref) - 1; i >= 0; i-- {
		if ref[i] == '.' {
			return ref[:i], ref[i+1:]
		}
	}
	return "", ""
}
