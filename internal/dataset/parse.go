package dataset

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// rawDocument mirrors the wire shape documented in spec section 6. Field
// names are decoded strictly (unknown top-level keys are rejected),
// the same posture a strict schema loader takes toward its documents.
type rawDocument struct {
	Version     string          `yaml:"version"`
	Metadata    rawMetadata     `yaml:"metadata"`
	Timeframe   rawTimeframe    `yaml:"timeframe"`
	Nodes       []rawNode       `yaml:"nodes"`
	Constraints rawConstraints  `yaml:"constraints"`
	Targets     rawTargets      `yaml:"targets"`
}

type rawMetadata struct {
	Name string `yaml:"name"`
}

type rawTimeframe struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
	Freq  string `yaml:"freq"`
}

type rawVariant struct {
	Kind   string                 `yaml:"kind"`
	Params map[string]interface{} `yaml:",inline"`
}

type rawColumn struct {
	Name      string       `yaml:"name"`
	Type      string       `yaml:"type"`
	Nullable  bool         `yaml:"nullable"`
	Generator rawVariant   `yaml:"generator"`
	Modifiers []rawVariant `yaml:"modifiers"`
}

type rawNode struct {
	ID         string       `yaml:"id"`
	Kind       string       `yaml:"kind"`
	PrimaryKey string       `yaml:"primary_key"`
	RowCount   int          `yaml:"row_count"`
	Parents    []string     `yaml:"parents"`
	Fanout     *rawVariant  `yaml:"fanout"`
	Columns    []rawColumn  `yaml:"columns"`
	Modifiers  []rawVariant `yaml:"modifiers"`
}

type rawFK struct {
	ChildTable   string `yaml:"child_table"`
	ChildColumn  string `yaml:"child_column"`
	ParentTable  string `yaml:"parent_table"`
	ParentColumn string `yaml:"parent_column"`
}

type rawRange struct {
	Table  string  `yaml:"table"`
	Column string  `yaml:"column"`
	Lo     float64 `yaml:"lo"`
	Hi     float64 `yaml:"hi"`
}

type rawIneq struct {
	Table string `yaml:"table"`
	ColA  string `yaml:"col_a"`
	Op    string `yaml:"op"`
	ColB  string `yaml:"col_b"`
}

type rawPattern struct {
	Table   string `yaml:"table"`
	Column  string `yaml:"column"`
	Pattern string `yaml:"pattern"`
}

type rawEnum struct {
	Table  string   `yaml:"table"`
	Column string   `yaml:"column"`
	Values []string `yaml:"values"`
}

type rawUnique struct {
	Table   string   `yaml:"table"`
	Columns []string `yaml:"columns"`
}

type rawConstraints struct {
	Unique       []rawUnique  `yaml:"unique"`
	ForeignKeys  []rawFK      `yaml:"foreign_keys"`
	Ranges       []rawRange   `yaml:"ranges"`
	Inequalities []rawIneq    `yaml:"inequalities"`
	Pattern      []rawPattern `yaml:"pattern"`
	Enum         []rawEnum    `yaml:"enum"`
}

type rawWeekendShare struct {
	Table  string  `yaml:"table"`
	Column string  `yaml:"column"`
	Lo     float64 `yaml:"lo"`
	Hi     float64 `yaml:"hi"`
}

type rawMeanInRange struct {
	Table  string  `yaml:"table"`
	Column string  `yaml:"column"`
	Lo     float64 `yaml:"lo"`
	Hi     float64 `yaml:"hi"`
}

type rawInfluence struct {
	Dimension string    `yaml:"dimension"`
	Weights   []float64 `yaml:"weights"`
}

type rawCompositeEffect struct {
	Table      string         `yaml:"table"`
	Column     string         `yaml:"column"`
	Influences []rawInfluence `yaml:"influences"`
	MAETol     float64        `yaml:"mae_tol"`
	MAPETol    float64        `yaml:"mape_tol"`
}

type rawTargets struct {
	WeekendShare    []rawWeekendShare    `yaml:"weekend_share"`
	MeanInRange     []rawMeanInRange     `yaml:"mean_in_range"`
	CompositeEffect []rawCompositeEffect `yaml:"composite_effect"`
}

const timeLayout = time.RFC3339

// Parse reads a declarative schema document (see spec section 6) and
// returns a fully validated, immutable Dataset or a SchemaError.
func Parse(document []byte) (*Dataset, error) {
	dec := yaml.NewDecoder(bytes.NewReader(document))
	dec.KnownFields(true)

	var raw rawDocument
	if err := dec.Decode(&raw); err != nil {
		return nil, newSchemaError(TypeMismatch, "$", err.Error(), nil)
	}

	ds := Dataset{
		Version:  raw.Version,
		Metadata: Metadata{Name: raw.Metadata.Name},
	}

	start, err := time.Parse(timeLayout, raw.Timeframe.Start)
	if err != nil {
		return nil, newSchemaError(BadParameter, "$.timeframe.start", err.Error(), raw.Timeframe.Start)
	}
	end, err := time.Parse(timeLayout, raw.Timeframe.End)
	if err != nil {
		return nil, newSchemaError(BadParameter, "$.timeframe.end", err.Error(), raw.Timeframe.End)
	}
	if !end.After(start) {
		return nil, newSchemaError(BadParameter, "$.timeframe", "end must be after start", nil)
	}
	if raw.Timeframe.Freq == "" {
		return nil, newSchemaError(MissingField, "$.timeframe.freq", "frequency is required", nil)
	}
	ds.Timeframe = Timeframe{Start: start, End: end, Freq: raw.Timeframe.Freq}

	if len(raw.Nodes) == 0 {
		return nil, newSchemaError(MissingField, "$.nodes", "dataset must declare at least one node", nil)
	}

	seenIDs := make(map[string]bool, len(raw.Nodes))
	for i, rn := range raw.Nodes {
		path := fmt.Sprintf("$.nodes[%d]", i)
		node, err := parseNode(path, rn)
		if err != nil {
			return nil, err
		}
		if seenIDs[node.ID] {
			return nil, newSchemaError(DuplicateId, path+".id", "node id declared twice", node.ID)
		}
		seenIDs[node.ID] = true
		ds.Nodes = append(ds.Nodes, *node)
	}

	// Cross-node reference checks that need the full node set: parents,
	// effect_table siblings, constraint targets.
	for i := range ds.Nodes {
		n := &ds.Nodes[i]
		for _, p := range n.Parents {
			if _, ok := ds.NodeByID(p); !ok {
				return nil, newSchemaError(BadReference, fmt.Sprintf("$.nodes[%d].parents", i), "parent node does not exist", p)
			}
		}
		if err := checkEffectTables(&ds, n); err != nil {
			return nil, err
		}
	}

	constraints, err := parseConstraints(&ds, raw.Constraints)
	if err != nil {
		return nil, err
	}
	ds.Constraints = constraints

	targets, err := parseTargets(&ds, raw.Targets)
	if err != nil {
		return nil, err
	}
	ds.Targets = targets

	return &ds, nil
}

func parseNode(path string, rn rawNode) (*Node, error) {
	if rn.ID == "" {
		return nil, newSchemaError(MissingField, path+".id", "node id is required", nil)
	}
	kind := NodeKind(rn.Kind)
	switch kind {
	case NodeEntity, NodeFact, NodeVocab:
	default:
		return nil, newSchemaError(BadParameter, path+".kind", "unknown node kind", rn.Kind)
	}
	if rn.PrimaryKey == "" {
		return nil, newSchemaError(MissingField, path+".primary_key", "primary_key is required", nil)
	}
	if len(rn.Columns) == 0 {
		return nil, newSchemaError(MissingField, path+".columns", "node must declare at least one column", nil)
	}

	node := &Node{
		ID:         rn.ID,
		Kind:       kind,
		PrimaryKey: rn.PrimaryKey,
		RowCount:   rn.RowCount,
		Parents:    rn.Parents,
	}

	switch kind {
	case NodeEntity:
		if node.RowCount <= 0 {
			node.RowCount = 1000
		}
	case NodeFact:
		if len(rn.Parents) == 0 {
			return nil, newSchemaError(BadParameter, path+".parents", "fact node must declare at least one parent", nil)
		}
		if rn.Fanout == nil {
			return nil, newSchemaError(MissingField, path+".fanout", "fact node must declare a fanout", nil)
		}
		fanout, err := parseFanout(path+".fanout", *rn.Fanout)
		if err != nil {
			return nil, err
		}
		node.Fanout = fanout
	case NodeVocab:
		// row count is taken from an enum_list column below, overriding
		// any declared row_count.
	}

	seenCols := make(map[string]bool, len(rn.Columns))
	for i, rc := range rn.Columns {
		cpath := fmt.Sprintf("%s.columns[%d]", path, i)
		col, err := parseColumn(cpath, rc)
		if err != nil {
			return nil, err
		}
		if seenCols[col.Name] {
			return nil, newSchemaError(DuplicateId, cpath+".name", "column name declared twice in this node", col.Name)
		}
		seenCols[col.Name] = true
		node.Columns = append(node.Columns, *col)
	}

	if kind == NodeVocab {
		found := false
		for _, c := range node.Columns {
			if c.Generator.Kind == GenEnumList {
				if values, ok := c.Generator.Params["values"].([]interface{}); ok {
					if len(values) == 0 {
						return nil, newSchemaError(BadParameter, path, "vocab node has no choices", nil)
					}
					node.RowCount = len(values)
					found = true
				}
			}
		}
		if !found && node.RowCount <= 0 {
			return nil, newSchemaError(MissingField, path, "vocab node must declare row_count or an enum_list column", nil)
		}
	}

	for i, rm := range rn.Modifiers {
		mpath := fmt.Sprintf("%s.modifiers[%d]", path, i)
		mod, err := parseModifier(mpath, rm)
		if err != nil {
			return nil, err
		}
		node.TableModifiers = append(node.TableModifiers, *mod)
	}

	return node, nil
}

func parseColumn(path string, rc rawColumn) (*Column, error) {
	if rc.Name == "" {
		return nil, newSchemaError(MissingField, path+".name", "column name is required", nil)
	}
	typ := ColumnType(rc.Type)
	switch typ {
	case TypeInt, TypeFloat, TypeString, TypeBool, TypeDate, TypeDatetime:
	default:
		return nil, newSchemaError(BadParameter, path+".type", "unknown column type", rc.Type)
	}

	gen, err := parseGenerator(path+".generator", rc.Generator)
	if err != nil {
		return nil, err
	}

	col := &Column{
		Name:      rc.Name,
		Type:      typ,
		Nullable:  rc.Nullable,
		Generator: *gen,
	}

	for i, rm := range rc.Modifiers {
		mpath := fmt.Sprintf("%s.modifiers[%d]", path, i)
		mod, err := parseModifier(mpath, rm)
		if err != nil {
			return nil, err
		}
		col.Modifiers = append(col.Modifiers, *mod)
	}

	return col, nil
}

var requiredGeneratorKeys = map[GeneratorKind][]string{
	GenSequence:       {"start", "step"},
	GenChoice:         {"choices"},
	GenDistribution:   {"type"},
	GenDatetimeSeries: {"freq"},
	GenFaker:          {"method"},
	GenLookup:         {"from"},
	GenExpression:     {"code"},
	GenEnumList:       {"values"},
}

func parseGenerator(path string, rv rawVariant) (*GeneratorSpec, error) {
	kind := GeneratorKind(rv.Kind)
	if !validGeneratorKinds[kind] {
		return nil, newSchemaError(BadParameter, path+".kind", "unknown generator kind", rv.Kind)
	}
	for _, key := range requiredGeneratorKeys[kind] {
		if _, ok := rv.Params[key]; !ok {
			return nil, newSchemaError(MissingField, path+"."+key, "required generator parameter missing", nil)
		}
	}
	if kind == GenEnumList {
		values, _ := rv.Params["values"].([]interface{})
		if len(values) == 0 {
			return nil, newSchemaError(BadParameter, path+".values", "enum_list must declare at least one value", nil)
		}
	}
	return &GeneratorSpec{Kind: kind, Params: rv.Params}, nil
}

func parseModifier(path string, rv rawVariant) (*ModifierSpec, error) {
	kind := ModifierKind(rv.Kind)
	if !validModifierKinds[kind] {
		return nil, newSchemaError(BadParameter, path+".kind", "unknown modifier kind", rv.Kind)
	}
	return &ModifierSpec{Kind: kind, Args: rv.Params}, nil
}

func parseFanout(path string, rv rawVariant) (*Fanout, error) {
	kind := FanoutKind(rv.Kind)
	f := &Fanout{Kind: kind}

	min, _ := toInt(rv.Params["min"])
	max, _ := toInt(rv.Params["max"])
	f.Min, f.Max = min, max

	switch kind {
	case FanoutPoisson:
		lambda, ok := toFloat(rv.Params["lambda"])
		if !ok {
			return nil, newSchemaError(MissingField, path+".lambda", "poisson fanout requires lambda", nil)
		}
		f.Lambda = lambda
	case FanoutUniform:
		// min/max already parsed above.
	default:
		return nil, newSchemaError(BadParameter, path+".kind", "unknown fanout kind", rv.Kind)
	}

	if f.Max < f.Min {
		return nil, newSchemaError(BadParameter, path, "fanout max must be >= min", nil)
	}
	return f, nil
}

func checkEffectTables(ds *Dataset, n *Node) error {
	check := func(mods []ModifierSpec, where string) error {
		for _, m := range mods {
			if m.Kind != ModEffect {
				continue
			}
			tbl, _ := m.Args["effect_table"].(string)
			if tbl == "" {
				return newSchemaError(MissingField, where+".effect_table", "effect modifier requires effect_table", nil)
			}
			if tbl == n.ID {
				return newSchemaError(BadReference, where+".effect_table", "effect_table must be a sibling node, not itself", tbl)
			}
			if _, ok := ds.NodeByID(tbl); !ok {
				return newSchemaError(BadReference, where+".effect_table", "effect_table references a node that does not exist", tbl)
			}
		}
		return nil
	}
	if err := check(n.TableModifiers, fmt.Sprintf("$.nodes[%s].modifiers", n.ID)); err != nil {
		return err
	}
	for _, c := range n.Columns {
		if err := check(c.Modifiers, fmt.Sprintf("$.nodes[%s].columns[%s].modifiers", n.ID, c.Name)); err != nil {
			return err
		}
	}
	return nil
}

func parseConstraints(ds *Dataset, rc rawConstraints) (Constraints, error) {
	var out Constraints
	for _, u := range rc.Unique {
		if _, ok := ds.NodeByID(u.Table); !ok {
			return out, newSchemaError(BadReference, "$.constraints.unique", "references non-existent table", u.Table)
		}
		out.Unique = append(out.Unique, UniqueConstraint{Table: u.Table, Columns: u.Columns})
	}
	for _, fk := range rc.ForeignKeys {
		child, ok := ds.NodeByID(fk.ChildTable)
		if !ok {
			return out, newSchemaError(BadReference, "$.constraints.foreign_keys", "child table does not exist", fk.ChildTable)
		}
		parent, ok := ds.NodeByID(fk.ParentTable)
		if !ok {
			return out, newSchemaError(BadReference, "$.constraints.foreign_keys", "parent table does not exist", fk.ParentTable)
		}
		if _, ok := child.ColumnByName(fk.ChildColumn); !ok {
			return out, newSchemaError(BadReference, "$.constraints.foreign_keys", "child column does not exist", fk.ChildColumn)
		}
		if _, ok := parent.ColumnByName(fk.ParentColumn); !ok && parent.PrimaryKey != fk.ParentColumn {
			return out, newSchemaError(BadReference, "$.constraints.foreign_keys", "parent column does not exist", fk.ParentColumn)
		}
		out.ForeignKeys = append(out.ForeignKeys, ForeignKeyConstraint{
			ChildTable: fk.ChildTable, ChildColumn: fk.ChildColumn,
			ParentTable: fk.ParentTable, ParentColumn: fk.ParentColumn,
		})
	}
	for _, r := range rc.Ranges {
		out.Ranges = append(out.Ranges, RangeConstraint{Table: r.Table, Column: r.Column, Lo: r.Lo, Hi: r.Hi})
	}
	for _, iq := range rc.Inequalities {
		out.Inequalities = append(out.Inequalities, InequalityConstraint{Table: iq.Table, ColA: iq.ColA, Op: iq.Op, ColB: iq.ColB})
	}
	for _, p := range rc.Pattern {
		out.Patterns = append(out.Patterns, PatternConstraint{Table: p.Table, Column: p.Column, Pattern: p.Pattern})
	}
	for _, e := range rc.Enum {
		out.Enums = append(out.Enums, EnumConstraint{Table: e.Table, Column: e.Column, Values: e.Values})
	}
	return out, nil
}

func parseTargets(ds *Dataset, rt rawTargets) (Targets, error) {
	var out Targets
	for _, w := range rt.WeekendShare {
		out.WeekendShare = append(out.WeekendShare, WeekendShareTarget{Table: w.Table, Column: w.Column, Lo: w.Lo, Hi: w.Hi})
	}
	for _, m := range rt.MeanInRange {
		out.MeanInRange = append(out.MeanInRange, MeanInRangeTarget{Table: m.Table, Column: m.Column, Lo: m.Lo, Hi: m.Hi})
	}
	for _, c := range rt.CompositeEffect {
		var influences []CompositeInfluence
		for _, inf := range c.Influences {
			influences = append(influences, CompositeInfluence{Dimension: inf.Dimension, Weights: inf.Weights})
		}
		maeTol, mapeTol := c.MAETol, c.MAPETol
		if maeTol == 0 {
			maeTol = 0.1
		}
		if mapeTol == 0 {
			mapeTol = 0.15
		}
		out.CompositeEffect = append(out.CompositeEffect, CompositeEffectTarget{
			Table: c.Table, Column: c.Column, Influences: influences, MAETol: maeTol, MAPETol: mapeTol,
		})
	}
	return out, nil
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
