// Package dataset holds the typed, validated representation of a
// declarative datagen schema document: the sum type of node, generator,
// modifier and constraint kinds described in spec section 3-4.1.
package dataset

import "time"

// NodeKind is the sum type of table roles in a Dataset.
type NodeKind string

const (
	NodeEntity NodeKind = "entity"
	NodeFact   NodeKind = "fact"
	NodeVocab  NodeKind = "vocab"
)

// ColumnType is the logical type a column is cast to after its modifier
// pipeline runs.
type ColumnType string

const (
	TypeInt      ColumnType = "int"
	TypeFloat    ColumnType = "float"
	TypeString   ColumnType = "string"
	TypeBool     ColumnType = "bool"
	TypeDate     ColumnType = "date"
	TypeDatetime ColumnType = "datetime"
)

// GeneratorKind enumerates the generator variant set of spec section 4.3.
type GeneratorKind string

const (
	GenSequence       GeneratorKind = "sequence"
	GenChoice         GeneratorKind = "choice"
	GenDistribution   GeneratorKind = "distribution"
	GenDatetimeSeries GeneratorKind = "datetime_series"
	GenFaker          GeneratorKind = "faker"
	GenLookup         GeneratorKind = "lookup"
	GenExpression     GeneratorKind = "expression"
	GenEnumList       GeneratorKind = "enum_list"
)

var validGeneratorKinds = map[GeneratorKind]bool{
	GenSequence: true, GenChoice: true, GenDistribution: true,
	GenDatetimeSeries: true, GenFaker: true, GenLookup: true,
	GenExpression: true, GenEnumList: true,
}

// ModifierKind enumerates the modifier pipeline variant set of spec
// section 4.4.
type ModifierKind string

const (
	ModMultiply    ModifierKind = "multiply"
	ModAdd         ModifierKind = "add"
	ModClamp       ModifierKind = "clamp"
	ModJitter      ModifierKind = "jitter"
	ModMapValues   ModifierKind = "map_values"
	ModSeasonality ModifierKind = "seasonality"
	ModTimeJitter  ModifierKind = "time_jitter"
	ModEffect      ModifierKind = "effect"
	ModOutliers    ModifierKind = "outliers"
)

var validModifierKinds = map[ModifierKind]bool{
	ModMultiply: true, ModAdd: true, ModClamp: true, ModJitter: true,
	ModMapValues: true, ModSeasonality: true, ModTimeJitter: true,
	ModEffect: true, ModOutliers: true,
}

// FanoutKind is the sum type of fanout distributions for fact nodes.
type FanoutKind string

const (
	FanoutPoisson FanoutKind = "poisson"
	FanoutUniform FanoutKind = "uniform"
)

// GeneratorSpec is a tagged variant: Kind selects which member of the
// generator sum type applies, Params carries that member's fields.
// Kind-specific extraction and validation lives beside each generator
// implementation in internal/generators, not here, so that adding a
// kind touches the dispatch site and nowhere else in this package.
type GeneratorSpec struct {
	Kind   GeneratorKind
	Params map[string]interface{}
}

// ModifierSpec is a tagged variant over the modifier pipeline kinds.
type ModifierSpec struct {
	Kind ModifierKind
	Args map[string]interface{}
}

// Fanout describes the per-driver-row child count distribution for a
// fact node, clamped to [Min, Max]; a Max of 0 leaves the count
// unbounded above.
type Fanout struct {
	Kind   FanoutKind
	Lambda float64 // poisson only
	Min    int
	Max    int
}

// Column is one field of a Node: a name, a logical type, nullability,
// exactly one generator and an ordered modifier pipeline.
type Column struct {
	Name      string
	Type      ColumnType
	Nullable  bool
	Generator GeneratorSpec
	Modifiers []ModifierSpec
}

// Node is one table in the schema.
type Node struct {
	ID             string
	Kind           NodeKind
	PrimaryKey     string
	RowCount       int // entity/vocab only; 0 means "use the default"
	Parents        []string
	Fanout         *Fanout
	Columns        []Column
	TableModifiers []ModifierSpec // fact-only; today only effect (fanout scaling)
}

// ColumnByName looks up a column by name within this node.
func (n *Node) ColumnByName(name string) (*Column, bool) {
	for i := range n.Columns {
		if n.Columns[i].Name == name {
			return &n.Columns[i], true
		}
	}
	return nil, false
}

// Timeframe is the dataset's global time window and sampling frequency.
type Timeframe struct {
	Start time.Time
	End   time.Time
	Freq  string
}

// Constraints bundles the declarative checks the Validator enforces.
type Constraints struct {
	Unique       []UniqueConstraint
	ForeignKeys  []ForeignKeyConstraint
	Ranges       []RangeConstraint
	Inequalities []InequalityConstraint
	Patterns     []PatternConstraint
	Enums        []EnumConstraint
}

type UniqueConstraint struct {
	Table   string
	Columns []string
}

type ForeignKeyConstraint struct {
	ChildTable   string
	ChildColumn  string
	ParentTable  string
	ParentColumn string
}

type RangeConstraint struct {
	Table  string
	Column string
	Lo, Hi float64
}

type InequalityConstraint struct {
	Table string
	ColA  string
	Op    string // <, <=, >, >=, =
	ColB  string
}

type PatternConstraint struct {
	Table   string
	Column  string
	Pattern string
}

type EnumConstraint struct {
	Table   string
	Column  string
	Values  []string
	Nullok  bool
}

// Targets bundles the declarative behavioral checks the Validator scores.
type Targets struct {
	WeekendShare    []WeekendShareTarget
	MeanInRange     []MeanInRangeTarget
	CompositeEffect []CompositeEffectTarget
}

type WeekendShareTarget struct {
	Table  string
	Column string
	Lo, Hi float64
}

type MeanInRangeTarget struct {
	Table  string
	Column string
	Lo, Hi float64
}

// CompositeInfluence names one seasonality/effect/outlier influence the
// composite-effect target expects to see reflected in the data.
type CompositeInfluence struct {
	Dimension string // hour, dow, month
	Weights   []float64
}

type CompositeEffectTarget struct {
	Table       string
	Column      string
	Influences  []CompositeInfluence
	MAETol      float64
	MAPETol     float64
}

// Metadata is the free-form dataset header.
type Metadata struct {
	Name string
}

// Dataset is the immutable, fully parsed and validated schema.
type Dataset struct {
	Version     string
	Metadata    Metadata
	Timeframe   Timeframe
	Nodes       []Node
	Constraints Constraints
	Targets     Targets
}

// NodeByID returns the node with the given id, or false if none exists.
func (d *Dataset) NodeByID(id string) (*Node, bool) {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i], true
		}
	}
	return nil, false
}
