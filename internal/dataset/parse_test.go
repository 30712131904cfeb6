package dataset

import "testing"

func minimalDocument(extraNode string) string {
	doc := `
version: "1"
metadata:
  name: test
timeframe:
  start: "2024-01-01T00:00:00Z"
  end: "2024-12-31T00:00:00Z"
  freq: daily
nodes:
  - id: customers
    kind: entity
    primary_key: id
    row_count: 10
    columns:
      - name: id
        type: int
        generator:
          kind: sequence
          start: 1
          step: 1
      - name: name
        type: string
        generator:
          kind: faker
          method: first_name
`
	if extraNode != "" {
		doc += extraNode
	}
	return doc
}

func TestParseValidDocument(t *testing.T) {
	ds, err := Parse([]byte(minimalDocument("")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ds.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(ds.Nodes))
	}
	if ds.Nodes[0].RowCount != 10 {
		t.Errorf("expected row_count 10, got %d", ds.Nodes[0].RowCount)
	}
	if !ds.Timeframe.End.After(ds.Timeframe.Start) {
		t.Errorf("expected end after start")
	}
}

func TestParseRejectsUnknownTopLevelField(t *testing.T) {
	doc := minimalDocument("") + "bogus_field: true\n"
	_, err := Parse([]byte(doc))
	if err == nil {
		t.Fatalf("expected an error for an unknown field")
	}
}

func TestParseRejectsDuplicateNodeID(t *testing.T) {
	extra := `
  - id: customers
    kind: entity
    primary_key: id
    row_count: 5
    columns:
      - name: id
        type: int
        generator:
          kind: sequence
          start: 1
          step: 1
`
	_, err := Parse([]byte(minimalDocument(extra)))
	if err == nil {
		t.Fatalf("expected an error for a duplicate node id")
	}
	se, ok := err.(*SchemaError)
	if !ok {
		t.Fatalf("expected a *SchemaError, got %T", err)
	}
	if se.Kind != DuplicateId {
		t.Errorf("expected DuplicateId, got %v", se.Kind)
	}
}

func TestParseRejectsDuplicateColumnName(t *testing.T) {
	doc := `
version: "1"
metadata:
  name: test
timeframe:
  start: "2024-01-01T00:00:00Z"
  end: "2024-12-31T00:00:00Z"
  freq: daily
nodes:
  - id: customers
    kind: entity
    primary_key: id
    row_count: 10
    columns:
      - name: id
        type: int
        generator:
          kind: sequence
          start: 1
          step: 1
      - name: id
        type: int
        generator:
          kind: sequence
          start: 1
          step: 1
`
	_, err := Parse([]byte(doc))
	if err == nil {
		t.Fatalf("expected an error for a duplicate column name")
	}
}

func TestParseRejectsFactNodeWithNoParents(t *testing.T) {
	extra := `
  - id: orders
    kind: fact
    primary_key: id
    fanout:
      kind: poisson
      lambda: 2.0
      min: 0
      max: 10
    columns:
      - name: id
        type: int
        generator:
          kind: sequence
          start: 1
          step: 1
`
	_, err := Parse([]byte(minimalDocument(extra)))
	if err == nil {
		t.Fatalf("expected an error for a fact node with no parents")
	}
	se, ok := err.(*SchemaError)
	if !ok || se.Kind != BadParameter {
		t.Fatalf("expected BadParameter SchemaError, got %v", err)
	}
}

func TestParseRejectsFactNodeWithNoFanout(t *testing.T) {
	extra := `
  - id: orders
    kind: fact
    primary_key: id
    parents: [customers]
    columns:
      - name: id
        type: int
        generator:
          kind: sequence
          start: 1
          step: 1
`
	_, err := Parse([]byte(minimalDocument(extra)))
	if err == nil {
		t.Fatalf("expected an error for a fact node missing fanout")
	}
}

func TestParseAcceptsValidFactNode(t *testing.T) {
	extra := `
  - id: orders
    kind: fact
    primary_key: id
    parents: [customers]
    fanout:
      kind: poisson
      lambda: 3.0
      min: 0
      max: 20
    columns:
      - name: id
        type: int
        generator:
          kind: sequence
          start: 1
          step: 1
      - name: customer_id
        type: int
        generator:
          kind: lookup
          from: customers.id
`
	ds, err := Parse([]byte(minimalDocument(extra)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	order, ok := ds.NodeByID("orders")
	if !ok {
		t.Fatalf("expected to find orders node")
	}
	if order.Fanout == nil || order.Fanout.Kind != FanoutPoisson {
		t.Fatalf("expected a poisson fanout, got %+v", order.Fanout)
	}
}

func TestParseRejectsVocabWithEmptyEnumList(t *testing.T) {
	extra := `
  - id: statuses
    kind: vocab
    primary_key: id
    columns:
      - name: id
        type: string
        generator:
          kind: enum_list
          values: []
`
	_, err := Parse([]byte(minimalDocument(extra)))
	if err == nil {
		t.Fatalf("expected an error for an empty enum_list on a vocab node")
	}
}

func TestParseInfersVocabRowCountFromEnumList(t *testing.T) {
	extra := `
  - id: statuses
    kind: vocab
    primary_key: id
    columns:
      - name: id
        type: string
        generator:
          kind: enum_list
          values: ["new", "shipped", "cancelled"]
`
	ds, err := Parse([]byte(minimalDocument(extra)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	statuses, ok := ds.NodeByID("statuses")
	if !ok {
		t.Fatalf("expected to find statuses node")
	}
	if statuses.RowCount != 3 {
		t.Errorf("expected row count inferred to 3, got %d", statuses.RowCount)
	}
}

func TestParseRejectsUnknownGeneratorKind(t *testing.T) {
	doc := `
version: "1"
metadata:
  name: test
timeframe:
  start: "2024-01-01T00:00:00Z"
  end: "2024-12-31T00:00:00Z"
  freq: daily
nodes:
  - id: customers
    kind: entity
    primary_key: id
    row_count: 10
    columns:
      - name: id
        type: int
        generator:
          kind: teleport
`
	_, err := Parse([]byte(doc))
	if err == nil {
		t.Fatalf("expected an error for an unknown generator kind")
	}
}

func TestParseRejectsGeneratorMissingRequiredParam(t *testing.T) {
	doc := `
version: "1"
metadata:
  name: test
timeframe:
  start: "2024-01-01T00:00:00Z"
  end: "2024-12-31T00:00:00Z"
  freq: daily
nodes:
  - id: customers
    kind: entity
    primary_key: id
    row_count: 10
    columns:
      - name: id
        type: int
        generator:
          kind: sequence
`
	_, err := Parse([]byte(doc))
	if err == nil {
		t.Fatalf("expected an error for a sequence generator missing start/step")
	}
}

func TestParseRejectsEffectTargetingSelf(t *testing.T) {
	extra := `
  - id: orders
    kind: fact
    primary_key: id
    parents: [customers]
    fanout:
      kind: uniform
      min: 1
      max: 5
    modifiers:
      - kind: effect
        effect_table: orders
        local_key: id
        target_key: id
        dimension: tier
    columns:
      - name: id
        type: int
        generator:
          kind: sequence
          start: 1
          step: 1
`
	_, err := Parse([]byte(minimalDocument(extra)))
	if err == nil {
		t.Fatalf("expected an error for an effect_table targeting its own node")
	}
	se, ok := err.(*SchemaError)
	if !ok || se.Kind != BadReference {
		t.Fatalf("expected BadReference SchemaError, got %v", err)
	}
}

func TestParseRejectsEffectTargetingMissingTable(t *testing.T) {
	extra := `
  - id: orders
    kind: fact
    primary_key: id
    parents: [customers]
    fanout:
      kind: uniform
      min: 1
      max: 5
    modifiers:
      - kind: effect
        effect_table: ghost
        local_key: id
        target_key: id
        dimension: tier
    columns:
      - name: id
        type: int
        generator:
          kind: sequence
          start: 1
          step: 1
`
	_, err := Parse([]byte(minimalDocument(extra)))
	if err == nil {
		t.Fatalf("expected an error for an effect_table referencing a non-existent node")
	}
}

func TestParseRejectsForeignKeyToMissingTable(t *testing.T) {
	doc := minimalDocument("") + `
constraints:
  foreign_keys:
    - child_table: customers
      child_column: id
      parent_table: ghost
      parent_column: id
`
	_, err := Parse([]byte(doc))
	if err == nil {
		t.Fatalf("expected an error for a foreign key referencing a non-existent parent table")
	}
}

func TestParseAppliesCompositeEffectToleranceDefaults(t *testing.T) {
	doc := minimalDocument("") + `
targets:
  composite_effect:
    - table: customers
      column: name
      influences:
        - dimension: hour
          weights: [1.0, 1.0]
`
	ds, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ds.Targets.CompositeEffect) != 1 {
		t.Fatalf("expected one composite effect target")
	}
	got := ds.Targets.CompositeEffect[0]
	if got.MAETol != 0.1 {
		t.Errorf("expected default MAE tolerance 0.1, got %v", got.MAETol)
	}
	if got.MAPETol != 0.15 {
		t.Errorf("expected default MAPE tolerance 0.15, got %v", got.MAPETol)
	}
}

func TestParseRejectsMissingTimeframeFreq(t *testing.T) {
	doc := `
version: "1"
metadata:
  name: test
timeframe:
  start: "2024-01-01T00:00:00Z"
  end: "2024-12-31T00:00:00Z"
nodes:
  - id: customers
    kind: entity
    primary_key: id
    row_count: 10
    columns:
      - name: id
        type: int
        generator:
          kind: sequence
          start: 1
          step: 1
`
	_, err := Parse([]byte(doc))
	if err == nil {
		t.Fatalf("expected an error for a missing timeframe.freq")
	}
}

func TestParseRejectsEndBeforeStart(t *testing.T) {
	doc := `
version: "1"
metadata:
  name: test
timeframe:
  start: "2024-12-31T00:00:00Z"
  end: "2024-01-01T00:00:00Z"
  freq: daily
nodes:
  - id: customers
    kind: entity
    primary_key: id
    row_count: 10
    columns:
      - name: id
        type: int
        generator:
          kind: sequence
          start: 1
          step: 1
`
	_, err := Parse([]byte(doc))
	if err == nil {
		t.Fatalf("expected an error when timeframe end is not after start")
	}
}
