package planner

import (
	"testing"

	"github.com/datagen-io/datagen/internal/dataset"
)

func col(name string) dataset.Column {
	return dataset.Column{
		Name: name,
		Type: dataset.TypeInt,
		Generator: dataset.GeneratorSpec{
			Kind:   dataset.GenSequence,
			Params: map[string]interface{}{"start": 1, "step": 1},
		},
	}
}

func TestPlanOrdersByParent(t *testing.T) {
	ds := &dataset.Dataset{
		Nodes: []dataset.Node{
			{ID: "orders", Kind: dataset.NodeFact, PrimaryKey: "id", Parents: []string{"customers"},
				Fanout:  &dataset.Fanout{Kind: dataset.FanoutUniform, Min: 1, Max: 3},
				Columns: []dataset.Column{col("id")}},
			{ID: "customers", Kind: dataset.NodeEntity, PrimaryKey: "id", RowCount: 10,
				Columns: []dataset.Column{col("id")}},
		},
	}

	levels, err := Plan(ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(levels) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(levels))
	}
	if levels[0][0] != "customers" {
		t.Fatalf("expected customers first, got %v", levels[0])
	}
	if levels[1][0] != "orders" {
		t.Fatalf("expected orders second, got %v", levels[1])
	}
}

func TestPlanDetectsCycle(t *testing.T) {
	ds := &dataset.Dataset{
		Nodes: []dataset.Node{
			{ID: "a", Kind: dataset.NodeFact, PrimaryKey: "id", Parents: []string{"b"},
				Fanout: &dataset.Fanout{Kind: dataset.FanoutUniform, Min: 1, Max: 1}, Columns: []dataset.Column{col("id")}},
			{ID: "b", Kind: dataset.NodeFact, PrimaryKey: "id", Parents: []string{"a"},
				Fanout: &dataset.Fanout{Kind: dataset.FanoutUniform, Min: 1, Max: 1}, Columns: []dataset.Column{col("id")}},
		},
	}

	_, err := Plan(ds)
	if err == nil {
		t.Fatalf("expected a cycle error")
	}
	pe, ok := err.(*PlannerError)
	if !ok || pe.Kind != CycleDetected {
		t.Fatalf("expected CycleDetected, got %v", err)
	}
}

func TestPlanOrdersByLookup(t *testing.T) {
	ds := &dataset.Dataset{
		Nodes: []dataset.Node{
			{ID: "orders", Kind: dataset.NodeEntity, PrimaryKey: "id", RowCount: 5, Columns: []dataset.Column{
				col("id"),
				{Name: "status", Type: dataset.TypeString, Generator: dataset.GeneratorSpec{
					Kind:   dataset.GenLookup,
					Params: map[string]interface{}{"from": "statuses.name"},
				}},
			}},
			{ID: "statuses", Kind: dataset.NodeVocab, PrimaryKey: "name", RowCount: 3, Columns: []dataset.Column{col("name")}},
		},
	}

	levels, err := Plan(ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if levels[0][0] != "statuses" {
		t.Fatalf("expected statuses before orders, got %v", levels)
	}
}

func TestPlanRejectsBadReference(t *testing.T) {
	ds := &dataset.Dataset{
		Nodes: []dataset.Node{
			{ID: "orders", Kind: dataset.NodeFact, PrimaryKey: "id", Parents: []string{"ghost"},
				Fanout: &dataset.Fanout{Kind: dataset.FanoutUniform, Min: 1, Max: 1}, Columns: []dataset.Column{col("id")}},
		},
	}

	_, err := Plan(ds)
	if err == nil {
		t.Fatalf("expected a bad reference error")
	}
	pe, ok := err.(*PlannerError)
	if !ok || pe.Kind != BadReference {
		t.Fatalf("expected BadReference, got %v", err)
	}
}
