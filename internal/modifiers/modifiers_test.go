package modifiers

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/datagen-io/datagen/internal/dataset"
	"github.com/datagen-io/datagen/internal/gencontext"
	"github.com/datagen-io/datagen/internal/table"
)

func testContext(nodeID, colName string) gencontext.Context {
	node := &dataset.Node{ID: nodeID}
	col := &dataset.Column{Name: colName}
	return gencontext.Context{
		Tables: table.NewDataset(),
		Node:   node,
		Column: col,
		Start:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestApplyMultiply(t *testing.T) {
	out, err := Apply(dataset.ModifierSpec{Kind: dataset.ModMultiply, Args: map[string]interface{}{"factor": 2.0}},
		[]interface{}{1.0, 2.0, 3.0}, rand.New(rand.NewPCG(1, 2)), testContext("t", "c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{2.0, 4.0, 6.0}
	for i, w := range want {
		if out[i].(float64) != w {
			t.Errorf("index %d: got %v, want %v", i, out[i], w)
		}
	}
}

func TestApplyClampBoundsValues(t *testing.T) {
	out, err := Apply(dataset.ModifierSpec{Kind: dataset.ModClamp, Args: map[string]interface{}{"min": 0.0, "max": 10.0}},
		[]interface{}{-5.0, 5.0, 50.0}, rand.New(rand.NewPCG(1, 2)), testContext("t", "c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0.0, 5.0, 10.0}
	for i, w := range want {
		if out[i].(float64) != w {
			t.Errorf("index %d: got %v, want %v", i, out[i], w)
		}
	}
}

func TestApplyTimeJitterClampsToWindow(t *testing.T) {
	ctx := testContext("t", "c")
	values := []interface{}{ctx.Start, ctx.End}
	out, err := Apply(dataset.ModifierSpec{Kind: dataset.ModTimeJitter, Args: map[string]interface{}{"stddev_seconds": 1e9}},
		values, rand.New(rand.NewPCG(1, 2)), ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range out {
		ts := v.(time.Time)
		if ts.Before(ctx.Start) || ts.After(ctx.End) {
			t.Fatalf("jittered timestamp %v escaped window [%v, %v]", ts, ctx.Start, ctx.End)
		}
	}
}

func TestApplyMapValuesFallsBackToDefault(t *testing.T) {
	out, err := Apply(dataset.ModifierSpec{Kind: dataset.ModMapValues, Args: map[string]interface{}{
		"mapping": map[string]interface{}{"US": "North America"},
		"default": "Other",
	}}, []interface{}{"US", "FR"}, rand.New(rand.NewPCG(1, 2)), testContext("t", "c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] != "North America" || out[1] != "Other" {
		t.Fatalf("unexpected mapping result: %v", out)
	}
}

func TestApplyEffectScalesByJoinedWeight(t *testing.T) {
	ctx := testContext("orders", "amount")
	promos := &table.Table{Name: "promos", RowCount: 1, Columns: []table.Column{
		{Name: "id", Values: []interface{}{int64(1)}},
		{Name: "mult", Values: []interface{}{2.0}},
	}}
	ctx.Tables.Add(promos)
	orders := &table.Table{Name: "orders", RowCount: 1, Columns: []table.Column{
		{Name: "promo_id", Values: []interface{}{int64(1)}},
	}}
	ctx.Tables.Add(orders)

	out, err := Apply(dataset.ModifierSpec{Kind: dataset.ModEffect, Args: map[string]interface{}{
		"effect_table": "promos",
		"on":           map[string]interface{}{"promo_id": "id"},
		"map":          map[string]interface{}{"field": "mult", "op": "mul", "default": 1.0},
	}}, []interface{}{10.0}, rand.New(rand.NewPCG(1, 2)), ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].(float64) != 20.0 {
		t.Fatalf("expected effect-scaled value 20.0, got %v", out[0])
	}
}

func TestApplyOutliersSpikesOrDropsByMagnitude(t *testing.T) {
	values := make([]interface{}, 200)
	for i := range values {
		values[i] = 10.0
	}

	out, err := Apply(dataset.ModifierSpec{Kind: dataset.ModOutliers, Args: map[string]interface{}{
		"rate": 1.0,
		"magnitude": map[string]interface{}{
			"type": "uniform", "min": 2.0, "max": 5.0,
		},
	}}, values, rand.New(rand.NewPCG(1, 2)), testContext("t", "c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, v := range out {
		f := v.(float64)
		if f == 10.0 {
			t.Fatalf("index %d: rate=1.0 should always replace the value, got unchanged %v", i, f)
		}
		// Every replacement is either a spike (10*[2,5]) or a drop (10/[2,5]).
		if !((f >= 20.0 && f <= 50.0) || (f >= 2.0 && f <= 5.0)) {
			t.Fatalf("index %d: value %v outside spike/drop range", i, f)
		}
	}
}

func TestApplyOutliersRejectsMissingMagnitude(t *testing.T) {
	_, err := Apply(dataset.ModifierSpec{Kind: dataset.ModOutliers, Args: map[string]interface{}{"rate": 0.5}},
		[]interface{}{1.0}, rand.New(rand.NewPCG(1, 2)), testContext("t", "c"))
	if err == nil {
		t.Fatalf("expected an error when no magnitude distribution or legacy factor is declared")
	}
}
