package generators

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
		End:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestGenerateSequence(t *testing.T) {
	values, err := Generate(dataset.GeneratorSpec{
		Kind:   dataset.GenSequence,
		Params: map[string]interface{}{"start": 10, "step": 5},
	}, 4, rand.New(rand.NewPCG(1, 2)), testContext("t", "c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []interface{}{int64(10), int64(15), int64(20), int64(25)}
	for i, w := range want {
		if values[i] != w {
			t.Errorf("index %d: got %v, want %v", i, values[i], w)
		}
	}
}

func TestGenerateChoiceUniform(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	values, err := Generate(dataset.GeneratorSpec{
		Kind: dataset.GenChoice,
		Params: map[string]interface{}{
			"choices": []interface{}{"a", "b", "c"},
		},
	}, 100, rng, testContext("t", "c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values) != 100 {
		t.Fatalf("expected 100 values, got %d", len(values))
	}
	for _, v := range values {
		s := v.(string)
		if s != "a" && s != "b" && s != "c" {
			t.Fatalf("unexpected choice value: %v", v)
		}
	}
}

func TestGenerateChoiceRejectsBadMode(t *testing.T) {
	_, err := Generate(dataset.GeneratorSpec{
		Kind: dataset.GenChoice,
		Params: map[string]interface{}{
			"choices": []interface{}{"a", "b"},
			"mode":    "bogus",
		},
	}, 10, rand.New(rand.NewPCG(1, 2)), testContext("t", "c"))
	if err == nil {
		t.Fatalf("expected an error for unknown mode")
	}
}

func TestGenerateEnumListCycles(t *testing.T) {
	values, err := Generate(dataset.GeneratorSpec{
		Kind:   dataset.GenEnumList,
		Params: map[string]interface{}{"values": []interface{}{"x", "y"}},
	}, 5, rand.New(rand.NewPCG(1, 2)), testContext("t", "c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []interface{}{"x", "y", "x", "y", "x"}
	for i, w := range want {
		if values[i] != w {
			t.Errorf("index %d: got %v, want %v", i, values[i], w)
		}
	}
}

func TestGenerateDistributionNormalRespectsClamp(t *testing.T) {
	values, err := Generate(dataset.GeneratorSpec{
		Kind: dataset.GenDistribution,
		Params: map[string]interface{}{
			"type": "normal", "mean": 0.0, "stddev": 100.0, "min": -1.0, "max": 1.0,
		},
	}, 200, rand.New(rand.NewPCG(1, 2)), testContext("t", "c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range values {
		f := v.(float64)
		if f < -1.0 || f > 1.0 {
			t.Fatalf("value %v escaped clamp bounds", f)
		}
	}
}

func TestGenerateExpressionArithmetic(t *testing.T) {
	ctx := testContext("orders", "total")
	tbl := &table.Table{Name: "orders", RowCount: 2, Columns: []table.Column{
		{Name: "price", Values: []interface{}{2.0, 3.0}},
		{Name: "quantity", Values: []interface{}{5.0, 4.0}},
	}}
	ctx.Tables.Add(tbl)

	values, err := Generate(dataset.GeneratorSpec{
		Kind:   dataset.GenExpression,
		Params: map[string]interface{}{"code": "price * quantity"},
	}, 2, rand.New(rand.NewPCG(1, 2)), ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if values[0].(float64) != 10.0 || values[1].(float64) != 12.0 {
		t.Fatalf("unexpected values: %v", values)
	}
}

func TestGenerateLookupAvoidsSelfPointing(t *testing.T) {
	ctx := testContext("employees", "manager_id")
	tbl := &table.Table{Name: "employees", RowCount: 3, Columns: []table.Column{
		{Name: "id", Values: []interface{}{int64(0), int64(1), int64(2)}},
	}}
	ctx.Tables.Add(tbl)

	rng := rand.New(rand.NewPCG(7, 9))
	values, err := Generate(dataset.GeneratorSpec{
		Kind:   dataset.GenLookup,
		Params: map[string]interface{}{"from": "employees.id"},
	}, 3, rng, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range values {
		if v.(int64) == int64(i) {
			t.Fatalf("row %d points at itself", i)
		}
	}
}

func TestGenerateLookupHonorsOnJoin(t *testing.T) {
	ctx := testContext("orders", "promo_id")
	regions := &table.Table{Name: "regions", RowCount: 4, Columns: []table.Column{
		{Name: "id", Values: []interface{}{int64(1), int64(2), int64(3), int64(4)}},
		{Name: "region", Values: []interface{}{"east", "east", "west", "west"}},
	}}
	ctx.Tables.Add(regions)
	orders := &table.Table{Name: "orders", RowCount: 2, Columns: []table.Column{
		{Name: "region", Values: []interface{}{"west", "east"}},
	}}
	ctx.Tables.Add(orders)

	rng := rand.New(rand.NewPCG(3, 4))
	values, err := Generate(dataset.GeneratorSpec{
		Kind: dataset.GenLookup,
		Params: map[string]interface{}{
			"from": "regions.id",
			"on":   map[string]interface{}{"region": "region"},
		},
	}, 2, rng, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if values[0].(int64) != int64(3) && values[0].(int64) != int64(4) {
		t.Fatalf("row 0 (west) should resolve to a west region id, got %v", values[0])
	}
	if values[1].(int64) != int64(1) && values[1].(int64) != int64(2) {
		t.Fatalf("row 1 (east) should resolve to an east region id, got %v", values[1])
	}
}

func TestGenerateLookupOnNoMatchFailsWhenNotNullable(t *testing.T) {
	ctx := testContext("orders", "promo_id")
	regions := &table.Table{Name: "regions", RowCount: 1, Columns: []table.Column{
		{Name: "id", Values: []interface{}{int64(1)}},
		{Name: "region", Values: []interface{}{"east"}},
	}}
	ctx.Tables.Add(regions)
	orders := &table.Table{Name: "orders", RowCount: 1, Columns: []table.Column{
		{Name: "region", Values: []interface{}{"west"}},
	}}
	ctx.Tables.Add(orders)

	_, err := Generate(dataset.GeneratorSpec{
		Kind: dataset.GenLookup,
		Params: map[string]interface{}{
			"from": "regions.id",
			"on":   map[string]interface{}{"region": "region"},
		},
	}, 1, rand.New(rand.NewPCG(1, 2)), ctx)
	if err == nil {
		t.Fatalf("expected a LookupError when no parent row matches the on keys")
	}
	if _, ok := err.(*LookupError); !ok {
		t.Fatalf("expected *LookupError, got %T: %v", err, err)
	}
}

func TestGenerateChoiceResolvesTableColumnReference(t *testing.T) {
	ctx := testContext("orders", "region")
	customers := &table.Table{Name: "customers", RowCount: 3, Columns: []table.Column{
		{Name: "region", Values: []interface{}{"east", "west", "east"}},
	}}
	ctx.Tables.Add(customers)

	values, err := Generate(dataset.GeneratorSpec{
		Kind:   dataset.GenChoice,
		Params: map[string]interface{}{"choices": "customers.region"},
	}, 10, rand.New(rand.NewPCG(1, 2)), ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range values {
		s := v.(string)
		if s != "east" && s != "west" {
			t.Fatalf("unexpected choice value resolved from reference: %v", v)
		}
	}
}

func TestGenerateDistributionLognormalRequiresClamp(t *testing.T) {
	_, err := Generate(dataset.GeneratorSpec{
		Kind:   dataset.GenDistribution,
		Params: map[string]interface{}{"type": "lognormal", "mean": 0.0, "stddev": 0.5},
	}, 10, rand.New(rand.NewPCG(1, 2)), testContext("t", "c"))
	if err == nil {
		t.Fatalf("expected an error when lognormal omits clamp bounds")
	}
}

func TestGenerateDistributionLognormalRespectsClamp(t *testing.T) {
	values, err := Generate(dataset.GeneratorSpec{
		Kind: dataset.GenDistribution,
		Params: map[string]interface{}{
			"type": "lognormal", "mean": 0.0, "stddev": 1.0, "min": 0.1, "max": 5.0,
		},
	}, 100, rand.New(rand.NewPCG(1, 2)), testContext("t", "c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range values {
		f := v.(float64)
		if f < 0.1 || f > 5.0 {
			t.Fatalf("value %v escaped clamp bounds", f)
		}
	}
}

func TestGenerateDistributionNormalRequiresClamp(t *testing.T) {
	_, err := Generate(dataset.GeneratorSpec{
		Kind:   dataset.GenDistribution,
		Params: map[string]interface{}{"type": "normal", "mean": 0.0, "stddev": 1.0},
	}, 10, rand.New(rand.NewPCG(1, 2)), testContext("t", "c"))
	if err == nil {
		t.Fatalf("expected an error when normal omits clamp bounds")
	}
}

func TestGenerateExpressionComparison(t *testing.T) {
	ctx := testContext("customers", "is_adult")
	tbl := &table.Table{Name: "customers", RowCount: 2, Columns: []table.Column{
		{Name: "age", Values: []interface{}{17.0, 21.0}},
	}}
	ctx.Tables.Add(tbl)

	values, err := Generate(dataset.GeneratorSpec{
		Kind:   dataset.GenExpression,
		Params: map[string]interface{}{"code": "age >= 18"},
	}, 2, rand.New(rand.NewPCG(1, 2)), ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if values[0].(bool) != false || values[1].(bool) != true {
		t.Fatalf("unexpected comparison results: %v", values)
	}
}

func TestGenerateFakerResolvesLocaleFromCountryCode(t *testing.T) {
	ctx := testContext("customers", "first_name")
	tbl := &table.Table{Name: "customers", RowCount: 2, Columns: []table.Column{
		{Name: "country", Values: []interface{}{"FR", "US"}},
	}}
	ctx.Tables.Add(tbl)

	values, err := Generate(dataset.GeneratorSpec{
		Kind: dataset.GenFaker,
		Params: map[string]interface{}{
			"method":      "first_name",
			"locale_from": "country",
		},
	}, 2, rand.New(rand.NewPCG(1, 2)), ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	frenchNames := localeNamePools["fr"].FirstNames
	found := false
	for _, n := range frenchNames {
		if values[0] == n {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected row 0 (FR) to draw from the French first-name pool, got %v", values[0])
	}
}
