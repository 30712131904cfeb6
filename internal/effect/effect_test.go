package effect

import (
	"math"
	"testing"
	"time"

	"github.com/datagen-io/datagen/internal/table"
)

func TestResolveJoinsAndMultiplies(t *testing.T) {
	tables := table.NewDataset()
	promos := &table.Table{Name: "promos", RowCount: 3, Columns: []table.Column{
		{Name: "id", Values: []interface{}{int64(1), int64(2), int64(3)}},
		{Name: "mult", Values: []interface{}{2.0, 1.5, 3.0}},
	}}
	tables.Add(promos)

	spec := Spec{
		Table: "promos", On: map[string]string{"promo_id": "id"},
		Field: "mult", Op: "mul", Default: 1.0,
	}

	drivers := []Driver{
		{Keys: map[string]interface{}{"promo_id": int64(1)}},
		{Keys: map[string]interface{}{"promo_id": int64(2)}},
		{Keys: map[string]interface{}{"promo_id": int64(99)}}, // no match -> default
	}
	multipliers, err := Resolve(spec, tables, drivers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{2.0, 1.5, 1.0}
	for i, w := range want {
		if multipliers[i] != w {
			t.Errorf("index %d: got %v, want %v", i, multipliers[i], w)
		}
	}
}

func TestResolveSumsMultipleMatchesForAdd(t *testing.T) {
	tables := table.NewDataset()
	events := &table.Table{Name: "events", RowCount: 2, Columns: []table.Column{
		{Name: "region", Values: []interface{}{"west", "west"}},
		{Name: "bump", Values: []interface{}{0.1, 0.2}},
	}}
	tables.Add(events)

	spec := Spec{Table: "events", On: map[string]string{"region": "region"}, Field: "bump", Op: "add", Default: 0.0}
	drivers := []Driver{{Keys: map[string]interface{}{"region": "west"}}}
	multipliers, err := Resolve(spec, tables, drivers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(multipliers[0]-0.3) > 1e-9 {
		t.Fatalf("expected summed contribution 0.3, got %v", multipliers[0])
	}
}

func TestResolveRespectsWindow(t *testing.T) {
	tables := table.NewDataset()
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	promos := &table.Table{Name: "promos", RowCount: 1, Columns: []table.Column{
		{Name: "start", Values: []interface{}{jan}},
		{Name: "end", Values: []interface{}{feb}},
		{Name: "mult", Values: []interface{}{2.0}},
	}}
	tables.Add(promos)

	spec := Spec{Table: "promos", On: map[string]string{}, WindowStartCol: "start", WindowEndCol: "end", Field: "mult", Op: "mul", Default: 1.0}

	inside := []Driver{{Keys: map[string]interface{}{}, Timestamp: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)}}
	outside := []Driver{{Keys: map[string]interface{}{}, Timestamp: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}}

	got, err := Resolve(spec, tables, inside)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != 2.0 {
		t.Fatalf("expected in-window multiplier 2.0, got %v", got[0])
	}

	got, err = Resolve(spec, tables, outside)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != 1.0 {
		t.Fatalf("expected out-of-window default 1.0, got %v", got[0])
	}
}

func TestResolveRejectsMissingTable(t *testing.T) {
	tables := table.NewDataset()
	spec := Spec{Table: "ghost"}
	_, err := Resolve(spec, tables, []Driver{{Keys: map[string]interface{}{}}})
	if err == nil {
		t.Fatalf("expected an error for missing table")
	}
}
