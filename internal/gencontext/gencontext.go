// Package gencontext bundles the read-only state a generator or
// modifier needs beyond its own parameters: the tables finished so far
// (for lookup and effect references), the dataset timeframe, and the
// node/column currently being built, passed through every generator
// and modifier call the way a single shared engine value usually is,
// but carrying cross-table state instead of just a *rand.Rand.
package gencontext

import (
	"time"

	"github.com/datagen-io/datagen/internal/dataset"
	"github.com/datagen-io/datagen/internal/table"
)

// Context is passed by value (it holds only pointers and small fields)
// into every generator and modifier call.
type Context struct {
	// Tables holds every node built so far, plus the node currently
	// being built (registered before its first column runs, so columns
	// declared earlier in that node are visible). Read-only: generators
	// and modifiers return new values rather than mutating its columns.
	Tables *table.Dataset

	Start time.Time
	End   time.Time
	Freq  string

	Node   *dataset.Node
	Column *dataset.Column

	// Cancel is checked at level and column boundaries by the executor;
	// generators that loop internally (lookup retries, expression
	// evaluation) should also honor it when a single column could run
	// long.
	Cancel <-chan struct{}
}

// Cancelled reports whether the run has been asked to stop.
func (c *Context) Cancelled() bool {
	if c.Cancel == nil {
		return false
	}
	select {
	case <-c.Cancel:
		return true
	default:
		return false
	}
}

// WithColumn returns a shallow copy of c scoped to a different column
// of the same node, used when a modifier pipeline hands off between
// stages.
func (c Context) WithColumn(col *dataset.Column) Context {
	c.Column = col
	return c
}
