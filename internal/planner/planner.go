// Package planner computes a generation order for a dataset's nodes:
// a sequence of levels where every node's parents, lookup targets and
// effect targets already sit in an earlier level. Tables are sorted by
// foreign-key relation using Kahn's algorithm, extended here to also
// account for lookup-generator and effect-modifier references, not
// just declared parent edges.
package planner

import (
	"fmt"
	"sort"

	"github.com/datagen-io/datagen/internal/dataset"
)

// Level is one batch of node ids that can be generated once every
// earlier level has finished; order within a level is the dataset's
// declared document order, which is the order the executor builds them in.
type Level []string

// PlannerErrorKind classifies why planning failed.
type PlannerErrorKind string

const (
	// CycleDetected marks a dependency cycle among nodes.
	CycleDetected PlannerErrorKind = "CycleDetected"
	// BadReference marks a dependency edge pointing at a node absent
	// from the dataset.
	BadReference PlannerErrorKind = "BadReference"
)

// PlannerError is raised when the dependency graph cannot be ordered.
type PlannerError struct {
	Kind   PlannerErrorKind
	Nodes  []string
	Detail string
}

func (e *PlannerError) Error() string {
	return fmt.Sprintf("planner error [%s]: %s (nodes: %v)", e.Kind, e.Detail, e.Nodes)
}

// Plan returns the node ids of ds grouped into dependency levels.
func Plan(ds *dataset.Dataset) ([]Level, error) {
	order := make(map[string]int, len(ds.Nodes))
	for i, n := range ds.Nodes {
		order[n.ID] = i
	}

	edges := make(map[string]map[string]bool, len(ds.Nodes)) // edge[a][b]: a must come before b
	indegree := make(map[string]int, len(ds.Nodes))
	for _, n := range ds.Nodes {
		indegree[n.ID] = 0
	}

	addEdge := func(from, to string) error {
		if _, ok := ds.NodeByID(from); !ok {
			return &PlannerError{Kind: BadReference, Nodes: []string{from, to}, Detail: "dependency references a node that does not exist"}
		}
		if from == to {
			return nil
		}
		if edges[from] == nil {
			edges[from] = make(map[string]bool)
		}
		if !edges[from][to] {
			edges[from][to] = true
			indegree[to]++
		}
		return nil
	}

	for _, n := range ds.Nodes {
		for _, p := range n.Parents {
			if err := addEdge(p, n.ID); err != nil {
				return nil, err
			}
		}
		for _, col := range n.Columns {
			if col.Generator.Kind == dataset.GenLookup {
				if from, ok := col.Generator.Params["from"].(string); ok {
					table, _ := splitTableColumn(from)
					if table != "" && table != n.ID {
						if err := addEdge(table, n.ID); err != nil {
							return nil, err
						}
					}
				}
			}
		}
		for _, m := range allModifiers(&n) {
			if m.Kind == dataset.ModEffect {
				if tbl, ok := m.Args["effect_table"].(string); ok && tbl != "" {
					if err := addEdge(tbl, n.ID); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	remaining := indegree
	var levels []Level
	processed := 0

	for processed < len(ds.Nodes) {
		var ready []string
		for id, deg := range remaining {
			if deg == 0 {
				ready = append(ready, id)
			}
		}
		if len(ready) == 0 {
			var stuck []string
			for id := range remaining {
				stuck = append(stuck, id)
			}
			sort.Strings(stuck)
			return nil, &PlannerError{Kind: CycleDetected, Nodes: stuck, Detail: "dependency graph has a cycle"}
		}

		sort.Slice(ready, func(i, j int) bool { return order[ready[i]] < order[ready[j]] })

		level := Level(ready)
		levels = append(levels, level)

		for _, id := range ready {
			delete(remaining, id)
			for to := range edges[id] {
				if _, ok := remaining[to]; ok {
					remaining[to]--
				}
			}
		}
		processed += len(ready)
	}

	return levels, nil
}

func allModifiers(n *dataset.Node) []dataset.ModifierSpec {
	mods := append([]dataset.ModifierSpec{}, n.TableModifiers...)
	for _, c := range n.Columns {
		mods = append(mods, c.Modifiers...)
	}
	return mods
}

func splitTableColumn(ref string) (table, column string) {
	for i := len(ref) - 1; i >= 0; i-- {
		if ref[i] == '.' {
			return ref[:i], ref[i+1:]
		}
	}
	return "", ""
}
