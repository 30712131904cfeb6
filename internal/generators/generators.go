// Package generators implements the eight-member generator sum type as
// a dispatch function over dataset.GeneratorKind, rather than an open
// registry of named plugin functions. Tagged variants with exhaustive
// matching are favored over an open-ended registry surface, so adding
// a kind here means adding a case to Generate and a new file beside
// it, not registering a callback.
//
// Every generator returns exactly rowCount values, honoring the
// column's declared type only loosely — final casting and nullability
// enforcement is the executor's job, not the generator's.
package generators

import (
	"math/rand/v2"

	"github.com/datagen-io/datagen/internal/dataset"
	"github.com/datagen-io/datagen/internal/gencontext"
)

// Generate dispatches to the implementation for spec.Kind and returns
// rowCount values for ctx.Column.
func Generate(spec dataset.GeneratorSpec, rowCount int, rng *rand.Rand, ctx gencontext.Context) ([]interface{}, error) {
	switch spec.Kind {
	case dataset.GenSequence:
		return generateSequence(spec.Params, rowCount, ctx)
	case dataset.GenChoice:
		return generateChoice(spec.Params, rowCount, rng, ctx)
	case dataset.GenDistribution:
		return generateDistribution(spec.Params, rowCount, rng, ctx)
	case dataset.GenDatetimeSeries:
		return generateDatetimeSeries(spec.Params, rowCount, rng, ctx)
	case dataset.GenFaker:
		return generateFaker(spec.Params, rowCount, rng, ctx)
	case dataset.GenLookup:
		return generateLookup(spec.Params, rowCount, rng, ctx)
	case dataset.GenExpression:
		return generateExpression(spec.Params, rowCount, ctx)
	case dataset.GenEnumList:
		return generateEnumList(spec.Params, rowCount, ctx)
	default:
		return nil, &GeneratorError{
			Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Generator: string(spec.Kind), Detail: "unknown generator kind reached dispatch",
		}
	}
}
