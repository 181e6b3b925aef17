// Package tnorm provides the fuzzy truth-combination operators used when
// evaluating formula trees: a t-norm for conjunction, its dual t-conorm
// for disjunction and standard negation.
package tnorm

import (
	"fmt"

	"github.com/qianlima-lab/clmpt/pkg/clmpt/internalerr"
)

// Tnorm combines truth values in [0,1].
// This interface allows swapping operator families (product, Godel,
// Lukasiewicz bridges, etc.) without touching evaluation logic.
type Tnorm interface {
	// Conj combines two truth values under conjunction.
	Conj(x, y float64) float64

	// Disj combines two truth values under disjunction.
	Disj(x, y float64) float64

	// Neg negates a truth value.
	Neg(x float64) float64
}

// Product is the product t-norm family: x*y, x+y-x*y, 1-x.
type Product struct{}

func (Product) Conj(x, y float64) float64 { return x * y }
func (Product) Disj(x, y float64) float64 { return x + y - x*y }
func (Product) Neg(x float64) float64     { return 1 - x }

// Godel is the Godel (minimum) t-norm family: min, max, 1-x.
type Godel struct{}

func (Godel) Conj(x, y float64) float64 {
	if x < y {
		return x
	}
	return y
}

func (Godel) Disj(x, y float64) float64 {
	if x > y {
		return x
	}
	return y
}

func (Godel) Neg(x float64) float64 { return 1 - x }

// FromName resolves a configured operator family name.
func FromName(name string) (Tnorm, error) {
	switch name {
	case "product":
		return Product{}, nil
	case "godel", "minmax":
		return Godel{}, nil
	default:
		return nil, fmt.Errorf("%w: tnorm %q", internalerr.ErrInvalidConfig, name)
	}
}

// ConjAll folds Conj over the values; an empty input is fully true.
func ConjAll(op Tnorm, values []float64) float64 {
	out := 1.0
	for _, v := range values {
		out = op.Conj(out, v)
	}
	return out
}

// DisjAll folds Disj over the values; an empty input is fully false.
func DisjAll(op Tnorm, values []float64) float64 {
	out := 0.0
	for _, v := range values {
		out = op.Disj(out, v)
	}
	return out
}
