package formula

import (
	"fmt"
	"strings"

	"github.com/qianlima-lab/clmpt/pkg/clmpt/internalerr"
)

// Negation wraps exactly one sub-formula. Wrapping an atomic directly
// marks it Negated so downstream evaluation can pick the negated
// semantics for that edge.
type Negation struct {
	Formula Formula
}

// NewNegation creates a negation of f, marking a direct atomic child.
func NewNegation(f Formula) *Negation {
	if a, ok := f.(*Atomic); ok {
		a.Negated = true
	}
	return &Negation{Formula: f}
}

func (n *Negation) Op() string { return OpNeg }

// String returns "!(inner)".
func (n *Negation) String() string {
	return fmt.Sprintf("!(%s)", n.Formula.String())
}

func (n *Negation) ToLDict() map[string]any {
	return map[string]any{
		"op":   OpNeg,
		"args": map[string]any{"formula": n.Formula.ToLDict()},
	}
}

func (n *Negation) Atomics() map[string]*Atomic {
	return n.Formula.Atomics()
}

func (n *Negation) EachAtomic(fn func(*Atomic)) {
	n.Formula.EachAtomic(fn)
}

func (n *Negation) NumAtomics() int { return n.Formula.NumAtomics() }

func parseNegation(ldict map[string]any) (Formula, error) {
	op, args, err := opArgs(ldict)
	if err != nil {
		return nil, err
	}
	if op != OpNeg {
		return nil, fmt.Errorf("%w: expected %q, got %q", internalerr.ErrMalformedLDict, OpNeg, op)
	}
	inner, err := mapArg(args, "formula")
	if err != nil {
		return nil, err
	}
	f, err := Parse(inner)
	if err != nil {
		return nil, err
	}
	return NewNegation(f), nil
}

// Conjunction combines an ordered sequence of sub-formulas with logical and.
type Conjunction struct {
	Formulas []Formula
}

// NewConjunction creates a conjunction over the given sub-formulas.
func NewConjunction(formulas []Formula) *Conjunction {
	return &Conjunction{Formulas: formulas}
}

func (c *Conjunction) Op() string { return OpConj }

// String returns "(f1)&(f2)&...".
func (c *Conjunction) String() string { return joinFormulas(c.Formulas, "&") }

func (c *Conjunction) ToLDict() map[string]any {
	return connectiveLDict(OpConj, c.Formulas)
}

func (c *Conjunction) Atomics() map[string]*Atomic {
	return mergeAtomics(c.Formulas)
}

func (c *Conjunction) EachAtomic(fn func(*Atomic)) {
	for _, f := range c.Formulas {
		f.EachAtomic(fn)
	}
}

func (c *Conjunction) NumAtomics() int { return sumAtomics(c.Formulas) }

func parseConjunction(ldict map[string]any) (Formula, error) {
	formulas, err := parseFormulaList(ldict, OpConj)
	if err != nil {
		return nil, err
	}
	return NewConjunction(formulas), nil
}

// Disjunction combines an ordered sequence of sub-formulas with logical or.
type Disjunction struct {
	Formulas []Formula
}

// NewDisjunction creates a disjunction over the given sub-formulas.
func NewDisjunction(formulas []Formula) *Disjunction {
	return &Disjunction{Formulas: formulas}
}

func (d *Disjunction) Op() string { return OpDisj }

// String returns "(f1)|(f2)|...".
func (d *Disjunction) String() string { return joinFormulas(d.Formulas, "|") }

func (d *Disjunction) ToLDict() map[string]any {
	return connectiveLDict(OpDisj, d.Formulas)
}

func (d *Disjunction) Atomics() map[string]*Atomic {
	return mergeAtomics(d.Formulas)
}

func (d *Disjunction) EachAtomic(fn func(*Atomic)) {
	for _, f := range d.Formulas {
		f.EachAtomic(fn)
	}
}

func (d *Disjunction) NumAtomics() int { return sumAtomics(d.Formulas) }

func parseDisjunction(ldict map[string]any) (Formula, error) {
	formulas, err := parseFormulaList(ldict, OpDisj)
	if err != nil {
		return nil, err
	}
	return NewDisjunction(formulas), nil
}

func parseFormulaList(ldict map[string]any, want string) ([]Formula, error) {
	op, args, err := opArgs(ldict)
	if err != nil {
		return nil, err
	}
	if op != want {
		return nil, fmt.Errorf("%w: expected %q, got %q", internalerr.ErrMalformedLDict, want, op)
	}
	dicts, err := mapListArg(args, "formulas")
	if err != nil {
		return nil, err
	}
	formulas := make([]Formula, 0, len(dicts))
	for i, d := range dicts {
		f, err := Parse(d)
		if err != nil {
			return nil, fmt.Errorf("formulas[%d]: %w", i, err)
		}
		formulas = append(formulas, f)
	}
	return formulas, nil
}

func joinFormulas(formulas []Formula, sep string) string {
	parts := make([]string, len(formulas))
	for i, f := range formulas {
		parts[i] = fmt.Sprintf("(%s)", f.String())
	}
	return strings.Join(parts, sep)
}

func connectiveLDict(op string, formulas []Formula) map[string]any {
	dicts := make([]any, len(formulas))
	for i, f := range formulas {
		dicts[i] = f.ToLDict()
	}
	return map[string]any{
		"op":   op,
		"args": map[string]any{"formulas": dicts},
	}
}

func mergeAtomics(formulas []Formula) map[string]*Atomic {
	out := map[string]*Atomic{}
	for _, f := range formulas {
		for k, v := range f.Atomics() {
			out[k] = v
		}
	}
	return out
}

func sumAtomics(formulas []Formula) int {
	total := 0
	for _, f := range formulas {
		total += f.NumAtomics()
	}
	return total
}
