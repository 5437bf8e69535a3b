package overload

import (
	"fmt"
	"strings"

	"github.com/morozRed/overloadts/internal/operator"
)

// Strategy selects how binary lookups widen both operand types along their
// inheritance chains.
type Strategy int

const (
	// MatchNested walks the left chain in the outer loop and the right
	// chain in the inner loop, returning the first entry found.
	MatchNested Strategy = iota
	// MatchCombined returns the entry with the fewest total ancestor steps
	// on both sides; ties go to the candidate with fewer left steps.
	MatchCombined
)

func (s Strategy) String() string {
	if s == MatchCombined {
		return "combined"
	}
	return "nested"
}

// ParseStrategy accepts "nested" or "combined"; "" selects MatchNested.
func ParseStrategy(raw string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "nested":
		return MatchNested, nil
	case "combined":
		return MatchCombined, nil
	}
	return MatchNested, fmt.Errorf("unknown match strategy %q (want nested or combined)", raw)
}

// FindOverload resolves a binary use site. An empty type never matches.
func (r *Registry) FindOverload(op operator.Operator, left, right string) (*Entry, bool) {
	byLeft := r.binary[op]
	if len(byLeft) == 0 || left == "" || right == "" {
		return nil, false
	}
	leftChain := r.chains.Chain(left)
	rightChain := r.chains.Chain(right)

	at := func(i, j int) (*Entry, bool) {
		e, ok := byLeft[leftChain[i]][rightChain[j]]
		return e, ok
	}

	if r.strategy == MatchCombined {
		for steps := 0; steps <= len(leftChain)+len(rightChain)-2; steps++ {
			for i := 0; i <= steps && i < len(leftChain); i++ {
				j := steps - i
				if j >= len(rightChain) {
					continue
				}
				if e, ok := at(i, j); ok {
					return e, true
				}
			}
		}
		return nil, false
	}

	for i := range leftChain {
		for j := range rightChain {
			if e, ok := at(i, j); ok {
				return e, true
			}
		}
	}
	return nil, false
}

// FindPrefixUnaryOverload resolves a prefix use site such as -v.
func (r *Registry) FindPrefixUnaryOverload(op operator.Operator, operand string) (*Entry, bool) {
	return r.findUnary(r.prefix[op], operand)
}

// FindPostfixUnaryOverload resolves a postfix use site such as v++.
func (r *Registry) FindPostfixUnaryOverload(op operator.Operator, operand string) (*Entry, bool) {
	return r.findUnary(r.postfix[op], operand)
}

func (r *Registry) findUnary(byType map[string]*Entry, operand string) (*Entry, bool) {
	if len(byType) == 0 || operand == "" {
		return nil, false
	}
	for _, t := range r.chains.Chain(operand) {
		if e, ok := byType[t]; ok {
			return e, true
		}
	}
	return nil, false
}

// Find dispatches on kind; right is ignored for unary kinds.
func (r *Registry) Find(op operator.Operator, kind operator.Kind, left, right string) (*Entry, bool) {
	switch kind {
	case operator.PrefixUnary:
		return r.FindPrefixUnaryOverload(op, left)
	case operator.PostfixUnary:
		return r.FindPostfixUnaryOverload(op, left)
	default:
		return r.FindOverload(op, left, right)
	}
}
