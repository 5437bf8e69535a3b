// Package operator holds the canonical operator tags used by every stage of
// the overload pipeline. Front ends translate source syntax (string keys,
// `Operator.PLUS` enum members, expression tokens) into an Operator once;
// nothing downstream looks at raw syntax again.
package operator

import (
	"fmt"
	"sort"
)

// Operator is a canonical operator tag.
type Operator int

const (
	Invalid Operator = iota

	Add
	Sub
	Mul
	Div
	Mod
	Pow
	BitAnd
	BitOr
	BitXor
	Shl
	Shr
	UShr
	LogicalAnd
	LogicalOr
	Nullish

	Eq
	StrictEq
	NotEq
	StrictNotEq
	Less
	LessEq
	Greater
	GreaterEq

	AddAssign
	SubAssign
	MulAssign
	DivAssign
	ModAssign
	PowAssign
	BitAndAssign
	BitOrAssign
	BitXorAssign
	ShlAssign
	ShrAssign
	UShrAssign
	LogicalAndAssign
	LogicalOrAssign
	NullishAssign

	Not
	BitNot

	Increment
	Decrement
)

type info struct {
	literal string
	name    string
}

var table = map[Operator]info{
	Add:         {"+", "PLUS"},
	Sub:         {"-", "MINUS"},
	Mul:         {"*", "MULTIPLY"},
	Div:         {"/", "DIVIDE"},
	Mod:         {"%", "MODULUS"},
	Pow:         {"**", "EXPONENT"},
	BitAnd:      {"&", "AND"},
	BitOr:       {"|", "OR"},
	BitXor:      {"^", "XOR"},
	Shl:         {"<<", "LEFT_SHIFT"},
	Shr:         {">>", "RIGHT_SHIFT"},
	UShr:        {">>>", "UNSIGNED_RIGHT_SHIFT"},
	LogicalAnd:  {"&&", "LOGICAL_AND"},
	LogicalOr:   {"||", "LOGICAL_OR"},
	Nullish:     {"??", "NULLISH"},
	Eq:          {"==", "EQUALS"},
	StrictEq:    {"===", "STRICT_EQUALS"},
	NotEq:       {"!=", "NOT_EQUALS"},
	StrictNotEq: {"!==", "STRICT_NOT_EQUALS"},
	Less:        {"<", "LESS_THAN"},
	LessEq:      {"<=", "LESS_THAN_EQUAL_TO"},
	Greater:     {">", "GREATER_THAN"},
	GreaterEq:   {">=", "GREATER_THAN_EQUAL_TO"},

	AddAssign:        {"+=", "PLUS_EQUALS"},
	SubAssign:        {"-=", "MINUS_EQUALS"},
	MulAssign:        {"*=", "MULTIPLY_EQUALS"},
	DivAssign:        {"/=", "DIVIDE_EQUALS"},
	ModAssign:        {"%=", "MODULUS_EQUALS"},
	PowAssign:        {"**=", "EXPONENT_EQUALS"},
	BitAndAssign:     {"&=", "AND_EQUALS"},
	BitOrAssign:      {"|=", "OR_EQUALS"},
	BitXorAssign:     {"^=", "XOR_EQUALS"},
	ShlAssign:        {"<<=", "LEFT_SHIFT_EQUALS"},
	ShrAssign:        {">>=", "RIGHT_SHIFT_EQUALS"},
	UShrAssign:       {">>>=", "UNSIGNED_RIGHT_SHIFT_EQUALS"},
	LogicalAndAssign: {"&&=", "LOGICAL_AND_EQUALS"},
	LogicalOrAssign:  {"||=", "LOGICAL_OR_EQUALS"},
	NullishAssign:    {"??=", "NULLISH_EQUALS"},

	Not:    {"!", "NOT"},
	BitNot: {"~", "BITWISE_NOT"},

	Increment: {"++", "INCREMENT"},
	Decrement: {"--", "DECREMENT"},
}

var (
	byLiteral = make(map[string]Operator, len(table))
	byName    = make(map[string]Operator, len(table))
)

func init() {
	for op, in := range table {
		byLiteral[in.literal] = op
		byName[in.name] = op
	}
}

// Lookup returns the operator spelled by literal, e.g. "+=".
func Lookup(literal string) (Operator, bool) {
	op, ok := byLiteral[literal]
	return op, ok
}

// FromName returns the operator for an enum member name such as "PLUS".
func FromName(name string) (Operator, bool) {
	op, ok := byName[name]
	return op, ok
}

// String returns the operator literal.
func (o Operator) String() string {
	if in, ok := table[o]; ok {
		return in.literal
	}
	return "<invalid>"
}

// Name returns the enum member name used by the operator module.
func (o Operator) Name() string {
	return table[o].name
}

// IsInstance reports whether overloads of o are instance members invoked
// with the left operand as receiver. Compound assignment and postfix
// operators mutate their receiver.
func (o Operator) IsInstance() bool {
	return (o >= AddAssign && o <= NullishAssign) || o.Postfix()
}

// IsComparison reports whether overloads of o must return a boolean.
func (o Operator) IsComparison() bool {
	return o >= Eq && o <= GreaterEq
}

// Binary reports whether o can be used with two operands.
func (o Operator) Binary() bool {
	return o >= Add && o <= NullishAssign
}

// Prefix reports whether o can be used as a prefix unary operator.
func (o Operator) Prefix() bool {
	switch o {
	case Add, Sub, Not, BitNot:
		return true
	}
	return false
}

// Postfix reports whether o is a postfix unary operator.
func (o Operator) Postfix() bool {
	return o == Increment || o == Decrement
}

// All returns every valid operator ordered by tag.
func All() []Operator {
	out := make([]Operator, 0, len(table))
	for op := range table {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Kind distinguishes the three operator use forms.
type Kind int

const (
	Binary Kind = iota
	PrefixUnary
	PostfixUnary
)

func (k Kind) String() string {
	switch k {
	case Binary:
		return "binary"
	case PrefixUnary:
		return "prefix"
	case PostfixUnary:
		return "postfix"
	default:
		return "unknown"
	}
}

func (o Operator) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (o *Operator) UnmarshalText(text []byte) error {
	op, ok := Lookup(string(text))
	if !ok {
		return fmt.Errorf("unknown operator %q", text)
	}
	*o = op
	return nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for _, candidate := range []Kind{Binary, PrefixUnary, PostfixUnary} {
		if candidate.String() == string(text) {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown operator kind %q", text)
}
