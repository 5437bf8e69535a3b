package parser

import "github.com/morozRed/overloadts/internal/operator"

// Literal classifies operands written as literals.
type Literal int

const (
	NotLiteral Literal = iota
	NumericLiteral
	BooleanLiteral
	StringLiteral
)

// File is everything the overload engine needs from one parsed source file.
// Byte offsets index Source.
type File struct {
	Path     string
	Language string
	Source   []byte
	Hash     string // content hash for idempotent registration
	// Partial is set when the syntax tree contains errors; declarations and
	// expressions were still extracted from the parts that parsed.
	Partial bool

	Classes []*ClassDecl
	Imports []ImportDecl
	// TopLevel holds every name bound at module scope: declarations and
	// import locals.
	TopLevel map[string]bool
	// Exprs lists operator-use expressions in post-order, so operands that
	// are themselves operator expressions come before their parent.
	Exprs []*OperatorExpr
}

// ClassDecl is a class declaration with its operator-keyed members.
type ClassDecl struct {
	Name     string
	Base     string // canonical base class name, "" when none
	Path     string
	Line     int
	End      int // offset after the declaration, including an enclosing export
	Exported bool
	Members  []*Member
}

// Member is a class property whose key names an operator. Properties whose
// key does not resolve to an operator are not recorded.
type Member struct {
	Operator operator.Operator
	Key      string // key as written, for messages
	Static   bool
	IsArray  bool // initializer is an array literal
	AsConst  bool // array carries an `as const` assertion
	Elements []*FuncElem
	Line     int
	Snippet  string
}

// FuncElem is one element of an overload array.
type FuncElem struct {
	IsFunction bool // function expression or arrow function
	Arrow      bool
	Params     []Param // excludes a leading `this:` receiver parameter
	ReturnType string  // annotated or inferred; "void" when nothing is returned, "" when unknown
	Line       int
	Snippet    string
}

// Param is a declared function parameter.
type Param struct {
	Name string
	Type string // canonical type name, "" when not annotated
}

// ImportDecl is one import statement.
type ImportDecl struct {
	Module     string
	Start, End int
	Default    string
	Namespace  string
	Named      map[string]string // local name -> imported name
	// TypeOnlyNames are the named locals written with a `type` modifier.
	TypeOnlyNames map[string]bool
	// BraceClose is the offset of the closing brace of the named import
	// list, or -1 when the statement has none.
	BraceClose int
	// DefaultEnd is the offset just after the default import name.
	DefaultEnd int
	SideEffect bool
	TypeOnly   bool
}

// OperatorExpr is an operator-use site.
type OperatorExpr struct {
	Op         operator.Operator
	Kind       operator.Kind
	Start, End int
	Line       int
	// Operands holds left and right for binary expressions, or the single
	// operand of a unary expression.
	Operands []*Operand
	// Locals holds the names bound by enclosing function and block scopes
	// at the expression. Module scope names are in File.TopLevel.
	Locals map[string]bool
}

// Operand describes one operand as the front end typed it.
type Operand struct {
	Start, End int
	Literal    Literal
	// Type is the statically inferred type, "" when unresolved or erased.
	Type string
	// Symbol is the identifier the operand refers to, if any.
	Symbol string
	// DeclaredType is the annotated type of Symbol.
	DeclaredType string
	// Source is the operator expression this operand evaluates to: the
	// operand itself once parentheses are stripped, or the initializer of
	// the variable it names.
	Source *OperatorExpr
	// Simple operands can be used as a call receiver without parentheses.
	Simple bool
}

// Text returns the source text of an operand.
func (f *File) Text(start, end int) string {
	return string(f.Source[start:end])
}

// ParseIssue captures non-fatal parser warnings/errors encountered while scanning files.
type ParseIssue struct {
	File     string `json:"file"`
	Language string `json:"language,omitempty"`
	Severity string `json:"severity"` // warning | error
	Message  string `json:"message"`
}

// ParseResult holds the parsed files of one scan.
type ParseResult struct {
	Files    []*File
	RootPath string
	Issues   []ParseIssue
}
