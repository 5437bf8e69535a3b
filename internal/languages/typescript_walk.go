package languages

import (
	"github.com/morozRed/overloadts/internal/operator"
	"github.com/morozRed/overloadts/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// binding is what a scope knows about a name.
type binding struct {
	declared   string // annotated type
	typ        string // annotated or inferred type
	returnType string // for function declarations
	source     *parser.OperatorExpr
}

type nodeKey struct {
	start, end uint32
	typ        string
}

func keyOf(n *sitter.Node) nodeKey {
	return nodeKey{start: n.StartByte(), end: n.EndByte(), typ: n.Type()}
}

func (fe *fileExtractor) pushScope() {
	fe.scopes = append(fe.scopes, make(map[string]*binding))
}

func (fe *fileExtractor) popScope() {
	if len(fe.scopes) > 1 {
		fe.scopes = fe.scopes[:len(fe.scopes)-1]
	}
}

func (fe *fileExtractor) bind(name string, b *binding) {
	fe.scopes[len(fe.scopes)-1][name] = b
}

func (fe *fileExtractor) lookup(name string) *binding {
	for i := len(fe.scopes) - 1; i >= 0; i-- {
		if b, ok := fe.scopes[i][name]; ok {
			return b
		}
	}
	return nil
}

func (fe *fileExtractor) currentThis() string {
	if len(fe.thisStack) == 0 {
		return ""
	}
	return fe.thisStack[len(fe.thisStack)-1]
}

// walk visits the tree in post-order, tracking lexical scopes and recording
// every overloadable operator expression.
func (fe *fileExtractor) walk(n *sitter.Node) {
	switch n.Type() {
	case "class_declaration", "abstract_class_declaration", "class":
		name := ""
		if nameNode := n.ChildByFieldName("name"); nameNode != nil {
			name = fe.text(nameNode)
			if n.Type() != "class" && len(fe.scopes) > 1 {
				fe.bindPlaceholder(name)
			}
		}
		fe.thisStack = append(fe.thisStack, name)
		fe.walkChildren(n)
		fe.thisStack = fe.thisStack[:len(fe.thisStack)-1]
		return

	case "function_declaration", "generator_function_declaration":
		if name := n.ChildByFieldName("name"); name != nil && len(fe.scopes) > 1 {
			fe.bind(fe.text(name), &binding{returnType: fe.typeName(n.ChildByFieldName("return_type"))})
		}
		fe.walkFunction(n)
		return

	case "function_expression", "function", "generator_function", "arrow_function", "method_definition":
		fe.walkFunction(n)
		return

	case "statement_block":
		fe.pushScope()
		fe.hoist(n)
		fe.walkChildren(n)
		fe.popScope()
		return

	case "for_statement", "for_in_statement", "catch_clause":
		fe.pushScope()
		if left := n.ChildByFieldName("left"); left != nil && n.ChildByFieldName("kind") != nil {
			fe.bindPattern(left)
		}
		if param := n.ChildByFieldName("parameter"); param != nil {
			fe.bindPattern(param)
		}
		fe.walkChildren(n)
		fe.popScope()
		return

	case "variable_declarator":
		fe.walkDeclarator(n)
		return
	}

	fe.walkChildren(n)
	fe.record(n)
}

func (fe *fileExtractor) walkChildren(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		fe.walk(n.NamedChild(i))
	}
}

func (fe *fileExtractor) walkFunction(n *sitter.Node) {
	fe.pushScope()
	defer fe.popScope()

	if n.Type() == "function_expression" || n.Type() == "function" {
		if name := n.ChildByFieldName("name"); name != nil {
			fe.bindPlaceholder(fe.text(name))
		}
	}
	fe.bindParams(n)
	if n.Type() != "arrow_function" {
		fe.thisStack = append(fe.thisStack, fe.thisParamType(n))
		defer func() { fe.thisStack = fe.thisStack[:len(fe.thisStack)-1] }()
	}
	if body := n.ChildByFieldName("body"); body != nil {
		if body.Type() == "statement_block" {
			// parameters and the body share one scope
			fe.hoist(body)
			fe.walkChildren(body)
		} else {
			fe.walk(body)
		}
	}
}

// thisParamType returns the annotated type of a `this` parameter, falling
// back to the enclosing class for methods.
func (fe *fileExtractor) thisParamType(fn *sitter.Node) string {
	if params := fn.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			p := params.NamedChild(i)
			if pattern := p.ChildByFieldName("pattern"); pattern != nil && pattern.Type() == "this" {
				return fe.typeName(p.ChildByFieldName("type"))
			}
		}
	}
	if fn.Type() == "method_definition" {
		return fe.currentThis()
	}
	return ""
}

func (fe *fileExtractor) walkDeclarator(n *sitter.Node) {
	value := n.ChildByFieldName("value")
	if value != nil {
		fe.walk(value)
	}
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	if name.Type() != "identifier" {
		fe.bindPattern(name)
		return
	}

	b := &binding{declared: fe.typeName(n.ChildByFieldName("type"))}
	b.typ = b.declared
	if value != nil {
		if b.typ == "" {
			b.typ, _ = fe.exprType(value)
		}
		b.source = fe.exprs[keyOf(stripParens(value))]
	}
	if erased(b.typ) {
		b.typ = ""
	}
	fe.bind(fe.text(name), b)
}

// hoist binds the names declared directly in block before its statements
// are walked, so a use ahead of a declaration still sees the block's name.
func (fe *fileExtractor) hoist(block *sitter.Node) {
	for i := 0; i < int(block.NamedChildCount()); i++ {
		stmt := block.NamedChild(i)
		switch stmt.Type() {
		case "function_declaration", "generator_function_declaration":
			if name := stmt.ChildByFieldName("name"); name != nil {
				fe.bind(fe.text(name), &binding{returnType: fe.typeName(stmt.ChildByFieldName("return_type"))})
			}
		case "class_declaration", "abstract_class_declaration", "enum_declaration":
			if name := stmt.ChildByFieldName("name"); name != nil {
				fe.bindPlaceholder(fe.text(name))
			}
		case "lexical_declaration", "variable_declaration":
			for j := 0; j < int(stmt.NamedChildCount()); j++ {
				if d := stmt.NamedChild(j); d.Type() == "variable_declarator" {
					if name := d.ChildByFieldName("name"); name != nil {
						fe.bindPattern(name)
					}
				}
			}
		}
	}
}

// bindPlaceholder binds name in the current scope without type information,
// keeping an existing binding of the same scope.
func (fe *fileExtractor) bindPlaceholder(name string) {
	scope := fe.scopes[len(fe.scopes)-1]
	if _, ok := scope[name]; !ok {
		scope[name] = &binding{}
	}
}

func (fe *fileExtractor) bindPattern(pattern *sitter.Node) {
	for _, name := range patternNames(pattern, fe.content) {
		fe.bindPlaceholder(name)
	}
}

// patternNames returns the identifiers a binding pattern introduces.
// Default values and property keys are not bindings.
func patternNames(n *sitter.Node, content []byte) []string {
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		return []string{n.Content(content)}
	case "pair_pattern":
		if value := n.ChildByFieldName("value"); value != nil {
			return patternNames(value, content)
		}
		return nil
	case "assignment_pattern", "object_assignment_pattern":
		if left := n.ChildByFieldName("left"); left != nil {
			return patternNames(left, content)
		}
		return nil
	case "object_pattern", "array_pattern", "rest_pattern":
		var out []string
		for i := 0; i < int(n.NamedChildCount()); i++ {
			out = append(out, patternNames(n.NamedChild(i), content)...)
		}
		return out
	}
	return nil
}

// localNames returns every name bound by the enclosing function and block
// scopes.
func (fe *fileExtractor) localNames() map[string]bool {
	if len(fe.scopes) < 2 {
		return nil
	}
	names := make(map[string]bool)
	for _, scope := range fe.scopes[1:] {
		for name := range scope {
			names[name] = true
		}
	}
	return names
}

// record adds n to the file's operator expressions when it is an
// overloadable operator use.
func (fe *fileExtractor) record(n *sitter.Node) {
	var (
		op       operator.Operator
		kind     operator.Kind
		operands []*sitter.Node
		ok       bool
	)

	switch n.Type() {
	case "binary_expression", "augmented_assignment_expression":
		opNode := n.ChildByFieldName("operator")
		left, right := n.ChildByFieldName("left"), n.ChildByFieldName("right")
		if opNode == nil || left == nil || right == nil {
			return
		}
		op, ok = operator.Lookup(fe.text(opNode))
		ok = ok && op.Binary()
		kind = operator.Binary
		operands = []*sitter.Node{left, right}

	case "unary_expression":
		opNode := n.ChildByFieldName("operator")
		arg := n.ChildByFieldName("argument")
		if opNode == nil || arg == nil {
			return
		}
		op, ok = operator.Lookup(fe.text(opNode))
		ok = ok && op.Prefix()
		kind = operator.PrefixUnary
		operands = []*sitter.Node{arg}

	case "update_expression":
		if n.ChildCount() != 2 {
			return
		}
		first, last := n.Child(0), n.Child(1)
		if first.Type() == "++" || first.Type() == "--" {
			// prefix increments are not overloadable
			return
		}
		op, ok = operator.Lookup(last.Type())
		kind = operator.PostfixUnary
		operands = []*sitter.Node{first}
	}
	if !ok {
		return
	}

	expr := &parser.OperatorExpr{
		Op:     op,
		Kind:   kind,
		Start:  int(n.StartByte()),
		End:    int(n.EndByte()),
		Line:   int(n.StartPoint().Row) + 1,
		Locals: fe.localNames(),
	}
	for _, operand := range operands {
		expr.Operands = append(expr.Operands, fe.operand(operand))
	}
	fe.exprs[keyOf(n)] = expr
	fe.file.Exprs = append(fe.file.Exprs, expr)
}

func (fe *fileExtractor) operand(n *sitter.Node) *parser.Operand {
	inner := stripParens(n)
	o := &parser.Operand{
		Start:  int(n.StartByte()),
		End:    int(n.EndByte()),
		Simple: isSimple(n),
		Source: fe.exprs[keyOf(inner)],
	}
	o.Type, o.Literal = fe.exprType(inner)

	if inner.Type() == "identifier" {
		o.Symbol = fe.text(inner)
		if b := fe.lookup(o.Symbol); b != nil {
			o.DeclaredType = b.declared
			if o.Source == nil {
				o.Source = b.source
			}
		}
	}
	if erased(o.Type) {
		o.Type = ""
	}
	if erased(o.DeclaredType) {
		o.DeclaredType = ""
	}
	return o
}

// exprType statically types an expression to a nominal type name.
func (fe *fileExtractor) exprType(n *sitter.Node) (string, parser.Literal) {
	n = stripParens(n)
	switch n.Type() {
	case "number":
		return "number", parser.NumericLiteral
	case "true", "false":
		return "boolean", parser.BooleanLiteral
	case "string", "template_string":
		return "string", parser.StringLiteral
	case "this":
		return fe.currentThis(), parser.NotLiteral
	case "identifier":
		if b := fe.lookup(fe.text(n)); b != nil {
			return b.typ, parser.NotLiteral
		}
	case "new_expression":
		return fe.constructedType(n), parser.NotLiteral
	case "as_expression", "satisfies_expression":
		if n.NamedChildCount() == 2 {
			if n.Type() == "as_expression" {
				return fe.typeName(n.NamedChild(1)), parser.NotLiteral
			}
			return fe.exprType(n.NamedChild(0))
		}
	case "non_null_expression":
		if n.NamedChildCount() > 0 {
			return fe.exprType(n.NamedChild(0))
		}
	case "member_expression":
		object, prop := n.ChildByFieldName("object"), n.ChildByFieldName("property")
		if object == nil || prop == nil {
			break
		}
		owner, _ := fe.exprType(object)
		return fe.memberType(owner, fe.text(prop), false), parser.NotLiteral
	case "call_expression":
		fn := n.ChildByFieldName("function")
		if fn == nil {
			break
		}
		switch fn.Type() {
		case "identifier":
			if b := fe.lookup(fe.text(fn)); b != nil {
				return b.returnType, parser.NotLiteral
			}
		case "member_expression":
			object, prop := fn.ChildByFieldName("object"), fn.ChildByFieldName("property")
			if object == nil || prop == nil {
				break
			}
			owner, _ := fe.exprType(object)
			return fe.memberType(owner, fe.text(prop), true), parser.NotLiteral
		}
	case "binary_expression":
		return fe.binaryType(n), parser.NotLiteral
	case "unary_expression":
		return fe.unaryType(n), parser.NotLiteral
	}
	return "", parser.NotLiteral
}

// binaryType types a binary expression the language evaluates natively.
// Operands of class type are left to the rewriter, which knows whether an
// overload applies.
func (fe *fileExtractor) binaryType(n *sitter.Node) string {
	opNode := n.ChildByFieldName("operator")
	left, right := n.ChildByFieldName("left"), n.ChildByFieldName("right")
	if opNode == nil || left == nil || right == nil {
		return ""
	}
	literal := fe.text(opNode)
	if literal == "instanceof" || literal == "in" {
		return "boolean"
	}
	op, ok := operator.Lookup(literal)
	if !ok {
		return ""
	}
	if op.IsComparison() {
		return "boolean"
	}

	lt, _ := fe.exprType(left)
	rt, _ := fe.exprType(right)
	switch op {
	case operator.LogicalAnd, operator.LogicalOr, operator.Nullish:
		if lt == rt {
			return lt
		}
	case operator.Add:
		if lt == "string" || rt == "string" {
			return "string"
		}
		if lt == "number" && rt == "number" {
			return "number"
		}
	default:
		if lt == "number" && rt == "number" {
			return "number"
		}
	}
	return ""
}

func (fe *fileExtractor) unaryType(n *sitter.Node) string {
	opNode := n.ChildByFieldName("operator")
	if opNode == nil {
		return ""
	}
	switch fe.text(opNode) {
	case "!", "delete":
		return "boolean"
	case "typeof":
		return "string"
	case "void":
		return "undefined"
	case "-", "+", "~":
		if arg := n.ChildByFieldName("argument"); arg != nil {
			if t, _ := fe.exprType(arg); t == "number" {
				return "number"
			}
		}
	}
	return ""
}

// memberType types a field or method result declared on a class in this
// file, following base classes declared here as well.
func (fe *fileExtractor) memberType(owner, name string, method bool) string {
	seen := make(map[string]bool)
	for owner != "" && !seen[owner] {
		seen[owner] = true
		info, ok := fe.classes[owner]
		if !ok {
			return ""
		}
		members := info.fields
		if method {
			members = info.methods
		}
		if typ, ok := members[name]; ok {
			return typ
		}
		owner = info.base
	}
	return ""
}

func stripParens(n *sitter.Node) *sitter.Node {
	for n.Type() == "parenthesized_expression" && n.NamedChildCount() == 1 {
		n = n.NamedChild(0)
	}
	return n
}

// isSimple reports whether n can be used as a call receiver as written.
func isSimple(n *sitter.Node) bool {
	switch n.Type() {
	case "identifier", "this", "member_expression", "subscript_expression",
		"call_expression", "parenthesized_expression", "non_null_expression":
		return true
	}
	return false
}
