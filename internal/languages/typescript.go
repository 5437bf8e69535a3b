package languages

import (
	"context"
	"strings"

	"github.com/morozRed/overloadts/internal/operator"
	"github.com/morozRed/overloadts/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// DefaultOperatorModule exports the `Operator` enum accepted as computed
// member keys, e.g. `static readonly [Operator.PLUS] = [...] as const`.
const DefaultOperatorModule = "boperators"

// TypeScriptParser implements parsing for TypeScript source files. It is the
// front end of the overload engine: it extracts overload declarations,
// imports and operator-use sites, and types operands statically.
type TypeScriptParser struct {
	tsParser  *sitter.Parser
	tsxParser *sitter.Parser

	operatorModule string
}

// NewTypeScriptParser creates a new TypeScript/TSX parser. operatorModule
// names the module whose `Operator` enum may key overload members.
func NewTypeScriptParser(operatorModule string) *TypeScriptParser {
	ts := sitter.NewParser()
	ts.SetLanguage(typescript.GetLanguage())

	x := sitter.NewParser()
	x.SetLanguage(tsx.GetLanguage())

	if operatorModule == "" {
		operatorModule = DefaultOperatorModule
	}
	return &TypeScriptParser{
		tsParser:       ts,
		tsxParser:      x,
		operatorModule: operatorModule,
	}
}

func (t *TypeScriptParser) Language() string {
	return "typescript"
}

func (t *TypeScriptParser) Extensions() []string {
	return []string{".ts", ".tsx", ".mts", ".cts"}
}

func (t *TypeScriptParser) Parse(filename string, content []byte) (*parser.File, error) {
	p := t.tsParser
	if strings.HasSuffix(strings.ToLower(filename), ".tsx") {
		p = t.tsxParser
	}

	tree, err := p.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	result := &parser.File{
		Path:     filename,
		Language: t.Language(),
		Source:   content,
		Partial:  root.HasError(),
		TopLevel: make(map[string]bool),
	}

	fe := newFileExtractor(t.operatorModule, content, result)
	fe.collectImports(root)
	fe.collectTopLevel(root)
	fe.collectClasses(root)
	fe.walk(root)

	return result, nil
}

// fileExtractor carries per-file state through one parse.
type fileExtractor struct {
	operatorModule string
	content        []byte
	file           *parser.File

	// aliases maps a local import name to the name it was imported as.
	aliases map[string]string
	// enumLocals are local names of the operator module's Operator enum;
	// enumNamespaces are namespace imports of that module.
	enumLocals     map[string]bool
	enumNamespaces map[string]bool

	classes map[string]*classInfo

	scopes    []map[string]*binding
	thisStack []string
	exprs     map[nodeKey]*parser.OperatorExpr
}

func newFileExtractor(operatorModule string, content []byte, file *parser.File) *fileExtractor {
	return &fileExtractor{
		operatorModule: operatorModule,
		content:        content,
		file:           file,
		aliases:        make(map[string]string),
		enumLocals:     make(map[string]bool),
		enumNamespaces: make(map[string]bool),
		classes:        make(map[string]*classInfo),
		scopes:         []map[string]*binding{make(map[string]*binding)},
		exprs:          make(map[nodeKey]*parser.OperatorExpr),
	}
}

func (fe *fileExtractor) text(n *sitter.Node) string {
	return n.Content(fe.content)
}

func (fe *fileExtractor) collectImports(root *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		if node.Type() != "import_statement" {
			continue
		}
		decl, ok := fe.extractImport(node)
		if !ok {
			continue
		}
		fe.file.Imports = append(fe.file.Imports, decl)

		fromOperatorModule := decl.Module == fe.operatorModule
		for local, imported := range decl.Named {
			fe.file.TopLevel[local] = true
			if local != imported {
				fe.aliases[local] = imported
			}
			if fromOperatorModule && imported == "Operator" {
				fe.enumLocals[local] = true
			}
		}
		if decl.Default != "" {
			fe.file.TopLevel[decl.Default] = true
		}
		if decl.Namespace != "" {
			fe.file.TopLevel[decl.Namespace] = true
			if fromOperatorModule {
				fe.enumNamespaces[decl.Namespace] = true
			}
		}
	}
}

func (fe *fileExtractor) extractImport(node *sitter.Node) (parser.ImportDecl, bool) {
	decl := parser.ImportDecl{
		Start:      int(node.StartByte()),
		End:        int(node.EndByte()),
		Named:      make(map[string]string),
		BraceClose: -1,
		DefaultEnd: -1,
	}

	source := node.ChildByFieldName("source")
	var clause *sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "string":
			if source == nil {
				source = child
			}
		case "import_clause":
			clause = child
		case "type":
			decl.TypeOnly = true
		}
	}
	if source == nil {
		return decl, false
	}
	decl.Module = unquote(fe.text(source))

	if clause == nil {
		decl.SideEffect = true
		return decl, true
	}
	for i := 0; i < int(clause.ChildCount()); i++ {
		child := clause.Child(i)
		switch child.Type() {
		case "identifier":
			decl.Default = fe.text(child)
			decl.DefaultEnd = int(child.EndByte())
		case "namespace_import":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if id := child.NamedChild(j); id.Type() == "identifier" {
					decl.Namespace = fe.text(id)
				}
			}
		case "named_imports":
			fe.extractNamedImports(child, &decl)
		}
	}
	return decl, true
}

func (fe *fileExtractor) extractNamedImports(node *sitter.Node, decl *parser.ImportDecl) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "}":
			decl.BraceClose = int(child.StartByte())
		case "import_specifier":
			nameNode := child.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			name := fe.text(nameNode)
			local := name
			if aliasNode := child.ChildByFieldName("alias"); aliasNode != nil {
				local = fe.text(aliasNode)
			}
			decl.Named[local] = name
			if typeOnlySpecifier(child) {
				if decl.TypeOnlyNames == nil {
					decl.TypeOnlyNames = make(map[string]bool)
				}
				decl.TypeOnlyNames[local] = true
			}
		}
	}
}

// typeOnlySpecifier reports whether an import specifier carries its own
// `type` modifier, as in `import { type Vec2 } from "./vec2"`.
func typeOnlySpecifier(spec *sitter.Node) bool {
	for i := 0; i < int(spec.ChildCount()); i++ {
		if c := spec.Child(i); !c.IsNamed() && c.Type() == "type" {
			return true
		}
	}
	return false
}

// collectTopLevel records module-scope names and hoisted function
// declarations before any expression is typed.
func (fe *fileExtractor) collectTopLevel(root *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		if node.Type() == "export_statement" {
			if decl := node.ChildByFieldName("declaration"); decl != nil {
				node = decl
			}
		}
		switch node.Type() {
		case "function_declaration", "generator_function_declaration":
			if name := node.ChildByFieldName("name"); name != nil {
				fe.file.TopLevel[fe.text(name)] = true
				fe.bind(fe.text(name), &binding{returnType: fe.typeName(node.ChildByFieldName("return_type"))})
			}
		case "class_declaration", "abstract_class_declaration", "interface_declaration",
			"type_alias_declaration", "enum_declaration":
			if name := node.ChildByFieldName("name"); name != nil {
				fe.file.TopLevel[fe.text(name)] = true
			}
		case "lexical_declaration", "variable_declaration":
			for j := 0; j < int(node.NamedChildCount()); j++ {
				declarator := node.NamedChild(j)
				if declarator.Type() != "variable_declarator" {
					continue
				}
				if name := declarator.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
					fe.file.TopLevel[fe.text(name)] = true
				}
			}
		}
	}
}

// classInfo is the per-file view of a class used to type member accesses.
type classInfo struct {
	base    string
	fields  map[string]string
	methods map[string]string
}

func (fe *fileExtractor) collectClasses(root *sitter.Node) {
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		switch n.Type() {
		case "class_declaration", "abstract_class_declaration":
			if decl := fe.extractClass(n); decl != nil {
				fe.file.Classes = append(fe.file.Classes, decl)
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			visit(n.NamedChild(i))
		}
	}
	visit(root)
}

func (fe *fileExtractor) extractClass(node *sitter.Node) *parser.ClassDecl {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	decl := &parser.ClassDecl{
		Name: fe.text(nameNode),
		Path: fe.file.Path,
		Line: int(node.StartPoint().Row) + 1,
		End:  int(node.EndByte()),
	}
	if parent := node.Parent(); parent != nil && parent.Type() == "export_statement" {
		decl.Exported = true
		decl.End = int(parent.EndByte())
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == "class_heritage" {
			decl.Base = fe.extendsName(child)
		}
	}

	info := &classInfo{base: decl.Base, fields: make(map[string]string), methods: make(map[string]string)}
	fe.classes[decl.Name] = info

	body := node.ChildByFieldName("body")
	if body == nil {
		return decl
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "public_field_definition", "field_definition":
			fe.recordField(member, info)
			if m := fe.extractMember(member); m != nil {
				decl.Members = append(decl.Members, m)
			}
		case "method_definition":
			if name := member.ChildByFieldName("name"); name != nil && name.Type() == "property_identifier" {
				info.methods[fe.text(name)] = fe.typeName(member.ChildByFieldName("return_type"))
			}
			if m := fe.extractMember(member); m != nil {
				decl.Members = append(decl.Members, m)
			}
		}
	}
	return decl
}

func (fe *fileExtractor) extendsName(heritage *sitter.Node) string {
	for i := 0; i < int(heritage.NamedChildCount()); i++ {
		clause := heritage.NamedChild(i)
		if clause.Type() != "extends_clause" {
			continue
		}
		value := clause.ChildByFieldName("value")
		if value == nil && clause.NamedChildCount() > 0 {
			value = clause.NamedChild(0)
		}
		if value == nil {
			return ""
		}
		switch value.Type() {
		case "identifier", "type_identifier":
			return fe.canonical(fe.text(value))
		case "member_expression":
			if prop := value.ChildByFieldName("property"); prop != nil {
				return fe.text(prop)
			}
		}
	}
	return ""
}

func (fe *fileExtractor) recordField(member *sitter.Node, info *classInfo) {
	name := member.ChildByFieldName("name")
	if name == nil || name.Type() != "property_identifier" {
		return
	}
	typ := fe.typeName(member.ChildByFieldName("type"))
	if typ == "" {
		if value := member.ChildByFieldName("value"); value != nil && value.Type() == "new_expression" {
			typ = fe.constructedType(value)
		}
	}
	info.fields[fe.text(name)] = typ
}

// extractMember returns the overload member declared by a class property,
// or nil when its key does not name an operator.
func (fe *fileExtractor) extractMember(node *sitter.Node) *parser.Member {
	key := node.ChildByFieldName("name")
	if key == nil {
		return nil
	}
	op, ok := fe.operatorKey(key)
	if !ok {
		return nil
	}

	m := &parser.Member{
		Operator: op,
		Key:      fe.text(key),
		Line:     int(node.StartPoint().Row) + 1,
		Snippet:  firstLine(fe.text(node)),
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "static" {
			m.Static = true
		}
	}
	if node.Type() == "method_definition" {
		return m
	}

	value := node.ChildByFieldName("value")
	if value == nil {
		return m
	}
	if value.Type() == "satisfies_expression" && value.NamedChildCount() > 0 {
		value = value.NamedChild(0)
	}
	if value.Type() == "as_expression" {
		last := value.Child(int(value.ChildCount()) - 1)
		m.AsConst = last != nil && last.Type() == "const"
		value = value.NamedChild(0)
	}
	if value == nil || value.Type() != "array" {
		return m
	}

	m.IsArray = true
	for i := 0; i < int(value.NamedChildCount()); i++ {
		elem := value.NamedChild(i)
		if elem.Type() == "comment" {
			continue
		}
		m.Elements = append(m.Elements, fe.extractElement(elem))
	}
	return m
}

// operatorKey canonicalizes a member key: "+", ["+"] and [Operator.PLUS]
// (through any import alias of the operator module's enum) all name Add.
func (fe *fileExtractor) operatorKey(key *sitter.Node) (operator.Operator, bool) {
	switch key.Type() {
	case "string":
		return operator.Lookup(unquote(fe.text(key)))
	case "computed_property_name":
		if key.NamedChildCount() == 0 {
			return operator.Invalid, false
		}
		expr := key.NamedChild(0)
		switch expr.Type() {
		case "string":
			return operator.Lookup(unquote(fe.text(expr)))
		case "member_expression":
			object := expr.ChildByFieldName("object")
			prop := expr.ChildByFieldName("property")
			if object == nil || prop == nil || !fe.isOperatorEnum(object) {
				return operator.Invalid, false
			}
			return operator.FromName(fe.text(prop))
		}
	}
	return operator.Invalid, false
}

func (fe *fileExtractor) isOperatorEnum(n *sitter.Node) bool {
	switch n.Type() {
	case "identifier":
		return fe.enumLocals[fe.text(n)]
	case "member_expression":
		object := n.ChildByFieldName("object")
		prop := n.ChildByFieldName("property")
		return object != nil && prop != nil && object.Type() == "identifier" &&
			fe.enumNamespaces[fe.text(object)] && fe.text(prop) == "Operator"
	}
	return false
}

func (fe *fileExtractor) extractElement(node *sitter.Node) *parser.FuncElem {
	elem := &parser.FuncElem{
		Line:    int(node.StartPoint().Row) + 1,
		Snippet: firstLine(fe.text(node)),
	}
	switch node.Type() {
	case "function_expression", "function":
		elem.IsFunction = true
	case "arrow_function":
		elem.IsFunction = true
		elem.Arrow = true
	default:
		return elem
	}

	fe.pushScope()
	defer fe.popScope()

	elem.Params = fe.bindParams(node)
	elem.ReturnType = fe.typeName(node.ChildByFieldName("return_type"))
	if elem.ReturnType == "" {
		elem.ReturnType = fe.inferReturnType(node.ChildByFieldName("body"))
	}
	return elem
}

// bindParams binds a function's parameters in the current scope and returns
// them, leaving out a leading `this` receiver parameter.
func (fe *fileExtractor) bindParams(fn *sitter.Node) []parser.Param {
	if single := fn.ChildByFieldName("parameter"); single != nil {
		name := fe.text(single)
		fe.bind(name, &binding{})
		return []parser.Param{{Name: name}}
	}
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}

	out := make([]parser.Param, 0, params.NamedChildCount())
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		if p.Type() != "required_parameter" && p.Type() != "optional_parameter" {
			continue
		}
		pattern := p.ChildByFieldName("pattern")
		if pattern == nil {
			continue
		}
		typ := fe.typeName(p.ChildByFieldName("type"))
		if pattern.Type() == "this" {
			continue
		}
		name := fe.text(pattern)
		if pattern.Type() == "identifier" {
			fe.bind(name, &binding{declared: typ, typ: typ})
		} else {
			fe.bindPattern(pattern)
		}
		out = append(out, parser.Param{Name: name, Type: typ})
	}
	return out
}

// inferReturnType types the first `return` in a function body, or reports
// "void" when the body never returns a value. Expression-bodied arrows are
// typed directly.
func (fe *fileExtractor) inferReturnType(body *sitter.Node) string {
	if body == nil {
		return ""
	}
	if body.Type() != "statement_block" {
		typ, _ := fe.exprType(body)
		return typ
	}

	var ret *sitter.Node
	var find func(n *sitter.Node)
	find = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()) && ret == nil; i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "return_statement":
				if child.NamedChildCount() > 0 {
					ret = child.NamedChild(0)
				}
			case "function_expression", "function", "arrow_function", "function_declaration",
				"class_declaration", "class", "method_definition":
				// nested bodies return for themselves
			default:
				find(child)
			}
		}
	}
	find(body)
	if ret == nil {
		return "void"
	}
	typ, _ := fe.exprType(ret)
	return typ
}

func (fe *fileExtractor) constructedType(newExpr *sitter.Node) string {
	ctor := newExpr.ChildByFieldName("constructor")
	if ctor == nil {
		return ""
	}
	switch ctor.Type() {
	case "identifier":
		return fe.canonical(fe.text(ctor))
	case "member_expression":
		if prop := ctor.ChildByFieldName("property"); prop != nil {
			return fe.text(prop)
		}
	}
	return ""
}

// typeName canonicalizes a type annotation to a nominal type name.
func (fe *fileExtractor) typeName(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "type_annotation", "parenthesized_type":
		if n.NamedChildCount() == 0 {
			return ""
		}
		return fe.typeName(n.NamedChild(0))
	case "type_identifier", "identifier":
		return fe.canonical(fe.text(n))
	case "predefined_type":
		return fe.text(n)
	case "generic_type":
		return fe.typeName(n.ChildByFieldName("name"))
	case "nested_type_identifier":
		if name := n.ChildByFieldName("name"); name != nil {
			return fe.text(name)
		}
	case "literal_type":
		if n.NamedChildCount() > 0 {
			switch n.NamedChild(0).Type() {
			case "number":
				return "number"
			case "true", "false":
				return "boolean"
			case "string":
				return "string"
			}
		}
	}
	return strings.TrimSpace(fe.text(n))
}

// canonical maps a local import alias back to the imported name.
func (fe *fileExtractor) canonical(name string) string {
	if imported, ok := fe.aliases[name]; ok {
		return imported
	}
	return name
}
