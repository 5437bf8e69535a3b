// Package overload registers operator overload declarations and resolves
// operator-use sites to them.
package overload

import (
	"sort"

	"github.com/morozRed/overloadts/internal/diag"
	"github.com/morozRed/overloadts/internal/operator"
	"github.com/morozRed/overloadts/internal/parser"
	"github.com/morozRed/overloadts/internal/typechain"
)

// Entry is one registered overload function.
type Entry struct {
	Op     operator.Operator `json:"operator"`
	Kind   operator.Kind     `json:"kind"`
	Owner  string            `json:"owner"`
	Path   string            `json:"file"`
	Line   int               `json:"line"`
	Static bool              `json:"static"`
	// Index is the position of the function within the member's array.
	Index int `json:"index"`
	// Left and Right are set for binary entries, Operand for unary ones.
	// Instance entries take their receiver type from Owner.
	Left    string `json:"left,omitempty"`
	Right   string `json:"right,omitempty"`
	Operand string `json:"operand,omitempty"`
	Return  string `json:"returns,omitempty"`
}

// Signature renders the operand types, e.g. "(Vec2, number)".
func (e *Entry) Signature() string {
	if e.Kind == operator.Binary {
		return "(" + e.Left + ", " + e.Right + ")"
	}
	return "(" + e.Operand + ")"
}

// Options configures a Registry.
type Options struct {
	Strategy Strategy
}

// Registry stores binary, prefix-unary and postfix-unary entries in
// separate maps keyed by operator and operand types. It is scoped to one
// session and not safe for concurrent use.
type Registry struct {
	chains   *typechain.Resolver
	strategy Strategy

	binary  map[operator.Operator]map[string]map[string]*Entry
	prefix  map[operator.Operator]map[string]*Entry
	postfix map[operator.Operator]map[string]*Entry

	hashes map[string]string
	byFile map[string][]*Entry
}

// New creates an empty registry. lookup resolves base classes for the
// inheritance fallback.
func New(lookup typechain.BaseLookup, opts Options) *Registry {
	return &Registry{
		chains:   typechain.New(lookup),
		strategy: opts.Strategy,
		binary:   make(map[operator.Operator]map[string]map[string]*Entry),
		prefix:   make(map[operator.Operator]map[string]*Entry),
		postfix:  make(map[operator.Operator]map[string]*Entry),
		hashes:   make(map[string]string),
		byFile:   make(map[string][]*Entry),
	}
}

// Register scans a file's class declarations for overload members.
// Registering an unchanged file again is a no-op; a file whose content
// changed is invalidated first.
func (r *Registry) Register(file *parser.File) diag.List {
	hash := file.Hash
	if hash == "" {
		hash = parser.HashContent(file.Source)
	}
	if prev, ok := r.hashes[file.Path]; ok {
		if prev == hash {
			return nil
		}
		r.Invalidate(file.Path)
	}
	r.hashes[file.Path] = hash
	// a new file may declare classes that extend existing chains
	r.chains.Reset()

	var diags diag.List
	for _, class := range file.Classes {
		for _, member := range class.Members {
			r.registerMember(file.Path, class, member, &diags)
		}
	}
	return diags
}

func (r *Registry) registerMember(path string, class *parser.ClassDecl, m *parser.Member, diags *diag.List) {
	op := m.Operator
	wantStatic := !op.IsInstance()

	if m.Static != wantStatic {
		placement := "an instance"
		if wantStatic {
			placement = "a static"
		}
		diags.Warn(path, m.Line, m.Snippet, "overload for operator %s on %s must be %s member", op, class.Name, placement)
		return
	}
	if !m.IsArray {
		diags.Warn(path, m.Line, m.Snippet, "overload for operator %s on %s must be an array of functions", op, class.Name)
		return
	}
	if !m.AsConst {
		diags.Error(path, m.Line, m.Snippet, "overload array for operator %s on %s must be declared `as const`", op, class.Name)
		return
	}

	for i, elem := range m.Elements {
		entry, ok := r.validateElement(path, class, m, i, elem, diags)
		if !ok {
			continue
		}
		if existing := r.insert(entry); existing != nil {
			diags.Warn(path, elem.Line, elem.Snippet,
				"duplicate overload %s%s for operator %s; already registered by %s[%q][%d]",
				class.Name, entry.Signature(), op, existing.Owner, op.String(), existing.Index)
			continue
		}
		r.byFile[path] = append(r.byFile[path], entry)
	}
}

// validateElement checks one array element against the shape its operator
// requires and builds its entry.
func (r *Registry) validateElement(path string, class *parser.ClassDecl, m *parser.Member, index int, elem *parser.FuncElem, diags *diag.List) (*Entry, bool) {
	op := m.Operator
	if !elem.IsFunction {
		diags.Warn(path, elem.Line, elem.Snippet, "overload %d for operator %s on %s is not a function", index, op, class.Name)
		return nil, false
	}
	if op.IsInstance() && elem.Arrow {
		diags.Error(path, elem.Line, elem.Snippet,
			"overload %d for operator %s on %s is an arrow function; instance overloads must be plain functions", index, op, class.Name)
		return nil, false
	}

	kind, wantParams := expectedShape(op, len(elem.Params))
	if len(elem.Params) != wantParams {
		diags.Warn(path, elem.Line, elem.Snippet,
			"overload %d for operator %s on %s takes %d parameter(s), expected %d", index, op, class.Name, len(elem.Params), wantParams)
		return nil, false
	}
	for _, p := range elem.Params {
		if p.Type == "" {
			diags.Warn(path, elem.Line, elem.Snippet,
				"parameter %s of overload %d for operator %s on %s has no type annotation", p.Name, index, op, class.Name)
			return nil, false
		}
	}

	switch {
	case op.IsComparison() && elem.ReturnType != "boolean":
		diags.Warn(path, elem.Line, elem.Snippet,
			"overload %d for operator %s on %s must return boolean, got %s", index, op, class.Name, describeType(elem.ReturnType))
		return nil, false
	case op.IsInstance() && elem.ReturnType != "void":
		diags.Warn(path, elem.Line, elem.Snippet,
			"overload %d for operator %s on %s must return void, got %s", index, op, class.Name, describeType(elem.ReturnType))
		return nil, false
	}

	entry := &Entry{
		Op:     op,
		Kind:   kind,
		Owner:  class.Name,
		Path:   path,
		Line:   elem.Line,
		Static: m.Static,
		Index:  index,
		Return: elem.ReturnType,
	}
	switch {
	case kind == operator.Binary && op.IsInstance():
		entry.Left, entry.Right = class.Name, elem.Params[0].Type
	case kind == operator.Binary:
		entry.Left, entry.Right = elem.Params[0].Type, elem.Params[1].Type
	case kind == operator.PrefixUnary:
		entry.Operand = elem.Params[0].Type
	default:
		entry.Operand = class.Name
	}
	return entry, true
}

// expectedShape returns the kind and parameter count an overload of op
// must have. "+" and "-" are both binary and prefix; a one-parameter
// declaration selects the prefix form.
func expectedShape(op operator.Operator, params int) (operator.Kind, int) {
	switch {
	case op.Postfix():
		return operator.PostfixUnary, 0
	case op.IsInstance():
		return operator.Binary, 1
	case op.Prefix() && !op.Binary():
		return operator.PrefixUnary, 1
	case op.Prefix() && params == 1:
		return operator.PrefixUnary, 1
	default:
		return operator.Binary, 2
	}
}

func describeType(t string) string {
	if t == "" {
		return "an unknown type"
	}
	return t
}

// insert adds e to its map, returning the entry already occupying the
// slot instead when there is one.
func (r *Registry) insert(e *Entry) *Entry {
	switch e.Kind {
	case operator.Binary:
		byLeft, ok := r.binary[e.Op]
		if !ok {
			byLeft = make(map[string]map[string]*Entry)
			r.binary[e.Op] = byLeft
		}
		byRight, ok := byLeft[e.Left]
		if !ok {
			byRight = make(map[string]*Entry)
			byLeft[e.Left] = byRight
		}
		if existing, ok := byRight[e.Right]; ok {
			return existing
		}
		byRight[e.Right] = e
	default:
		unary := r.prefix
		if e.Kind == operator.PostfixUnary {
			unary = r.postfix
		}
		byType, ok := unary[e.Op]
		if !ok {
			byType = make(map[string]*Entry)
			unary[e.Op] = byType
		}
		if existing, ok := byType[e.Operand]; ok {
			return existing
		}
		byType[e.Operand] = e
	}
	return nil
}

// Invalidate removes every entry declared in path and clears the type-chain
// cache. It reports whether any entries were removed.
func (r *Registry) Invalidate(path string) bool {
	entries := r.byFile[path]
	for _, e := range entries {
		switch e.Kind {
		case operator.Binary:
			if byRight := r.binary[e.Op][e.Left]; byRight != nil && byRight[e.Right] == e {
				delete(byRight, e.Right)
				if len(byRight) == 0 {
					delete(r.binary[e.Op], e.Left)
				}
			}
		case operator.PrefixUnary:
			if r.prefix[e.Op][e.Operand] == e {
				delete(r.prefix[e.Op], e.Operand)
			}
		case operator.PostfixUnary:
			if r.postfix[e.Op][e.Operand] == e {
				delete(r.postfix[e.Op], e.Operand)
			}
		}
	}
	delete(r.byFile, path)
	delete(r.hashes, path)
	r.chains.Reset()
	return len(entries) > 0
}

// Entries lists every registered entry ordered by file, owner, operator,
// kind and index.
func (r *Registry) Entries() []*Entry {
	var out []*Entry
	for _, entries := range r.byFile {
		out = append(out, entries...)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Owner != b.Owner {
			return a.Owner < b.Owner
		}
		if a.Op != b.Op {
			return a.Op < b.Op
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Index < b.Index
	})
	return out
}

// Files lists the paths registered so far.
func (r *Registry) Files() []string {
	out := make([]string, 0, len(r.hashes))
	for path := range r.hashes {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	n := 0
	for _, entries := range r.byFile {
		n += len(entries)
	}
	return n
}
