// Package rewrite replaces operator expressions that resolve to a registered
// overload with explicit calls of that overload.
package rewrite

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/morozRed/overloadts/internal/diff"
	"github.com/morozRed/overloadts/internal/operator"
	"github.com/morozRed/overloadts/internal/overload"
	"github.com/morozRed/overloadts/internal/parser"
	"github.com/morozRed/overloadts/internal/sourcemap"
)

// Matcher resolves an operator use site to an overload entry.
type Matcher interface {
	Find(op operator.Operator, kind operator.Kind, left, right string) (*overload.Entry, bool)
}

// Rewriter rewrites files of one project against one registry.
type Rewriter struct {
	project *parser.Project
	matcher Matcher
}

func New(project *parser.Project, matcher Matcher) *Rewriter {
	return &Rewriter{project: project, matcher: matcher}
}

// Rewrite records one replaced expression.
type Rewrite struct {
	Line        int               `json:"line"`
	Op          operator.Operator `json:"operator"`
	Owner       string            `json:"owner"`
	Index       int               `json:"index"`
	Original    string            `json:"original"`
	Replacement string            `json:"replacement"`
}

// Result is the outcome of rewriting one file.
type Result struct {
	Path     string      `json:"file"`
	Original string      `json:"-"`
	Text     string      `json:"-"`
	Edits    []diff.Edit `json:"edits"`
	Rewrites []Rewrite   `json:"rewrites"`
	// Imports lists import statements added or extended and alias
	// declarations added, as written.
	Imports []string `json:"imports,omitempty"`
}

// Changed reports whether the file text differs from the original.
func (r *Result) Changed() bool {
	return r.Text != r.Original
}

// SourceMap wraps the result's edits for position translation.
func (r *Result) SourceMap() *sourcemap.SourceMap {
	return sourcemap.New(r.Edits)
}

// match is a resolved operator expression.
type match struct {
	expr  *parser.OperatorExpr
	entry *overload.Entry
}

// Rewrite resolves every operator expression of file and substitutes the
// matched ones. Expressions without a matching overload are left as
// written.
func (rw *Rewriter) Rewrite(file *parser.File) (*Result, error) {
	if file == nil {
		return nil, fmt.Errorf("rewrite: nil file")
	}
	src := string(file.Source)

	matches, err := rw.resolve(file)
	if err != nil {
		return nil, err
	}

	result := &Result{Path: file.Path, Original: src, Text: src}
	if len(matches) == 0 {
		return result, nil
	}

	imports := newImportPlan(rw.project, file, matches)
	r := &renderer{src: src, matches: matches, imports: imports}

	var subs []substitution
	for _, m := range r.outermost(0, len(src)) {
		text := r.render(m)
		subs = append(subs, substitution{start: m.expr.Start, end: m.expr.End, text: text})
	}
	for _, m := range matches {
		result.Rewrites = append(result.Rewrites, Rewrite{
			Line:        m.expr.Line,
			Op:          m.entry.Op,
			Owner:       m.entry.Owner,
			Index:       m.entry.Index,
			Original:    src[m.expr.Start:m.expr.End],
			Replacement: r.render(m),
		})
	}

	importSubs, added := imports.substitutions()
	subs = append(subs, importSubs...)
	result.Imports = added

	text, err := apply(src, subs)
	if err != nil {
		return nil, fmt.Errorf("rewrite %s: %w", file.Path, err)
	}
	result.Text = text
	result.Edits = diff.Compute(src, text)
	return result, nil
}

// resolve matches expressions in post-order so an operand's source
// expression is typed before the expression using it.
func (rw *Rewriter) resolve(file *parser.File) ([]*match, error) {
	resultTypes := make(map[*parser.OperatorExpr]string, len(file.Exprs))
	matched := make(map[*parser.OperatorExpr]bool)
	var matches []*match

	for _, expr := range file.Exprs {
		if expr.Start < 0 || expr.End > len(file.Source) || expr.Start > expr.End {
			return nil, fmt.Errorf("rewrite %s: expression span [%d, %d) out of range", file.Path, expr.Start, expr.End)
		}
		if len(expr.Operands) == 0 {
			continue
		}

		types := make([]string, len(expr.Operands))
		for i, o := range expr.Operands {
			types[i] = effectiveType(o, resultTypes, matched)
		}
		right := ""
		if len(types) > 1 {
			right = types[1]
		}

		entry, ok := rw.matcher.Find(expr.Op, expr.Kind, types[0], right)
		if !ok {
			resultTypes[expr] = builtinResult(expr.Op, types)
			continue
		}
		if entry.Op.IsInstance() {
			resultTypes[expr] = types[0]
		} else {
			resultTypes[expr] = entry.Return
		}
		matched[expr] = true
		matches = append(matches, &match{expr: expr, entry: entry})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].expr.Start != matches[j].expr.Start {
			return matches[i].expr.Start < matches[j].expr.Start
		}
		return matches[i].expr.End > matches[j].expr.End
	})
	return matches, nil
}

// effectiveType is the type an operand dispatches on: literals first, then
// the result of an overload call it evaluates to, then the inferred type,
// then the declared type of the symbol it names, and last the native result
// of the operator expression it evaluates to.
func effectiveType(o *parser.Operand, resultTypes map[*parser.OperatorExpr]string, matched map[*parser.OperatorExpr]bool) string {
	switch o.Literal {
	case parser.NumericLiteral:
		return "number"
	case parser.BooleanLiteral:
		return "boolean"
	case parser.StringLiteral:
		return "string"
	}
	if o.Source != nil && matched[o.Source] {
		if t := resultTypes[o.Source]; t != "" {
			return t
		}
	}
	if o.Type != "" {
		return o.Type
	}
	if o.DeclaredType != "" {
		return o.DeclaredType
	}
	if o.Source != nil {
		return resultTypes[o.Source]
	}
	return ""
}

// builtinResult types an operator expression the language evaluates
// natively.
func builtinResult(op operator.Operator, types []string) string {
	switch {
	case op.IsComparison(), op == operator.Not:
		return "boolean"
	case op.IsInstance():
		return types[0]
	}
	if op == operator.LogicalAnd || op == operator.LogicalOr || op == operator.Nullish {
		if len(types) == 2 && types[0] == types[1] {
			return types[0]
		}
		return ""
	}
	allNumbers := true
	for _, t := range types {
		if t == "string" && op == operator.Add {
			return "string"
		}
		if t != "number" {
			allNumbers = false
		}
	}
	if allNumbers {
		return "number"
	}
	return ""
}

type renderer struct {
	src     string
	matches []*match
	imports *importPlan
}

// outermost returns the matches inside [start, end) not nested in another
// match inside that range.
func (r *renderer) outermost(start, end int) []*match {
	var out []*match
	cursor := start
	for _, m := range r.matches {
		if m.expr.Start < cursor || m.expr.End > end {
			continue
		}
		out = append(out, m)
		cursor = m.expr.End
	}
	return out
}

// span renders src[start:end] with every match inside it replaced.
func (r *renderer) span(start, end int) string {
	var b strings.Builder
	cursor := start
	for _, m := range r.outermost(start, end) {
		b.WriteString(r.src[cursor:m.expr.Start])
		b.WriteString(r.render(m))
		cursor = m.expr.End
	}
	b.WriteString(r.src[cursor:end])
	return b.String()
}

// render builds the explicit call for a match:
//
//	Owner["+"][0](a, b)
//	Owner["-"][1](a)
//	a["+="][0].call(a, b)
//	a["++"][0].call(a)
func (r *renderer) render(m *match) string {
	args := make([]string, len(m.expr.Operands))
	for i, o := range m.expr.Operands {
		args[i] = r.span(o.Start, o.End)
	}
	member := "[" + strconv.Quote(m.entry.Op.String()) + "][" + strconv.Itoa(m.entry.Index) + "]"

	if m.entry.Static {
		return r.imports.local(m.entry) + member + "(" + strings.Join(args, ", ") + ")"
	}

	recv := args[0]
	if !m.expr.Operands[0].Simple {
		recv = "(" + recv + ")"
	}
	callArgs := append([]string{recv}, args[1:]...)
	return recv + member + ".call(" + strings.Join(callArgs, ", ") + ")"
}

// substitution replaces src[start:end] with text.
type substitution struct {
	start, end int
	text       string
}

// apply performs every substitution on a copy of src. Substitutions must
// not overlap; insertions at the same offset keep their order.
func apply(src string, subs []substitution) (string, error) {
	sort.SliceStable(subs, func(i, j int) bool { return subs[i].start < subs[j].start })

	var b strings.Builder
	b.Grow(len(src))
	cursor := 0
	for _, s := range subs {
		if s.start < cursor || s.end < s.start || s.end > len(src) {
			return "", fmt.Errorf("overlapping substitution at [%d, %d)", s.start, s.end)
		}
		b.WriteString(src[cursor:s.start])
		b.WriteString(s.text)
		cursor = s.end
	}
	b.WriteString(src[cursor:])
	return b.String(), nil
}
