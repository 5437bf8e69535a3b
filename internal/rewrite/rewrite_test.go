package rewrite

import (
	"strings"
	"testing"

	"github.com/morozRed/overloadts/internal/languages"
	"github.com/morozRed/overloadts/internal/operator"
	"github.com/morozRed/overloadts/internal/overload"
	"github.com/morozRed/overloadts/internal/parser"
)

const vec2Source = `export class Vec2 {
	constructor(public x: number, public y: number) {}

	static readonly "+" = [
		(a: Vec2, b: Vec2): Vec2 => new Vec2(a.x + b.x, a.y + b.y),
	] as const;

	static readonly "*" = [
		(a: Vec2, k: number): Vec2 => new Vec2(a.x * k, a.y * k),
	] as const;

	static readonly "-" = [
		(a: Vec2, b: Vec2): Vec2 => new Vec2(a.x - b.x, a.y - b.y),
		(a: Vec2): Vec2 => new Vec2(-a.x, -a.y),
	] as const;

	static readonly "==" = [
		(a: Vec2, b: Vec2): boolean => a.x === b.x && a.y === b.y,
	] as const;

	readonly "+=" = [
		function (this: Vec2, rhs: Vec2): void { this.x += rhs.x; this.y += rhs.y; },
	] as const;

	readonly "++" = [
		function (this: Vec2): void { this.x++; this.y++; },
	] as const;
}

export class Other {}
`

type fixture struct {
	project  *parser.Project
	registry *overload.Registry
	parsers  *parser.Registry
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()
	fx := &fixture{
		project: parser.NewProject(),
		parsers: languages.NewDefaultRegistry(""),
	}
	fx.registry = overload.New(fx.project, overload.Options{})
	for path, src := range files {
		fx.load(t, path, src)
	}
	for _, f := range fx.project.Files() {
		if diags := fx.registry.Register(f); len(diags) > 0 {
			t.Fatalf("unexpected diagnostics for %s: %v", f.Path, diags)
		}
	}
	return fx
}

func (fx *fixture) load(t *testing.T, path, src string) *parser.File {
	t.Helper()
	f, err := fx.parsers.ParseSource(path, []byte(src))
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	fx.project.AddFile(f)
	return f
}

func (fx *fixture) rewrite(t *testing.T, path string) *Result {
	t.Helper()
	f, ok := fx.project.File(path)
	if !ok {
		t.Fatalf("unknown file %s", path)
	}
	res, err := New(fx.project, fx.registry).Rewrite(f)
	if err != nil {
		t.Fatalf("rewrite %s: %v", path, err)
	}
	return res
}

func TestRewriteVec2EndToEnd(t *testing.T) {
	fx := newFixture(t, map[string]string{
		"vec2.ts": vec2Source,
		"main.ts": `import { Vec2 } from "./vec2";

let a = new Vec2(1, 2);
const b = new Vec2(3, 4);
const c = new Vec2(5, 6);

const sum = a + b;
const scaled = (a + b) * 2;
const chained = a + b + c;
const viaVar = sum + c;
const neg = -a;
const same = a == b;
const untouched = a + 1;
a += b;
a++;
`,
	})

	res := fx.rewrite(t, "main.ts")
	want := []string{
		`const sum = Vec2["+"][0](a, b);`,
		`const scaled = Vec2["*"][0]((Vec2["+"][0](a, b)), 2);`,
		`const chained = Vec2["+"][0](Vec2["+"][0](a, b), c);`,
		`const viaVar = Vec2["+"][0](sum, c);`,
		`const neg = Vec2["-"][1](a);`,
		`const same = Vec2["=="][0](a, b);`,
		`const untouched = a + 1;`,
		`a["+="][0].call(a, b);`,
		`a["++"][0].call(a);`,
	}
	for _, line := range want {
		if !strings.Contains(res.Text, line+"\n") {
			t.Fatalf("expected output to contain %q, got:\n%s", line, res.Text)
		}
	}
	if !strings.HasPrefix(res.Text, `import { Vec2 } from "./vec2";`+"\n\n") {
		t.Fatalf("expected existing import to be reused unchanged, got:\n%s", res.Text)
	}
	if len(res.Imports) != 0 {
		t.Fatalf("did not expect import edits, got %v", res.Imports)
	}
	if len(res.Rewrites) != 10 {
		t.Fatalf("expected 10 rewritten expressions, got %d", len(res.Rewrites))
	}
	if len(res.Edits) == 0 || !res.Changed() {
		t.Fatalf("expected edit records for a changed file")
	}

	m := res.SourceMap()
	for _, e := range res.Edits {
		if got := m.OriginalToTransformed(e.OrigEnd); got != e.TransEnd {
			t.Fatalf("expected edit end %d to map to %d, got %d", e.OrigEnd, e.TransEnd, got)
		}
	}
}

func TestRewriteIsIdempotent(t *testing.T) {
	fx := newFixture(t, map[string]string{
		"vec2.ts": vec2Source,
		"main.ts": `import { Vec2 } from "./vec2";
let a = new Vec2(1, 2);
const b = new Vec2(3, 4);
a += a + b;
`,
	})

	first := fx.rewrite(t, "main.ts")
	if !first.Changed() {
		t.Fatalf("expected first pass to rewrite")
	}

	fx.load(t, "main.ts", first.Text)
	second := fx.rewrite(t, "main.ts")
	if second.Changed() || len(second.Edits) != 0 || len(second.Rewrites) != 0 {
		t.Fatalf("expected second pass to be a no-op, got:\n%s", second.Text)
	}
}

func TestRewriteLeavesUnmatchedExpressions(t *testing.T) {
	src := `import { Vec2 } from "./vec2";
const a = new Vec2(1, 2);
const b = a + 1;
const n = 1 + 2;
let u;
const w = u + a;
`
	fx := newFixture(t, map[string]string{"vec2.ts": vec2Source, "main.ts": src})
	res := fx.rewrite(t, "main.ts")
	if res.Text != src || len(res.Edits) != 0 {
		t.Fatalf("expected no rewrite, got:\n%s", res.Text)
	}
}

func TestRewriteImports(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		target   string
		wantText string
	}{
		{
			name: "same file",
			files: map[string]string{
				"vec2.ts": vec2Source + "export function add(a: Vec2, b: Vec2) { return a + b; }\n",
			},
			target:   "vec2.ts",
			wantText: `export function add(a: Vec2, b: Vec2) { return Vec2["+"][0](a, b); }`,
		},
		{
			name: "extend named import",
			files: map[string]string{
				"vec2.ts": vec2Source,
				"main.ts": "import { Other } from \"./vec2\";\nexport function add(a: Vec2, b: Vec2) { return a + b; }\n",
			},
			target:   "main.ts",
			wantText: "import { Other, Vec2 } from \"./vec2\";\nexport function add(a: Vec2, b: Vec2) { return Vec2[\"+\"][0](a, b); }\n",
		},
		{
			name: "extend default import",
			files: map[string]string{
				"vec2.ts": vec2Source,
				"main.ts": "import Def from \"./vec2.js\";\nexport function add(a: Vec2, b: Vec2) { return a + b; }\n",
			},
			target:   "main.ts",
			wantText: "import Def, { Vec2 } from \"./vec2.js\";\n",
		},
		{
			name: "namespace import",
			files: map[string]string{
				"vec2.ts": vec2Source,
				"main.ts": "import * as geo from \"./vec2\";\nexport function add(a: geo.Vec2, b: geo.Vec2) { return a + b; }\n",
			},
			target:   "main.ts",
			wantText: `return geo.Vec2["+"][0](a, b);`,
		},
		{
			name: "type-only import gets an aliased value import",
			files: map[string]string{
				"vec2.ts": vec2Source,
				"main.ts": "import type { Vec2 } from \"./vec2\";\nexport function add(a: Vec2, b: Vec2) { return a + b; }\n",
			},
			target: "main.ts",
			wantText: "import type { Vec2 } from \"./vec2\";\nimport { Vec2 as Vec2_1 } from \"./vec2\";\n" +
				"export function add(a: Vec2, b: Vec2) { return Vec2_1[\"+\"][0](a, b); }\n",
		},
		{
			name: "type-only specifier gets a value specifier",
			files: map[string]string{
				"vec2.ts": vec2Source,
				"main.ts": "import { type Vec2 } from \"./vec2\";\nexport function add(a: Vec2, b: Vec2) { return a + b; }\n",
			},
			target: "main.ts",
			wantText: "import { type Vec2, Vec2 as Vec2_1 } from \"./vec2\";\n" +
				"export function add(a: Vec2, b: Vec2) { return Vec2_1[\"+\"][0](a, b); }\n",
		},
		{
			name: "parameter shadows the owner",
			files: map[string]string{
				"vec2.ts": vec2Source,
				"main.ts": "import type { Vec2 as T } from \"./vec2\";\nexport function sum(a: T, b: T, Vec2: number) { return a + b; }\n",
			},
			target: "main.ts",
			wantText: "import type { Vec2 as T } from \"./vec2\";\nimport { Vec2 as Vec2_1 } from \"./vec2\";\n" +
				"export function sum(a: T, b: T, Vec2: number) { return Vec2_1[\"+\"][0](a, b); }\n",
		},
		{
			name: "local shadows an existing import",
			files: map[string]string{
				"vec2.ts": vec2Source,
				"main.ts": "import { Vec2 } from \"./vec2\";\nexport function add(a: Vec2, b: Vec2) { const Vec2 = 1; return a + b; }\n",
			},
			target: "main.ts",
			wantText: "import { Vec2, Vec2 as Vec2_1 } from \"./vec2\";\n" +
				"export function add(a: Vec2, b: Vec2) { const Vec2 = 1; return Vec2_1[\"+\"][0](a, b); }\n",
		},
		{
			name: "same-file owner shadowed by a local",
			files: map[string]string{
				"vec2.ts": vec2Source + "export function twice(v: Vec2) { const Vec2 = 2; return v + v; }\n",
			},
			target: "vec2.ts",
			wantText: "}\nconst Vec2_1 = Vec2;\n\nexport class Other {}\n" +
				"export function twice(v: Vec2) { const Vec2 = 2; return Vec2_1[\"+\"][0](v, v); }\n",
		},
		{
			name: "new import",
			files: map[string]string{
				"lib/vec2.ts": vec2Source,
				"app/main.ts": "export function add(a: Vec2, b: Vec2) { return a + b; }\n",
			},
			target:   "app/main.ts",
			wantText: "import { Vec2 } from \"../lib/vec2\";\nexport function add(a: Vec2, b: Vec2) { return Vec2[\"+\"][0](a, b); }\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, tt.files)
			res := fx.rewrite(t, tt.target)
			if !strings.Contains(res.Text, tt.wantText) {
				t.Fatalf("expected output to contain:\n%s\ngot:\n%s", tt.wantText, res.Text)
			}
		})
	}
}

type fakeMatcher map[string]*overload.Entry

func (f fakeMatcher) Find(op operator.Operator, kind operator.Kind, left, right string) (*overload.Entry, bool) {
	e, ok := f[op.String()+kind.String()+left+right]
	return e, ok
}

func TestRewriteParenthesizesComplexReceivers(t *testing.T) {
	src := "pick() ?? fallback += delta;"
	file := &parser.File{
		Path:   "m.ts",
		Source: []byte(src),
		Exprs: []*parser.OperatorExpr{{
			Op:    operator.AddAssign,
			Kind:  operator.Binary,
			Start: 0,
			End:   len(src) - 1,
			Line:  1,
			Operands: []*parser.Operand{
				{Start: 0, End: 18, Type: "V"},
				{Start: 22, End: 27, Type: "V", Simple: true},
			},
		}},
	}
	matcher := fakeMatcher{
		"+=binaryVV": {Op: operator.AddAssign, Kind: operator.Binary, Owner: "V", Path: "m.ts", Index: 2},
	}

	res, err := New(parser.NewProject(), matcher).Rewrite(file)
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	want := `(pick() ?? fallback)["+="][2].call((pick() ?? fallback), delta);`
	if res.Text != want {
		t.Fatalf("expected %s, got %s", want, res.Text)
	}
}

func TestRewriteRejectsBadSpans(t *testing.T) {
	file := &parser.File{
		Path:   "m.ts",
		Source: []byte("a + b"),
		Exprs:  []*parser.OperatorExpr{{Op: operator.Add, Start: 0, End: 50}},
	}
	if _, err := New(parser.NewProject(), fakeMatcher{}).Rewrite(file); err == nil {
		t.Fatalf("expected error for out-of-range span")
	}
}

func TestApplyRejectsOverlap(t *testing.T) {
	_, err := apply("abcdef", []substitution{{start: 0, end: 3, text: "x"}, {start: 2, end: 4, text: "y"}})
	if err == nil {
		t.Fatalf("expected overlap error")
	}
	got, err := apply("abcdef", []substitution{{start: 4, end: 6, text: "Z"}, {start: 0, end: 0, text: ">"}, {start: 1, end: 2, text: "B"}})
	if err != nil || got != ">aBcdZ" {
		t.Fatalf("unexpected result %q, %v", got, err)
	}
}
