package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/morozRed/overloadts/internal/config"
	"github.com/morozRed/overloadts/internal/overload"
	"github.com/morozRed/overloadts/internal/parser"
)

const vec2Source = `export class Vec2 {
	constructor(public x: number, public y: number) {}

	static readonly "+" = [
		(a: Vec2, b: Vec2): Vec2 => new Vec2(a.x + b.x, a.y + b.y),
	] as const;
}
`

const mainSource = `import { Vec2 } from "./vec2";
const a = new Vec2(1, 2);
const b = new Vec2(3, 4);
const c = a + b;
`

func TestRunRewritesLoadedFiles(t *testing.T) {
	s := New(Options{})
	res, err := s.Run([]Source{
		{Path: "vec2.ts", Content: []byte(vec2Source)},
		{Path: "main.ts", Content: []byte(mainSource)},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Report.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Report.Diagnostics)
	}
	if len(res.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(res.Results))
	}

	var main string
	for _, r := range res.Results {
		if r.Path == "main.ts" {
			main = r.Text
		}
	}
	if !strings.Contains(main, `const c = Vec2["+"][0](a, b);`) {
		t.Fatalf("expected rewritten main.ts, got:\n%s", main)
	}
	if deps := s.Dependencies("main.ts"); len(deps) != 1 || deps[0] != "vec2.ts" {
		t.Fatalf("expected main.ts to depend on vec2.ts, got %v", deps)
	}
	if got := s.Overloads(); len(got) != 1 || got[0].Owner != "Vec2" {
		t.Fatalf("unexpected overloads %v", got)
	}
}

func TestRunStopsOnFatalDiagnostics(t *testing.T) {
	broken := strings.Replace(vec2Source, "] as const;", "];", 1)
	s := New(Options{})
	res, err := s.Run([]Source{
		{Path: "vec2.ts", Content: []byte(broken)},
		{Path: "main.ts", Content: []byte(mainSource)},
	})
	if !errors.Is(err, ErrFatalDiagnostics) {
		t.Fatalf("expected fatal diagnostics error, got %v", err)
	}
	if !strings.Contains(err.Error(), "must be declared `as const`") {
		t.Fatalf("expected error to carry the diagnostic, got %v", err)
	}
	if res == nil || len(res.Results) != 0 || !res.Report.Fatal(false) {
		t.Fatalf("expected a fatal report without results, got %+v", res)
	}
}

func TestWarningsAsErrors(t *testing.T) {
	// an instance-only operator declared static is a warning
	misplaced := `export class V {
	static readonly "+=" = [
		function (this: V, rhs: V): void {},
	] as const;
}
`
	if _, err := New(Options{}).Run([]Source{{Path: "v.ts", Content: []byte(misplaced)}}); err != nil {
		t.Fatalf("expected warnings to pass, got %v", err)
	}
	_, err := New(Options{WarningsAsErrors: true}).Run([]Source{{Path: "v.ts", Content: []byte(misplaced)}})
	if !errors.Is(err, ErrFatalDiagnostics) {
		t.Fatalf("expected warnings to be fatal, got %v", err)
	}
}

func TestUpdateAndRemove(t *testing.T) {
	s := New(Options{})
	if _, err := s.Load("vec2.ts", []byte(vec2Source)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := s.Load("main.ts", []byte(mainSource)); err != nil {
		t.Fatalf("load: %v", err)
	}

	stale, _, err := s.Update("main.ts", []byte(mainSource+"const d = c + a;\n"))
	if err != nil || stale {
		t.Fatalf("editing a file without overloads must not be stale: %v, %v", stale, err)
	}
	stale, _, err = s.Update("vec2.ts", []byte(vec2Source))
	if err != nil || stale {
		t.Fatalf("unchanged content must be a no-op: %v, %v", stale, err)
	}
	stale, _, err = s.Update("vec2.ts", []byte(vec2Source+"\n"))
	if err != nil || !stale {
		t.Fatalf("changed overload file must be stale: %v, %v", stale, err)
	}
	if len(s.Overloads()) != 1 {
		t.Fatalf("expected overload to be registered again, got %d", len(s.Overloads()))
	}

	if !s.Remove("vec2.ts") {
		t.Fatalf("expected removing vec2.ts to drop overloads")
	}
	res, err := s.Rewrite("main.ts")
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if res.Changed() {
		t.Fatalf("expected no rewrite without overloads, got:\n%s", res.Text)
	}
	if _, err := s.Rewrite("vec2.ts"); err == nil {
		t.Fatalf("expected error for removed file")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	a := New(Options{})
	if _, err := a.Load("vec2.ts", []byte(vec2Source)); err != nil {
		t.Fatalf("load: %v", err)
	}
	b := New(Options{})
	if len(b.Overloads()) != 0 {
		t.Fatalf("expected a fresh session to be empty")
	}
}

func TestLoadDirectory(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "src", "vec2.ts"), vec2Source)
	mustWriteFile(t, filepath.Join(root, "src", "main.ts"), mainSource)
	mustWriteFile(t, filepath.Join(root, "src", "view.tsx"), "export const x = 1;\n")
	mustWriteFile(t, filepath.Join(root, "gen", "skip.ts"), "export const y = 2;\n")

	s := New(Options{})
	result, err := s.LoadDirectory(root, []string{"gen/"}, func(f *parser.File) bool {
		return !strings.HasSuffix(f.Path, ".tsx")
	})
	if err != nil {
		t.Fatalf("load directory: %v", err)
	}
	if len(result.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(result.Files))
	}
	if err := s.Check(); err != nil {
		t.Fatalf("check: %v", err)
	}
	results, err := s.RewriteAll(nil)
	if err != nil {
		t.Fatalf("rewrite all: %v", err)
	}
	changed := 0
	for _, r := range results {
		if r.Changed() {
			changed++
		}
	}
	if changed != 1 {
		t.Fatalf("expected only main.ts to change, got %d", changed)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Match = "combined"
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Strategy != overload.MatchCombined {
		t.Fatalf("expected combined strategy, got %v", opts.Strategy)
	}

	cfg.Match = "fuzzy"
	if _, err := OptionsFromConfig(cfg); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
