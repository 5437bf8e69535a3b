package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/morozRed/overloadts/internal/diag"
)

func TestWarningsAreHeldUntilFlush(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelVerbose)

	var list diag.List
	list.Warn("vec2.ts", 4, `static "+" = [`, "overload 0 for operator + on Vec2 takes 1 parameter(s), expected 2")
	list.Error("vec2.ts", 9, `readonly "+=" = [`, "overload array for operator += on Vec2 must be declared `as const`")
	l.Diagnostics(list)

	out := buf.String()
	if !strings.Contains(out, "error vec2.ts:9: overload array") {
		t.Fatalf("expected error to print immediately, got %q", out)
	}
	if strings.Contains(out, "vec2.ts:4") {
		t.Fatalf("did not expect warning before flush, got %q", out)
	}

	l.Flush()
	if !strings.Contains(buf.String(), "warning vec2.ts:4: overload 0") {
		t.Fatalf("expected warning after flush, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "    | static \"+\" = [\n") {
		t.Fatalf("expected snippet line, got %q", buf.String())
	}

	errs, warns := l.Counts()
	if errs != 1 || warns != 1 {
		t.Fatalf("expected 1 error and 1 warning, got %d and %d", errs, warns)
	}

	l.Finish(false)
	if !strings.HasSuffix(buf.String(), "Oh no! (1 error, 1 warning)\n") {
		t.Fatalf("unexpected summary %q", buf.String())
	}
}

func TestLevelsFilterOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelError)
	l.Infof("scanning %d files", 3)
	l.Warnf("skipping %s", "x.ts")
	var list diag.List
	list.Warn("a.ts", 1, "", "w")
	l.Diagnostics(list)
	l.Flush()
	if buf.Len() != 0 {
		t.Fatalf("expected error level to hide info and warnings, got %q", buf.String())
	}

	silent := New(&buf, LevelSilent)
	list = nil
	list.Error("a.ts", 1, "", "e")
	silent.Diagnostics(list)
	silent.Finish(false)
	if buf.Len() != 0 {
		t.Fatalf("expected silent level to print nothing, got %q", buf.String())
	}
	if errs, _ := silent.Counts(); errs != 1 {
		t.Fatalf("expected silent logger to still count errors")
	}
}

func TestParseLevel(t *testing.T) {
	for raw, want := range map[string]Level{"": LevelVerbose, "Silent": LevelSilent, "warning": LevelWarning} {
		got, err := ParseLevel(raw)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", raw, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
