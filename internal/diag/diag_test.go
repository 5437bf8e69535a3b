package diag

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Severity: Warning, Message: "expected 2 parameters", Path: "src/vec.ts", Line: 4, Snippet: `static "+" = [`}
	want := "src/vec.ts:4: expected 2 parameters\nstatic \"+\" = ["
	if got := d.String(); got != want {
		t.Fatalf("unexpected rendering:\n%s\nwant:\n%s", got, want)
	}

	d.Snippet = ""
	if got := d.String(); got != "src/vec.ts:4: expected 2 parameters" {
		t.Fatalf("unexpected rendering without snippet: %q", got)
	}
}

func TestReportFatalPolicy(t *testing.T) {
	if (&Report{}).Fatal(true) {
		t.Fatalf("an empty report must never be fatal")
	}

	var warnings List
	warnings.Warn("a.ts", 1, "", "duplicate overload")
	if warnings.HasErrors() {
		t.Fatalf("warnings are not errors")
	}

	r := &Report{}
	r.Add(warnings)
	if r.Fatal(false) {
		t.Fatalf("warnings alone must not be fatal")
	}
	if !r.Fatal(true) {
		t.Fatalf("warnings must be fatal when escalated")
	}

	var errs List
	errs.Error("b.ts", 2, "", "missing as const")
	r.Add(errs)
	if !r.Fatal(false) {
		t.Fatalf("errors must always be fatal")
	}
	if !strings.Contains(r.Error(), "error: b.ts:2: missing as const") {
		t.Fatalf("expected joined message to include the error, got %q", r.Error())
	}
}

func TestSeverityJSON(t *testing.T) {
	data, err := json.Marshal(Diagnostic{Severity: Error, Message: "m", Path: "p", Line: 3})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"severity":"error"`) {
		t.Fatalf("expected textual severity, got %s", data)
	}
}
