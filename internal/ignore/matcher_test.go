package ignore

import "testing"

func TestMatcher_DefaultAndUserOverrides(t *testing.T) {
	m := NewMatcher([]string{
		"generated/**",
		"!generated/keep/ops.ts",
		"*.spec.ts",
	})

	cases := []struct {
		path    string
		isDir   bool
		ignored bool
	}{
		{path: ".git/config", isDir: false, ignored: true},
		{path: "node_modules/boperators/index.ts", isDir: false, ignored: true},
		{path: "packages/app/node_modules/x.ts", isDir: false, ignored: true},
		{path: "dist", isDir: true, ignored: true},
		{path: "src/types.d.ts", isDir: false, ignored: true},
		{path: "generated/a/vec.ts", isDir: false, ignored: true},
		{path: "generated/keep/ops.ts", isDir: false, ignored: false},
		{path: "src/vec.spec.ts", isDir: false, ignored: true},
		{path: "src/vec.ts", isDir: false, ignored: false},
	}

	for _, tc := range cases {
		got := m.ShouldIgnore(tc.path, tc.isDir)
		if got != tc.ignored {
			t.Fatalf("path %s: expected ignored=%v, got %v", tc.path, tc.ignored, got)
		}
	}
}

func TestMatcher_NegatedDirectoryRule(t *testing.T) {
	m := NewMatcher([]string{
		"out/",
		"!out/include/",
	})

	if !m.ShouldIgnore("out/gen/file.ts", false) {
		t.Fatalf("expected out/gen/file.ts to be ignored")
	}
	if m.ShouldIgnore("out/include/file.ts", false) {
		t.Fatalf("expected out/include/file.ts to be included")
	}
}

func TestMatcher_AnchoredRule(t *testing.T) {
	m := NewMatcher([]string{"/scripts/"})

	if !m.ShouldIgnore("scripts/build.ts", false) {
		t.Fatalf("expected root scripts directory to be ignored")
	}
	if m.ShouldIgnore("src/scripts/build.ts", false) {
		t.Fatalf("anchored rule must not match nested directories")
	}
}
