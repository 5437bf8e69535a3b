package diff

import (
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// Options controls unified patch rendering.
type Options struct {
	// Context is the number of context lines around each hunk; 0 means 3.
	Context int
}

// Unified renders a classic unified patch for a↦b, used to preview rewrites.
// Identical inputs render as the empty string.
func Unified(aName, bName, a, b string, opt Options) (string, error) {
	if a == b {
		return "", nil
	}
	ctx := opt.Context
	if ctx <= 0 {
		ctx = 3
	}
	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(a),
		B:        splitLinesKeepNL(b),
		FromFile: aName,
		ToFile:   bName,
		Context:  ctx,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return "", fmt.Errorf("render unified diff for %s: %w", bName, err)
	}
	return s, nil
}

func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
