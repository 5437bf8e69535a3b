// Package diff computes edit regions between an original text and its
// rewritten form.
//
// Compute is a heuristic, not an optimal edit script: rewrites are local and
// sparse, so after each mismatch a short anchor taken from the original text
// is searched for in the rewritten text and confirmed by a further run of
// matching bytes. That keeps regions tight and the scan fast.
package diff

import "strings"

// Edit maps the half-open span [OrigStart, OrigEnd) of the original text to
// [TransStart, TransEnd) of the transformed text.
type Edit struct {
	OrigStart  int `json:"origStart"`
	OrigEnd    int `json:"origEnd"`
	TransStart int `json:"transStart"`
	TransEnd   int `json:"transEnd"`
}

const (
	// AnchorLen is the length of the substring used to resynchronize.
	AnchorLen = 8
	// VerifyLen is how many bytes past the anchor must also agree.
	VerifyLen = 16
)

// Compute returns the ordered, non-overlapping edits turning original into
// transformed. Identical inputs yield no edits.
func Compute(original, transformed string) []Edit {
	var edits []Edit
	i, j := 0, 0
	for {
		for i < len(original) && j < len(transformed) && original[i] == transformed[j] {
			i++
			j++
		}
		if i == len(original) && j == len(transformed) {
			return edits
		}
		if i == len(original) || j == len(transformed) {
			return append(edits, Edit{OrigStart: i, OrigEnd: len(original), TransStart: j, TransEnd: len(transformed)})
		}

		k, jk, ok := resync(original, transformed, i, j)
		if !ok {
			return append(edits, tail(original, transformed, i, j))
		}
		edits = append(edits, Edit{OrigStart: i, OrigEnd: k, TransStart: j, TransEnd: jk})
		i, j = k, jk
	}
}

// resync finds the first original offset k >= i whose anchor occurs in
// transformed at or after j and converges there.
func resync(original, transformed string, i, j int) (int, int, bool) {
	for k := i; k+AnchorLen <= len(original); k++ {
		anchor := original[k : k+AnchorLen]
		from := j
		for from+AnchorLen <= len(transformed) {
			idx := indexFrom(transformed, anchor, from)
			if idx < 0 {
				break
			}
			if converges(original, transformed, k+AnchorLen, idx+AnchorLen) {
				return k, idx, true
			}
			from = idx + 1
		}
	}
	return 0, 0, false
}

func indexFrom(s, sub string, from int) int {
	idx := strings.Index(s[from:], sub)
	if idx < 0 {
		return -1
	}
	return from + idx
}

// converges checks that the bytes after an anchor agree for VerifyLen bytes,
// or up to the point where both texts end together.
func converges(original, transformed string, a, b int) bool {
	n := 0
	for n < VerifyLen {
		endA, endB := a+n >= len(original), b+n >= len(transformed)
		if endA || endB {
			return endA && endB
		}
		if original[a+n] != transformed[b+n] {
			return false
		}
		n++
	}
	return true
}

// tail trims the longest common suffix of the remaining text and reports
// everything before it as one final edit.
func tail(original, transformed string, i, j int) Edit {
	oe, te := len(original), len(transformed)
	for oe > i && te > j && original[oe-1] == transformed[te-1] {
		oe--
		te--
	}
	return Edit{OrigStart: i, OrigEnd: oe, TransStart: j, TransEnd: te}
}
