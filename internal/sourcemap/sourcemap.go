// Package sourcemap translates positions between an original text and its
// rewritten form using the edit records produced by internal/diff.
package sourcemap

import "github.com/morozRed/overloadts/internal/diff"

// Span is a half-open byte range expressed as start and length.
type Span struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// SourceMap is an immutable view over an ordered edit list. Rebuild it
// whenever the underlying text pair changes.
type SourceMap struct {
	edits []diff.Edit
}

// New wraps edits, which must be ordered and non-overlapping.
func New(edits []diff.Edit) *SourceMap {
	cp := make([]diff.Edit, len(edits))
	copy(cp, edits)
	return &SourceMap{edits: cp}
}

// Edits returns a copy of the underlying edit records.
func (m *SourceMap) Edits() []diff.Edit {
	out := make([]diff.Edit, len(m.edits))
	copy(out, m.edits)
	return out
}

// OriginalToTransformed maps an original offset into the transformed text.
// Offsets inside a replaced span snap to the start of its replacement.
func (m *SourceMap) OriginalToTransformed(pos int) int {
	delta := 0
	for _, e := range m.edits {
		if pos < e.OrigStart {
			return pos + delta
		}
		if pos < e.OrigEnd {
			return e.TransStart
		}
		delta += (e.TransEnd - e.TransStart) - (e.OrigEnd - e.OrigStart)
	}
	return pos + delta
}

// TransformedToOriginal maps a transformed offset back into the original
// text. Offsets inside generated text snap to the start of what it replaced.
func (m *SourceMap) TransformedToOriginal(pos int) int {
	delta := 0
	for _, e := range m.edits {
		if pos < e.TransStart {
			return pos + delta
		}
		if pos < e.TransEnd {
			return e.OrigStart
		}
		delta += (e.OrigEnd - e.OrigStart) - (e.TransEnd - e.TransStart)
	}
	return pos + delta
}

// RemapSpan maps a span of the transformed text back onto the original,
// which is what diagnostics raised against rewritten output need.
func (m *SourceMap) RemapSpan(s Span) Span {
	start := m.TransformedToOriginal(s.Start)
	end := m.TransformedToOriginal(s.Start + s.Length)
	if end < start {
		end = start
	}
	return Span{Start: start, Length: end - start}
}

// OriginalSpanToTransformed maps a span of the original text forward.
func (m *SourceMap) OriginalSpanToTransformed(s Span) Span {
	start := m.OriginalToTransformed(s.Start)
	end := m.OriginalToTransformed(s.Start + s.Length)
	if end < start {
		end = start
	}
	return Span{Start: start, Length: end - start}
}
