package sourcemap

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/morozRed/overloadts/internal/diff"
)

// EncodeOptions names the artifact and carries the text pair.
type EncodeOptions struct {
	File        string // generated file name
	Source      string // original source name
	Original    string
	Transformed string
	// IncludeContent embeds the original text as sourcesContent.
	IncludeContent bool
	// Appended counts bytes at the end of Transformed that were added after
	// the edits were computed, such as a sourceMappingURL comment. Lines
	// starting there get no segment.
	Appended int
}

type v3 struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// Encode emits a Source Map v3 document with one segment per transformed
// line, each pointing at the original line and column the line's first byte
// came from. Columns count UTF-16 code units.
func Encode(opts EncodeOptions, edits []diff.Edit) ([]byte, error) {
	m := New(edits)
	origLines := lineStarts(opts.Original)

	var b strings.Builder
	limit := len(opts.Transformed) - opts.Appended
	prevLine, prevCol := 0, 0
	for i, start := range lineStarts(opts.Transformed) {
		if i > 0 {
			b.WriteByte(';')
		}
		if i > 0 && start >= limit {
			continue
		}
		pos := m.TransformedToOriginal(start)
		line, col := locate(opts.Original, origLines, pos)

		// generated column 0, source index 0 (single source)
		b.WriteString(vlq(0))
		b.WriteString(vlq(0))
		b.WriteString(vlq(line - prevLine))
		b.WriteString(vlq(col - prevCol))
		prevLine, prevCol = line, col
	}

	doc := v3{
		Version:  3,
		File:     opts.File,
		Sources:  []string{opts.Source},
		Names:    []string{},
		Mappings: b.String(),
	}
	if opts.IncludeContent {
		doc.SourcesContent = []string{opts.Original}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode source map for %s: %w", opts.File, err)
	}
	return data, nil
}

func lineStarts(s string) []int {
	starts := []int{0}
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// locate converts a byte offset into a 0-based line and UTF-16 column.
func locate(s string, starts []int, pos int) (line, col int) {
	if pos > len(s) {
		pos = len(s)
	}
	lo, hi := 0, len(starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if starts[mid] <= pos {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	for _, r := range s[starts[lo]:pos] {
		if r == utf8.RuneError {
			col++
			continue
		}
		col += len(utf16.Encode([]rune{r}))
	}
	return lo, col
}

const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// vlq encodes one value in the base64 VLQ form source maps use.
func vlq(v int) string {
	n := v << 1
	if v < 0 {
		n = (-v << 1) | 1
	}
	var b strings.Builder
	for {
		digit := n & 31
		n >>= 5
		if n > 0 {
			digit |= 32
		}
		b.WriteByte(base64Chars[digit])
		if n == 0 {
			return b.String()
		}
	}
}
