package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/morozRed/overloadts/internal/ignore"
)

// LanguageParser defines the interface each front end must implement
type LanguageParser interface {
	// Language returns the language name (e.g., "typescript")
	Language() string

	// Extensions returns file extensions this parser handles
	Extensions() []string

	// Parse extracts declarations and operator expressions from source code
	Parse(filename string, content []byte) (*File, error)
}

// Registry holds all registered language parsers
type Registry struct {
	parsers   map[string]LanguageParser // language name -> parser
	extToLang map[string]string         // extension -> language name
}

// NewRegistry creates a new parser registry
func NewRegistry() *Registry {
	return &Registry{
		parsers:   make(map[string]LanguageParser),
		extToLang: make(map[string]string),
	}
}

// Register adds a language parser to the registry
func (r *Registry) Register(p LanguageParser) {
	lang := p.Language()
	r.parsers[lang] = p
	for _, ext := range p.Extensions() {
		r.extToLang[ext] = lang
	}
}

// GetParserForFile returns the appropriate parser for a file
func (r *Registry) GetParserForFile(filename string) (LanguageParser, bool) {
	if strings.HasSuffix(strings.ToLower(filename), ".d.ts") {
		return nil, false
	}
	ext := strings.ToLower(filepath.Ext(filename))
	lang, ok := r.extToLang[ext]
	if !ok {
		return nil, false
	}
	parser, ok := r.parsers[lang]
	return parser, ok
}

// SupportedExtensions returns all supported file extensions
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extToLang))
	for ext := range r.extToLang {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ParseSource parses in-memory content; path is recorded as given.
func (r *Registry) ParseSource(path string, content []byte) (*File, error) {
	parser, ok := r.GetParserForFile(path)
	if !ok {
		return nil, fmt.Errorf("no parser for %s", path)
	}
	file, err := parser.Parse(path, content)
	if err != nil {
		return nil, err
	}
	file.setPath(path)
	file.Hash = HashContent(content)
	return file, nil
}

func (f *File) setPath(path string) {
	f.Path = filepath.ToSlash(path)
	for _, class := range f.Classes {
		class.Path = f.Path
	}
}

// ParseFile reads and parses a single file
func (r *Registry) ParseFile(path string) (*File, error) {
	if _, ok := r.GetParserForFile(path); !ok {
		return nil, nil // unsupported file type, skip silently
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return r.ParseSource(path, content)
}

// ParseDirectory recursively parses all supported files in a directory.
// Recorded paths are relative to root with forward slashes.
func (r *Registry) ParseDirectory(root string, ignorePaths []string) (*ParseResult, error) {
	ignoreMatcher := ignore.NewMatcher(ignorePaths)

	result := &ParseResult{
		RootPath: root,
		Files:    make([]*File, 0),
		Issues:   make([]ParseIssue, 0),
	}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			relPath := path
			if rel, relErr := filepath.Rel(root, path); relErr == nil {
				relPath = rel
			}
			result.Issues = append(result.Issues, ParseIssue{
				File:     filepath.ToSlash(relPath),
				Severity: "warning",
				Message:  fmt.Sprintf("walk error: %v", err),
			})
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, _ := filepath.Rel(root, path)
		if relPath != "." && ignoreMatcher.ShouldIgnore(relPath, info.IsDir()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}

		file, err := r.ParseFile(path)
		if err != nil {
			lang := ""
			if langParser, ok := r.GetParserForFile(path); ok {
				lang = langParser.Language()
			}
			result.Issues = append(result.Issues, ParseIssue{
				File:     filepath.ToSlash(relPath),
				Language: lang,
				Severity: "error",
				Message:  err.Error(),
			})
			return nil
		}
		if file != nil {
			file.setPath(relPath)
			if file.Partial {
				result.Issues = append(result.Issues, ParseIssue{
					File:     file.Path,
					Language: file.Language,
					Severity: "warning",
					Message:  "syntax errors; results may be incomplete",
				})
			}
			result.Files = append(result.Files, file)
		}
		return nil
	})

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})
	sort.Slice(result.Issues, func(i, j int) bool {
		if result.Issues[i].File == result.Issues[j].File {
			return result.Issues[i].Message < result.Issues[j].Message
		}
		return result.Issues[i].File < result.Issues[j].File
	})

	return result, err
}

// HashContent returns a short content hash used to detect unchanged files.
func HashContent(content []byte) string {
	h := sha256.New()
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))[:16]
}
