// Package session ties the front end, the overload registry and the
// rewriter together for one project. A Session replaces process-wide
// state: independent sessions never share registrations.
package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/morozRed/overloadts/internal/config"
	"github.com/morozRed/overloadts/internal/diag"
	"github.com/morozRed/overloadts/internal/languages"
	"github.com/morozRed/overloadts/internal/overload"
	"github.com/morozRed/overloadts/internal/parser"
	"github.com/morozRed/overloadts/internal/rewrite"
)

// ErrFatalDiagnostics is returned when declaration diagnostics stop a run
// before any file is rewritten.
var ErrFatalDiagnostics = errors.New("overload declarations have errors")

// Options configures a Session.
type Options struct {
	OperatorModule   string
	Strategy         overload.Strategy
	WarningsAsErrors bool
}

// OptionsFromConfig maps a project configuration onto session options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	strategy, err := overload.ParseStrategy(cfg.Match)
	if err != nil {
		return Options{}, err
	}
	return Options{
		OperatorModule:   cfg.OperatorModule,
		Strategy:         strategy,
		WarningsAsErrors: cfg.WarningsAsErrors,
	}, nil
}

// Session owns one project, one registry and one rewriter. Calls must be
// serialized by the caller.
type Session struct {
	opts     Options
	parsers  *parser.Registry
	project  *parser.Project
	registry *overload.Registry
	rewriter *rewrite.Rewriter

	diags map[string]diag.List
}

func New(opts Options) *Session {
	project := parser.NewProject()
	registry := overload.New(project, overload.Options{Strategy: opts.Strategy})
	return &Session{
		opts:     opts,
		parsers:  languages.NewDefaultRegistry(opts.OperatorModule),
		project:  project,
		registry: registry,
		rewriter: rewrite.New(project, registry),
		diags:    make(map[string]diag.List),
	}
}

// Source is one in-memory input file.
type Source struct {
	Path    string
	Content []byte
}

// Load parses content and registers the file's overload declarations.
func (s *Session) Load(path string, content []byte) (diag.List, error) {
	file, err := s.parsers.ParseSource(path, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s.LoadFile(file), nil
}

// LoadFile adds an already parsed file and registers its declarations.
// Loading an unchanged file again keeps its earlier diagnostics.
func (s *Session) LoadFile(file *parser.File) diag.List {
	if prev, ok := s.project.File(file.Path); ok && file.Hash != "" && prev.Hash == file.Hash {
		return s.diags[file.Path]
	}
	s.project.AddFile(file)
	diags := s.registry.Register(file)
	s.diags[file.Path] = diags
	return diags
}

// LoadDirectory parses every supported file under root and registers all
// of them. Files are added to the project before any registration.
func (s *Session) LoadDirectory(root string, ignoreRules []string, keep func(*parser.File) bool) (*parser.ParseResult, error) {
	result, err := s.parsers.ParseDirectory(root, ignoreRules)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source files: %w", err)
	}
	if keep != nil {
		kept := result.Files[:0]
		for _, f := range result.Files {
			if keep(f) {
				kept = append(kept, f)
			}
		}
		result.Files = kept
	}

	for _, f := range result.Files {
		s.project.AddFile(f)
	}
	for _, f := range result.Files {
		s.diags[f.Path] = s.registry.Register(f)
	}
	return result, nil
}

// Update replaces a file after an edit. stale reports whether the old
// version had registered overloads, in which case rewrites of other files
// may now be out of date.
func (s *Session) Update(path string, content []byte) (stale bool, diags diag.List, err error) {
	file, err := s.parsers.ParseSource(path, content)
	if err != nil {
		return false, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if prev, ok := s.project.File(file.Path); ok && prev.Hash == file.Hash {
		return false, s.diags[file.Path], nil
	}

	stale = s.registry.Invalidate(file.Path)
	s.project.AddFile(file)
	diags = s.registry.Register(file)
	s.diags[file.Path] = diags
	return stale, diags, nil
}

// Remove forgets a file. It reports whether the file had registered
// overloads.
func (s *Session) Remove(path string) bool {
	path = filepath.ToSlash(path)
	s.project.RemoveFile(path)
	delete(s.diags, path)
	return s.registry.Invalidate(path)
}

// Report collects the current diagnostics of every loaded file.
func (s *Session) Report() *diag.Report {
	paths := make([]string, 0, len(s.diags))
	for path := range s.diags {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	report := &diag.Report{}
	for _, path := range paths {
		report.Add(s.diags[path])
	}
	return report
}

// Check returns ErrFatalDiagnostics, wrapped with every message, when the
// current diagnostics must stop rewriting.
func (s *Session) Check() error {
	report := s.Report()
	if report.Fatal(s.opts.WarningsAsErrors) {
		return fmt.Errorf("%w:\n%s", ErrFatalDiagnostics, report.Error())
	}
	return nil
}

// Rewrite rewrites one loaded file.
func (s *Session) Rewrite(path string) (*rewrite.Result, error) {
	file, ok := s.project.File(path)
	if !ok {
		return nil, fmt.Errorf("file %s is not loaded", path)
	}
	return s.rewriter.Rewrite(file)
}

// RewriteAll rewrites every loaded file in path order, calling progress
// after each one when it is non-nil.
func (s *Session) RewriteAll(progress func(path string, done int)) ([]*rewrite.Result, error) {
	files := s.project.Files()
	results := make([]*rewrite.Result, 0, len(files))
	for i, f := range files {
		res, err := s.rewriter.Rewrite(f)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
		if progress != nil {
			progress(f.Path, i+1)
		}
	}
	return results, nil
}

// RunResult is the outcome of a batch run.
type RunResult struct {
	Report  *diag.Report
	Results []*rewrite.Result
}

// Run loads every source, then rewrites all of them unless the collected
// diagnostics are fatal. A fatal run returns the report together with
// ErrFatalDiagnostics.
func (s *Session) Run(sources []Source) (*RunResult, error) {
	for _, src := range sources {
		if _, err := s.Load(src.Path, src.Content); err != nil {
			return nil, err
		}
	}

	result := &RunResult{Report: s.Report()}
	if err := s.Check(); err != nil {
		return result, err
	}

	results, err := s.RewriteAll(nil)
	if err != nil {
		return result, err
	}
	result.Results = results
	return result, nil
}

// Overloads lists every registered overload.
func (s *Session) Overloads() []*overload.Entry {
	return s.registry.Entries()
}

// Project exposes the loaded files.
func (s *Session) Project() *parser.Project {
	return s.project
}

// Dependencies returns the project files that path imports.
func (s *Session) Dependencies(path string) []string {
	file, ok := s.project.File(path)
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var deps []string
	for _, imp := range file.Imports {
		resolved, ok := s.project.ResolveModule(file.Path, imp.Module)
		if !ok || seen[resolved] {
			continue
		}
		seen[resolved] = true
		deps = append(deps, resolved)
	}
	sort.Strings(deps)
	return deps
}
