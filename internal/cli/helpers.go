package cli

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"

	"github.com/morozRed/overloadts/internal/config"
	"github.com/morozRed/overloadts/internal/fileutil"
	"github.com/morozRed/overloadts/internal/logging"
	"github.com/morozRed/overloadts/internal/parser"
	"github.com/morozRed/overloadts/internal/rewrite"
	"github.com/morozRed/overloadts/internal/session"
	"github.com/morozRed/overloadts/internal/state"
	"github.com/spf13/cobra"
)

// workspace is a loaded project as every command sees it.
type workspace struct {
	root        string
	cfg         *config.Config
	log         *logging.Logger
	session     *session.Session
	parsed      *parser.ParseResult
	ignoreRules []string
}

// openWorkspace resolves the project root from args, loads configuration,
// parses every source file and registers its overloads. Diagnostics are
// handed to the logger but not flushed.
func openWorkspace(cmd *cobra.Command, args []string) (*workspace, error) {
	rootPath, err := resolveRoot(args)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(cmd, rootPath)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, err
	}

	ignoreRules, err := LoadIgnoreRules(rootPath)
	if err != nil {
		return nil, err
	}
	ignoreRules = append(ignoreRules, cfg.Ignore...)
	if cfg.OutDir != "" {
		if rel, err := filepath.Rel(rootPath, outputDir(rootPath, cfg)); err == nil && filepath.IsLocal(rel) {
			ignoreRules = append(ignoreRules, "/"+filepath.ToSlash(rel)+"/")
		}
	}

	opts, err := session.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	sess := session.New(opts)
	parsed, err := sess.LoadDirectory(rootPath, ignoreRules, func(f *parser.File) bool {
		return cfg.AllowsExtension(path.Ext(f.Path))
	})
	if err != nil {
		return nil, err
	}

	ReportParseIssues(log, parsed.Issues)
	log.Diagnostics(sess.Report().Sorted())
	log.Infof("loaded %d files, %d overloads", len(parsed.Files), len(sess.Overloads()))

	return &workspace{
		root:        rootPath,
		cfg:         cfg,
		log:         log,
		session:     sess,
		parsed:      parsed,
		ignoreRules: ignoreRules,
	}, nil
}

// check flushes warnings and stops on fatal diagnostics.
func (w *workspace) check() error {
	err := w.session.Check()
	w.log.Flush()
	if errors.Is(err, session.ErrFatalDiagnostics) {
		w.log.Finish(false)
		return session.ErrFatalDiagnostics
	}
	return err
}

func outputDir(rootPath string, cfg *config.Config) string {
	if cfg.OutDir == "" {
		return ""
	}
	if filepath.IsAbs(cfg.OutDir) {
		return cfg.OutDir
	}
	return filepath.Join(rootPath, cfg.OutDir)
}

func ReportParseIssues(log *logging.Logger, issues []parser.ParseIssue) {
	for _, issue := range issues {
		log.Warnf("%s: %s", issue.File, issue.Message)
	}
}

// buildState records what this run saw of every loaded file.
func buildState(sess *session.Session, results []*rewrite.Result) *state.State {
	overloads := make(map[string]int)
	for _, e := range sess.Overloads() {
		overloads[e.Path]++
	}

	st := state.NewState()
	for _, res := range results {
		file, ok := sess.Project().File(res.Path)
		if !ok {
			continue
		}
		st.SetFile(res.Path, state.FileState{
			Hash:         file.Hash,
			Dependencies: sess.Dependencies(res.Path),
			Overloads:    overloads[res.Path],
			Rewrites:     len(res.Rewrites),
			OutputHash:   parser.HashContent([]byte(res.Text)),
		})
	}
	return st
}

// changedSince compares the loaded files against the previous run's state.
func changedSince(prev *state.State, files []*parser.File) (changed, deleted []string) {
	hashes := make(map[string]string, len(files))
	for _, f := range files {
		hashes[f.Path] = f.Hash
	}
	return prev.ChangedFiles(hashes), prev.DeletedFiles(fileutil.KeySet(hashes))
}

func loadState(log *logging.Logger, rootPath string) *state.State {
	st, err := state.Load(rootPath)
	if err != nil {
		log.Warnf("unreadable %s (%v); treating all files as changed", state.StateFile, err)
		return state.NewState()
	}
	return st
}

func countRewrites(results []*rewrite.Result) (files, rewrites int) {
	for _, res := range results {
		if len(res.Rewrites) > 0 {
			files++
			rewrites += len(res.Rewrites)
		}
	}
	return files, rewrites
}

func summarizeFiles(results []*rewrite.Result) []FileSummary {
	var out []FileSummary
	for _, res := range results {
		if !res.Changed() {
			continue
		}
		out = append(out, FileSummary{Path: res.Path, Rewrites: res.Rewrites, Imports: res.Imports})
	}
	return out
}

func requireLoaded(sess *session.Session, file string) (string, error) {
	file = filepath.ToSlash(filepath.Clean(file))
	if _, ok := sess.Project().File(file); !ok {
		return "", fmt.Errorf("file %q is not part of the project", file)
	}
	return file, nil
}
