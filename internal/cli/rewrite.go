package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/morozRed/overloadts/internal/diff"
	"github.com/morozRed/overloadts/internal/fileutil"
	"github.com/morozRed/overloadts/internal/logging"
	"github.com/morozRed/overloadts/internal/rewrite"
	"github.com/morozRed/overloadts/internal/sourcemap"
	"github.com/spf13/cobra"
)

func RunRewrite(cmd *cobra.Command, args []string) error {
	return runPipeline(cmd, args, "rewrite")
}

// RunCheck validates declarations and resolves every operator without
// writing anything.
func RunCheck(cmd *cobra.Command, args []string) error {
	return runPipeline(cmd, args, "check")
}

func runPipeline(cmd *cobra.Command, args []string, mode string) error {
	start := time.Now()
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}
	showDiff, err := OptionalBoolFlag(cmd, "diff")
	if err != nil {
		return err
	}

	ws, err := openWorkspace(cmd, args)
	if err != nil {
		return err
	}
	if err := ws.check(); err != nil {
		return err
	}

	files := ws.session.Project().Files()
	progress := newProgressReporter(cmd.ErrOrStderr(), mode, len(files), asJSON || ws.log.Level < logging.LevelVerbose)
	results, err := ws.session.RewriteAll(progress.Update)
	if err != nil {
		ws.log.Error(err)
		ws.log.Finish(false)
		return err
	}
	progress.Done(len(results))

	prev := loadState(ws.log, ws.root)
	changed, deleted := changedSince(prev, files)
	impacted := prev.ImpactedFiles(changed, deleted)

	out := cmd.OutOrStdout()
	written := 0
	if mode == "rewrite" {
		if written, err = writeOutputs(ws, results); err != nil {
			ws.log.Error(err)
			ws.log.Finish(false)
			return err
		}
		if err := buildState(ws.session, results).Save(ws.root); err != nil {
			return fmt.Errorf("failed to persist state: %w", err)
		}
	}

	if showDiff && !asJSON {
		for _, res := range results {
			if !res.Changed() {
				continue
			}
			patch, err := diff.Unified("a/"+res.Path, "b/"+res.Path, res.Original, res.Text, diff.Options{Context: 3})
			if err != nil {
				return fmt.Errorf("failed to render diff for %s: %w", res.Path, err)
			}
			fmt.Fprint(out, patch)
		}
	}

	rewrittenFiles, rewrites := countRewrites(results)
	errs, warnings := ws.log.Counts()
	summary := RunSummary{
		Mode:          mode,
		RootPath:      ws.root,
		OutputDir:     outputDir(ws.root, ws.cfg),
		Scanned:       len(files),
		Overloads:     len(ws.session.Overloads()),
		Rewritten:     rewrittenFiles,
		Rewrites:      rewrites,
		Written:       written,
		Warnings:      warnings,
		Errors:        errs,
		Changed:       len(changed),
		Deleted:       len(deleted),
		Impacted:      len(impacted),
		DurationMS:    time.Since(start).Milliseconds(),
		ChangedFiles:  changed,
		DeletedFiles:  deleted,
		ImpactedFiles: impacted,
		Files:         summarizeFiles(results),
	}
	if mode == "check" {
		summary.OutputDir = ""
	}
	if err := PrintRunSummary(out, summary, asJSON); err != nil {
		return err
	}

	ws.log.Finish(true)
	return nil
}

// writeOutputs mirrors every loaded file into the output directory, with
// a source map next to each rewritten file when enabled. It returns how
// many files it wrote.
func writeOutputs(ws *workspace, results []*rewrite.Result) (int, error) {
	dir := outputDir(ws.root, ws.cfg)
	if dir == "" {
		return 0, nil
	}

	written := 0
	for _, res := range results {
		target := filepath.Join(dir, filepath.FromSlash(res.Path))
		text := res.Text
		if ws.cfg.SourceMaps && res.Changed() {
			mapName := filepath.Base(target) + ".map"
			text = fileutil.EnsureTrailingNewline(text) + "//# sourceMappingURL=" + mapName + "\n"

			data, err := sourcemap.Encode(sourcemap.EncodeOptions{
				File:           filepath.Base(target),
				Source:         sourceRef(target, filepath.Join(ws.root, filepath.FromSlash(res.Path))),
				Original:       res.Original,
				Transformed:    text,
				IncludeContent: true,
				Appended:       len(text) - len(res.Text),
			}, res.Edits)
			if err != nil {
				return written, fmt.Errorf("failed to encode source map for %s: %w", res.Path, err)
			}
			wrote, err := fileutil.WriteIfChangedTracked(target+".map", data)
			if err != nil {
				return written, fmt.Errorf("failed to write %s: %w", target+".map", err)
			}
			if wrote {
				written++
			}
		}

		wrote, err := fileutil.WriteIfChangedTracked(target, []byte(text))
		if err != nil {
			return written, fmt.Errorf("failed to write %s: %w", target, err)
		}
		if wrote {
			written++
			ws.log.Infof("wrote %s", target)
		}
	}
	return written, nil
}

// sourceRef is the source path recorded in a map: relative to the map's
// directory when possible.
func sourceRef(target, source string) string {
	rel, err := filepath.Rel(filepath.Dir(target), source)
	if err != nil {
		return filepath.ToSlash(source)
	}
	return filepath.ToSlash(rel)
}
