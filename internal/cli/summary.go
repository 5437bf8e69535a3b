package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/morozRed/overloadts/internal/fileutil"
	"github.com/morozRed/overloadts/internal/rewrite"
)

type RunSummary struct {
	Mode          string        `json:"mode"`
	RootPath      string        `json:"root_path"`
	OutputDir     string        `json:"output_dir,omitempty"`
	Scanned       int           `json:"scanned"`
	Overloads     int           `json:"overloads"`
	Rewritten     int           `json:"rewritten"`
	Rewrites      int           `json:"rewrites"`
	Written       int           `json:"written"`
	Warnings      int           `json:"warnings"`
	Errors        int           `json:"errors"`
	Changed       int           `json:"changed"`
	Deleted       int           `json:"deleted"`
	Impacted      int           `json:"impacted"`
	DurationMS    int64         `json:"duration_ms"`
	ChangedFiles  []string      `json:"changed_files,omitempty"`
	DeletedFiles  []string      `json:"deleted_files,omitempty"`
	ImpactedFiles []string      `json:"impacted_files,omitempty"`
	Files         []FileSummary `json:"files,omitempty"`
}

// FileSummary describes one rewritten file.
type FileSummary struct {
	Path     string            `json:"file"`
	Rewrites []rewrite.Rewrite `json:"rewrites"`
	Imports  []string          `json:"imports,omitempty"`
}

func PrintRunSummary(w io.Writer, summary RunSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	if summary.Mode == "status" {
		fmt.Fprintf(w, "status: scanned=%d changed=%d deleted=%d impacted=%d duration=%dms\n",
			summary.Scanned, summary.Changed, summary.Deleted, summary.Impacted, summary.DurationMS)
	} else {
		fmt.Fprintf(w,
			"%s: scanned=%d overloads=%d rewritten=%d rewrites=%d written=%d warnings=%d errors=%d duration=%dms\n",
			summary.Mode,
			summary.Scanned,
			summary.Overloads,
			summary.Rewritten,
			summary.Rewrites,
			summary.Written,
			summary.Warnings,
			summary.Errors,
			summary.DurationMS,
		)
	}
	if summary.OutputDir != "" {
		fmt.Fprintf(w, "output: %s\n", summary.OutputDir)
	}

	if len(summary.ChangedFiles) > 0 {
		fmt.Fprintf(w, "changed files (%d): %s\n", len(summary.ChangedFiles), SummarizePaths(summary.ChangedFiles, 8))
	}
	if len(summary.DeletedFiles) > 0 {
		fmt.Fprintf(w, "deleted files (%d): %s\n", len(summary.DeletedFiles), SummarizePaths(summary.DeletedFiles, 8))
	}
	if len(summary.ImpactedFiles) > 0 {
		fmt.Fprintf(w, "impacted files (%d): %s\n", len(summary.ImpactedFiles), SummarizePaths(summary.ImpactedFiles, 8))
	}
	for _, f := range summary.Files {
		fmt.Fprintf(w, "  %s: %d rewrite(s)\n", f.Path, len(f.Rewrites))
	}

	return nil
}

func SummarizePaths(paths []string, max int) string {
	if len(paths) <= max {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(paths[:max], ", "), len(paths)-max)
}
