package cli

import (
	"path"
	"time"

	"github.com/morozRed/overloadts/internal/fileutil"
	"github.com/morozRed/overloadts/internal/languages"
	"github.com/spf13/cobra"
)

// RunStatus shows which sources changed since the last rewrite and which
// files a rewrite would have to revisit because they import them.
func RunStatus(cmd *cobra.Command, args []string) error {
	start := time.Now()
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}
	rootPath, err := resolveRoot(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, rootPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	ignoreRules, err := LoadIgnoreRules(rootPath)
	if err != nil {
		return err
	}
	ignoreRules = append(ignoreRules, cfg.Ignore...)

	registry := languages.NewDefaultRegistry(cfg.OperatorModule)
	currentHashes, err := fileutil.ScanFileHashes(rootPath, registry, ignoreRules, func(p string) bool {
		return cfg.AllowsExtension(path.Ext(p))
	})
	if err != nil {
		return err
	}

	st := loadState(log, rootPath)
	changed := st.ChangedFiles(currentHashes)
	deleted := st.DeletedFiles(fileutil.KeySet(currentHashes))
	impacted := st.ImpactedFiles(changed, deleted)
	dependents := fileutil.Subtract(impacted, fileutil.ToSet(append(append([]string{}, changed...), deleted...)))

	summary := RunSummary{
		Mode:          "status",
		RootPath:      rootPath,
		Scanned:       len(currentHashes),
		Changed:       len(changed),
		Deleted:       len(deleted),
		Impacted:      len(impacted),
		DurationMS:    time.Since(start).Milliseconds(),
		ChangedFiles:  changed,
		DeletedFiles:  deleted,
		ImpactedFiles: dependents,
	}
	return PrintRunSummary(cmd.OutOrStdout(), summary, asJSON)
}
