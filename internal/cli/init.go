package cli

import (
	"fmt"
	"path/filepath"

	"github.com/morozRed/overloadts/internal/config"
	"github.com/morozRed/overloadts/internal/fileutil"
	"github.com/spf13/cobra"
)

const defaultIgnoreRules = `# Paths overloadts should not scan, one gitignore-style rule per line.
# node_modules/, dist/, build/ and *.d.ts are always ignored.
`

// RunInit writes a default configuration and ignore file, leaving existing
// ones untouched.
func RunInit(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveRoot(args)
	if err != nil {
		return err
	}

	data, err := config.Default().Marshal()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, f := range []struct {
		name string
		data []byte
	}{
		{config.FileName, data},
		{IgnoreFile, []byte(defaultIgnoreRules)},
	} {
		path := filepath.Join(rootPath, f.name)
		wrote, err := fileutil.WriteIfMissing(path, f.data, 0644)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		if wrote {
			fmt.Fprintf(out, "created %s\n", path)
		} else {
			fmt.Fprintf(out, "kept existing %s\n", path)
		}
	}
	return nil
}
