package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "overloadts",
		Short: "Rewrite TypeScript operator expressions into overload calls",
		Long: `overloadts finds operator overloads declared on TypeScript classes as
static or instance members keyed by the operator ("+", "==", "+=", ...) and
rewrites every operator expression whose operand types match one of them
into an explicit call of that overload.

Configuration is read from .overloadts.yaml in the project or a parent
directory; flags override it.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to a configuration file (default: discovered .overloadts.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Console output: silent|error|warning|verbose")
	rootCmd.PersistentFlags().String("operator-module", "", "Module exporting the Operator enum used in computed member names")
	rootCmd.PersistentFlags().String("match", "", "Binary matching strategy: nested|combined")
	rootCmd.PersistentFlags().Bool("warnings-as-errors", false, "Treat declaration warnings as errors")

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create .overloadts.yaml and .overloadtsignore with defaults",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunInit,
	}

	rewriteCmd := &cobra.Command{
		Use:   "rewrite [path]",
		Short: "Rewrite every operator expression that resolves to an overload",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunRewrite,
	}
	rewriteCmd.Flags().String("out", "", "Directory receiving rewritten files (default: config outDir)")
	rewriteCmd.Flags().Bool("source-map", false, "Write a source map next to every rewritten file")
	rewriteCmd.Flags().Bool("diff", false, "Print a unified diff of every rewritten file")
	rewriteCmd.Flags().Bool("json", false, "Print machine-readable run summary")

	checkCmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Validate overload declarations and resolve operators without writing",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunCheck,
	}
	checkCmd.Flags().Bool("diff", false, "Print a unified diff of what rewrite would change")
	checkCmd.Flags().Bool("json", false, "Print machine-readable run summary")

	overloadsCmd := &cobra.Command{
		Use:   "overloads [path]",
		Short: "List registered operator overloads",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunOverloads,
	}
	overloadsCmd.Flags().Bool("json", false, "Print machine-readable overload list")

	mapCmd := &cobra.Command{
		Use:   "map <file> <offset>",
		Short: "Translate a byte offset between a source file and its rewritten text",
		Args:  cobra.ExactArgs(2),
		RunE:  RunMap,
	}
	mapCmd.Flags().String("root", "", "Project root (default: working directory)")
	mapCmd.Flags().Bool("to-original", false, "Treat the offset as a position in the rewritten text")
	mapCmd.Flags().Int("length", 0, "Translate a span of this length instead of a single offset")
	mapCmd.Flags().Bool("json", false, "Print machine-readable result")

	statusCmd := &cobra.Command{
		Use:   "status [path]",
		Short: "Show what changed since the last rewrite and what it impacts",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunStatus,
	}
	statusCmd.Flags().Bool("json", false, "Print machine-readable status output")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "overloadts %s\n", version)
		},
	}

	rootCmd.AddCommand(
		initCmd,
		rewriteCmd,
		checkCmd,
		overloadsCmd,
		mapCmd,
		statusCmd,
		versionCmd,
	)

	return rootCmd
}
