package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/morozRed/overloadts/internal/fileutil"
	"github.com/morozRed/overloadts/internal/logging"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// RunOverloads lists every registered overload of the project.
func RunOverloads(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}
	ws, err := openWorkspace(cmd, args)
	if err != nil {
		return err
	}
	ws.log.Flush()

	entries := ws.session.Overloads()
	out := cmd.OutOrStdout()
	if asJSON {
		return fileutil.PrintJSON(out, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "no overloads registered")
		return nil
	}

	if f, ok := out.(*os.File); !ok || !logging.IsTerminal(f) {
		pterm.DisableColor()
	}
	data := pterm.TableData{{"Operator", "Kind", "Signature", "Returns", "Overload", "Location"}}
	for _, e := range entries {
		data = append(data, []string{
			e.Op.String(),
			e.Kind.String(),
			e.Signature(),
			e.Return,
			e.Owner + "[" + strconv.Quote(e.Op.String()) + "][" + strconv.Itoa(e.Index) + "]",
			e.Path + ":" + strconv.Itoa(e.Line),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("failed to render overload table: %w", err)
	}
	fmt.Fprintln(out, table)
	return nil
}
