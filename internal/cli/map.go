package cli

import (
	"fmt"
	"strconv"

	"github.com/morozRed/overloadts/internal/fileutil"
	"github.com/morozRed/overloadts/internal/sourcemap"
	"github.com/spf13/cobra"
)

type mapResult struct {
	File      string `json:"file"`
	Direction string `json:"direction"`
	From      int    `json:"from"`
	To        int    `json:"to"`
	Length    int    `json:"length,omitempty"`
}

// RunMap translates a byte offset between a file and its rewritten text.
func RunMap(cmd *cobra.Command, args []string) error {
	offset, err := strconv.Atoi(args[1])
	if err != nil || offset < 0 {
		return fmt.Errorf("invalid offset %q", args[1])
	}
	toOriginal, err := OptionalBoolFlag(cmd, "to-original")
	if err != nil {
		return err
	}
	length, err := cmd.Flags().GetInt("length")
	if err != nil {
		return fmt.Errorf("failed to read --length flag: %w", err)
	}
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}

	rootFlag, err := OptionalStringFlag(cmd, "root")
	if err != nil {
		return err
	}
	var rootArgs []string
	if rootFlag != "" {
		rootArgs = []string{rootFlag}
	}
	ws, err := openWorkspace(cmd, rootArgs)
	if err != nil {
		return err
	}
	if err := ws.check(); err != nil {
		return err
	}

	file, err := requireLoaded(ws.session, args[0])
	if err != nil {
		return err
	}
	res, err := ws.session.Rewrite(file)
	if err != nil {
		return err
	}

	m := res.SourceMap()
	out := mapResult{File: file, From: offset}
	switch {
	case toOriginal && length > 0:
		span := m.RemapSpan(sourcemap.Span{Start: offset, Length: length})
		out.Direction, out.To, out.Length = "to-original", span.Start, span.Length
	case toOriginal:
		out.Direction, out.To = "to-original", m.TransformedToOriginal(offset)
	case length > 0:
		span := m.OriginalSpanToTransformed(sourcemap.Span{Start: offset, Length: length})
		out.Direction, out.To, out.Length = "to-transformed", span.Start, span.Length
	default:
		out.Direction, out.To = "to-transformed", m.OriginalToTransformed(offset)
	}

	if asJSON {
		return fileutil.PrintJSON(cmd.OutOrStdout(), out)
	}
	if out.Length > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d -> %d (length %d)\n", file, out.From, out.To, out.Length)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d -> %d\n", file, out.From, out.To)
	return nil
}
