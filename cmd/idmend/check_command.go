package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"idmend/internal/preflight"
)

const checkIndent = "  "

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify directories and the configured feature class are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			results := preflight.RunAll(cmd.Context(), cfg)
			colorize := shouldColorize(out)
			for _, r := range results {
				writeCheckLine(out, r, colorize)
			}
			if preflight.Failed(results) {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
}

func writeCheckLine(w io.Writer, r preflight.Result, colorize bool) {
	status, color := "OK", ansiGreen
	if !r.Passed {
		status, color = "ERROR", ansiRed
	}
	line := fmt.Sprintf("%s%-*s [%s] %s", checkIndent, labelWidth+4, r.Name+":", status, r.Detail)
	if colorize {
		line = color + line + ansiReset
	}
	fmt.Fprintln(w, line)
}
