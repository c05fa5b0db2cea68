package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"idmend/internal/geodb"
)

func newLayersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "layers",
		Short: "List the feature classes in the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return ctx.withStore(cmd.Context(), func(store *geodb.Store) error {
				layers, err := store.Layers(cmd.Context())
				if err != nil {
					return err
				}
				if len(layers) == 0 {
					fmt.Fprintln(out, "No feature classes registered in workspace")
					return nil
				}
				rows := make([][]string, 0, len(layers))
				for _, l := range layers {
					rows = append(rows, []string{l.Name, l.GeometryColumn, l.GeometryType, strconv.FormatInt(l.SRID, 10)})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Feature class", "Geometry", "Type", "SRID"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}
