package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"idmend/internal/dedupe"
	"idmend/internal/geodb"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Report duplicate identifiers without editing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			return ctx.withStore(cmd.Context(), func(store *geodb.Store) error {
				fc, err := store.FeatureClass(cmd.Context(), featureClassRef(cfg))
				if err != nil {
					return err
				}
				maxID, err := dedupe.ScanMaxID(cmd.Context(), store, fc)
				if err != nil {
					return err
				}
				det, err := dedupe.FindDuplicates(cmd.Context(), store, fc)
				if err != nil {
					return err
				}

				writeReportHeader(out, cfg.WorkspaceLabel(), dedupe.Report{
					FeatureClass: fc.Name(),
					IDField:      fc.IDField().Name,
					MaxID:        maxID,
					Detection:    det,
				})
				writeField(out, "Distinct values", formatCount(len(det.Seen)))
				if len(det.Groups) == 0 {
					fmt.Fprintln(out)
					writeOutcome(out, outcomeOK, "No duplicate identifiers found", shouldColorize(out))
					return nil
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderGroups(det.Groups))
				writeOutcome(out, outcomeWarn, fmt.Sprintf("Run `idmend fix` to reassign %s %s",
					formatCount(len(det.Duplicates)), plural(len(det.Duplicates), "record", "records")), shouldColorize(out))
				return nil
			})
		},
	}
}
