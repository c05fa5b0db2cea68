package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"idmend/internal/dedupe"
	"idmend/internal/geodb"
	"idmend/internal/logging"
	"idmend/internal/runlock"
)

func newFixCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Give every duplicate identifier a new unique value",
		Long: "Scan the configured feature class for the highest numeric identifier, find every row\n" +
			"whose identifier repeats an earlier row, and assign those rows max+1, max+2, ... in one\n" +
			"edit session. Nothing is saved unless every update succeeds.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			runCtx := logging.WithRunID(cmd.Context(), uuid.NewString())
			logger = logging.WithContext(runCtx, logger).With(
				logging.String(logging.FieldWorkspace, cfg.WorkspaceLabel()),
			)

			if !dryRun {
				lock, err := runlock.Acquire(cfg.Paths.StateDir, cfg.Dataset.Workspace, cfg.Dataset.FeatureClass)
				if err != nil {
					return err
				}
				defer func() {
					if err := lock.Release(); err != nil {
						logger.Warn("release run lock failed", logging.Error(err))
					}
				}()
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			return ctx.withStore(runCtx, func(store *geodb.Store) error {
				report, err := dedupe.Run(runCtx, dedupe.FromStore(store), dedupe.Options{
					FeatureClass: featureClassRef(cfg),
					DryRun:       dryRun,
					Logger:       logger,
				})
				if report.FeatureClass != "" {
					writeReportHeader(out, cfg.WorkspaceLabel(), report)
				}
				if err != nil {
					var rwErr *dedupe.RewriteError
					if errors.As(err, &rwErr) {
						writeOutcome(out, outcomeError, "Rewrite failed; no changes were saved", colorize)
					}
					return err
				}

				if len(report.Assignments) > 0 {
					fmt.Fprintln(out)
					fmt.Fprintln(out, renderAssignments(report.Assignments))
				}

				n := len(report.Assignments)
				switch {
				case n == 0:
					writeOutcome(out, outcomeOK, "No duplicate identifiers found", colorize)
				case report.DryRun:
					writeOutcome(out, outcomeWarn, fmt.Sprintf("Dry run: %s %s would be updated (last identifier %s)",
						formatCount(n), plural(n, "record", "records"), formatID(report.FinalID)), colorize)
				default:
					writeOutcome(out, outcomeOK, fmt.Sprintf("Updated %s %s (last identifier %s)",
						formatCount(report.Updated), plural(report.Updated, "record", "records"), formatID(report.FinalID)), colorize)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report the planned changes without editing")
	return cmd
}
