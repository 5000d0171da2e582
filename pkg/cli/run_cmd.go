package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"refinery/internal/domain"
)

func newRunCmd() *cobra.Command {
	var triggeredBy string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a batch run and wait for it to finish",
		Long: "Runs the quality gate over every entity in dependency order, replacing " +
			"the cleansed tables and the quarantine from the current staging contents. " +
			"The command blocks until the run finishes and exits non-zero if it failed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx, cmd, newQuietLogger())
			if err != nil {
				return err
			}
			defer cleanup()

			run, err := a.Batch.Run(ctx, domain.TriggerTypeManual, triggeredBy)
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				if err := printJSON(os.Stdout, newRunView(run)); err != nil {
					return err
				}
			} else {
				printRunDetail(os.Stdout, run)
			}

			if run.Status == domain.RunStatusFailed {
				return fmt.Errorf("batch run %s failed", run.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&triggeredBy, "triggered-by", "cli", "Recorded as the run's initiator")

	return cmd
}

func printRunDetail(w io.Writer, run *domain.BatchRun) {
	_, _ = fmt.Fprintf(w, "Run %s  %s\n", run.ID, run.Status)
	_, _ = fmt.Fprintf(w, "Triggered by %s (%s)\n", run.TriggeredBy, run.TriggerType)
	_, _ = fmt.Fprintf(w, "Started:  %s\n", formatTimeValue(run.StartedAt))
	_, _ = fmt.Fprintf(w, "Finished: %s\n", formatTimeValue(run.FinishedAt))
	_, _ = fmt.Fprintf(w, "Rows: %d source, %d accepted, %d rejected\n",
		run.SourceRows, run.AcceptedRows, run.RejectedRows)
	if run.ErrorMessage != nil {
		_, _ = fmt.Fprintf(w, "Error: %s\n", *run.ErrorMessage)
	}

	if len(run.Entities) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w)
	rows := make([][]string, 0, len(run.Entities))
	for i := range run.Entities {
		er := &run.Entities[i]
		rows = append(rows, []string{
			string(er.Entity),
			er.Status,
			formatInt(er.SourceRows),
			formatInt(er.AcceptedRows),
			formatInt(er.RejectedRows),
			formatReasonsValue(er.RejectReasons),
		})
	}
	printTable(w, []string{"ENTITY", "STATUS", "SOURCE", "ACCEPTED", "REJECTED", "REASONS"}, rows)
}

func formatReasonsValue(reasons map[string]int64) string {
	if len(reasons) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(reasons))
	for k := range reasons {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %d", k, reasons[k]))
	}
	return strings.Join(parts, "; ")
}
