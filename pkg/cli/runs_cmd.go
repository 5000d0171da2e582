package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"refinery/internal/domain"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect batch run history",
	}

	cmd.AddCommand(newRunsListCmd())
	cmd.AddCommand(newRunsShowCmd())
	cmd.AddCommand(newRunsRecoverCmd())

	return cmd
}

func newRunsListCmd() *cobra.Command {
	var (
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List batch runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := domain.RunFilter{Limit: limit}
			if status != "" {
				normalized := strings.ToUpper(status)
				switch normalized {
				case domain.RunStatusPending, domain.RunStatusRunning,
					domain.RunStatusCompleted, domain.RunStatusFailed:
					filter.Status = normalized
				default:
					return fmt.Errorf("unknown status %q: use pending, running, completed, or failed", status)
				}
			}

			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx, cmd, newQuietLogger())
			if err != nil {
				return err
			}
			defer cleanup()

			runs, err := a.Runs.ListRuns(ctx, filter)
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				views := make([]runView, 0, len(runs))
				for i := range runs {
					views = append(views, newRunView(&runs[i]))
				}
				return printJSON(os.Stdout, views)
			}

			rows := make([][]string, 0, len(runs))
			for i := range runs {
				r := &runs[i]
				rows = append(rows, []string{
					r.ID,
					r.Status,
					r.TriggerType,
					r.TriggeredBy,
					formatTimeValue(r.StartedAt),
					formatTimeValue(r.FinishedAt),
					formatInt(r.SourceRows),
					formatInt(r.AcceptedRows),
					formatInt(r.RejectedRows),
				})
			}
			printTable(os.Stdout,
				[]string{"ID", "STATUS", "TRIGGER", "BY", "STARTED", "FINISHED", "SOURCE", "ACCEPTED", "REJECTED"},
				rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by run status (pending, running, completed, failed)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of runs to return")

	return cmd
}

func newRunsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one batch run with per-entity detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx, cmd, newQuietLogger())
			if err != nil {
				return err
			}
			defer cleanup()

			run, err := a.Runs.GetRun(ctx, args[0])
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, newRunView(run))
			}
			printRunDetail(os.Stdout, run)
			return nil
		},
	}
}

func newRunsRecoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "Fail runs left PENDING or RUNNING by a crashed process",
		Long: "Marks every PENDING or RUNNING run as FAILED so a new run can acquire " +
			"the engine. Only use this when no server or run is actually live: a run " +
			"that is still executing would be marked failed underneath it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx, cmd, newQuietLogger())
			if err != nil {
				return err
			}
			defer cleanup()

			n, err := a.Batch.RecoverInterrupted(ctx)
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]int64{"recovered": n})
			}
			if n == 0 {
				_, _ = fmt.Fprintln(os.Stdout, "No interrupted runs found")
				return nil
			}
			_, _ = fmt.Fprintf(os.Stdout, "Marked %d interrupted run(s) as FAILED\n", n)
			return nil
		},
	}
}
