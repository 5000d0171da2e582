package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"refinery/internal/domain"
)

func newQuarantineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quarantine",
		Short: "Inspect quarantined records from the latest run",
	}

	cmd.AddCommand(newQuarantineListCmd())
	cmd.AddCommand(newQuarantineSummaryCmd())

	return cmd
}

func newQuarantineListCmd() *cobra.Command {
	var (
		entity string
		reason string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quarantined records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := domain.QuarantineFilter{Reason: reason, Limit: limit}
			if entity != "" {
				e, err := domain.ParseEntity(entity)
				if err != nil {
					return err
				}
				filter.Entity = e
			}

			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx, cmd, newQuietLogger())
			if err != nil {
				return err
			}
			defer cleanup()

			records, err := a.Quarantine.List(ctx, filter)
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				views := make([]quarantineRecordView, 0, len(records))
				for i := range records {
					views = append(views, newQuarantineRecordView(&records[i]))
				}
				return printJSON(os.Stdout, views)
			}

			rows := make([][]string, 0, len(records))
			for i := range records {
				rec := &records[i]
				field := rec.Field
				if field == "" {
					field = "-"
				}
				rows = append(rows, []string{
					string(rec.Entity),
					rec.Reason,
					field,
					formatPayloadValue(rec.Payload),
				})
			}
			printTable(os.Stdout, []string{"ENTITY", "REASON", "FIELD", "PAYLOAD"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&entity, "entity", "", "Filter by entity (customer, product, sales_line, customer_demo, location, category)")
	cmd.Flags().StringVar(&reason, "reason", "", "Filter by rejection reason (exact match)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of records to return")

	return cmd
}

func newQuarantineSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Count quarantined records per entity and reason",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx, cmd, newQuietLogger())
			if err != nil {
				return err
			}
			defer cleanup()

			counts, err := a.Quarantine.Summary(ctx)
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				views := make([]quarantineCountView, 0, len(counts))
				var total int64
				for _, c := range counts {
					views = append(views, quarantineCountView{
						Entity: string(c.Entity),
						Reason: c.Reason,
						Count:  c.Count,
					})
					total += c.Count
				}
				return printJSON(os.Stdout, map[string]any{
					"counts": views,
					"total":  total,
				})
			}

			rows := make([][]string, 0, len(counts))
			var total int64
			for _, c := range counts {
				rows = append(rows, []string{string(c.Entity), c.Reason, formatInt(c.Count)})
				total += c.Count
			}
			printTable(os.Stdout, []string{"ENTITY", "REASON", "COUNT"}, rows)
			_, _ = fmt.Fprintf(os.Stdout, "\nTotal: %d\n", total)
			return nil
		},
	}
}

// formatPayloadValue renders a raw payload as sorted key=value pairs so table
// output is deterministic.
func formatPayloadValue(payload map[string]string) string {
	if len(payload) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+payload[k])
	}
	return strings.Join(parts, ", ")
}
