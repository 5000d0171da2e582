package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"refinery/internal/warehouse"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the warehouse schema and load the demo extract into staging",
		Long: "Creates the raw, cleansed, and quarantine schemas in the DuckDB warehouse " +
			"if they do not exist, then replaces the staging tables with the embedded " +
			"demo extract. Existing cleansed data is left untouched.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			warehousePath, _ := cmd.Root().PersistentFlags().GetString("warehouse")

			wdb, err := warehouse.Open(warehousePath)
			if err != nil {
				return fmt.Errorf("open warehouse: %w", err)
			}
			defer func() { _ = wdb.Close() }()

			ctx := cmd.Context()
			if err := warehouse.EnsureSchema(ctx, wdb); err != nil {
				return fmt.Errorf("ensure warehouse schema: %w", err)
			}
			if err := warehouse.Seed(ctx, wdb); err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]string{
					"status":    "ok",
					"warehouse": warehousePath,
				})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Seeded staging tables in %s\n", warehousePath)
			return nil
		},
	}
}
