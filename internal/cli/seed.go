package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/staylink/concierge/internal/inventory"
)

func init() {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a YAML or JSON fixture into the configured inventory",
		Args:  cobra.NoArgs,
		RunE:  runSeed,
	}
	cmd.Flags().StringP("file", "f", "", "Fixture file mapping tenant id to properties (required)")
	_ = cmd.MarkFlagRequired("file")
	RootCmd.AddCommand(cmd)
}

type seedSummary struct {
	Tenant     string `json:"tenant"`
	Properties int    `json:"properties"`
}

func runSeed(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")

	fixtures, err := inventory.ReadFixtures(path)
	if err != nil {
		return fmt.Errorf("read fixtures: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	store, err := inventory.Open(ctx, cfg.Inventory, newLogger(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	tenants := make([]string, 0, len(fixtures))
	for t := range fixtures {
		tenants = append(tenants, t)
	}
	slices.Sort(tenants)

	summary := make([]seedSummary, 0, len(tenants))
	for _, t := range tenants {
		if err := store.UpsertProperties(ctx, t, fixtures[t]); err != nil {
			return fmt.Errorf("seed tenant %s: %w", t, err)
		}
		summary = append(summary, seedSummary{Tenant: t, Properties: len(fixtures[t])})
	}
	return printJSON(cmd.OutOrStdout(), summary)
}
