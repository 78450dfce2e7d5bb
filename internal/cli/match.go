package cli

import (
	"github.com/spf13/cobra"

	"github.com/staylink/concierge/internal/models"
)

func init() {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "List offers for a tenant, as the availability endpoint would",
		Args:  cobra.NoArgs,
		RunE:  runMatch,
	}
	cmd.Flags().StringP("tenant", "t", "", "Tenant id (required)")
	cmd.Flags().IntP("personas", "p", 0, "Party size")
	cmd.Flags().StringP("ubicacion", "u", "", "Location filter")
	_ = cmd.MarkFlagRequired("tenant")
	RootCmd.AddCommand(cmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	tenant, _ := cmd.Flags().GetString("tenant")
	personas, _ := cmd.Flags().GetInt("personas")
	ubicacion, _ := cmd.Flags().GetString("ubicacion")

	c, err := buildContainer(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	res, err := c.Matcher.Match(commandContext(cmd), tenant, models.SearchCriteria{
		PartySize:      personas,
		LocationFilter: ubicacion,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}
