package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Run one full concierge turn",
		Long:  "Runs classification, grounding and generation. Without OPENAI_API_KEY the reply is simulated.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
	cmd.Flags().StringP("tenant", "t", "", "Tenant id (required)")
	_ = cmd.MarkFlagRequired("tenant")
	RootCmd.AddCommand(cmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	tenant, _ := cmd.Flags().GetString("tenant")

	c, err := buildContainer(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	resp, err := c.Concierge.Handle(commandContext(cmd), tenant, strings.Join(args, " "))
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}
