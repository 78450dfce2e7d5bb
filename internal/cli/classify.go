package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/staylink/concierge/internal/nlu"
)

func init() {
	cmd := &cobra.Command{
		Use:   "classify <message>",
		Short: "Print the intent and entities of a guest message",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runClassify,
	}
	RootCmd.AddCommand(cmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	return printJSON(cmd.OutOrStdout(), nlu.Analyze(strings.Join(args, " ")))
}
