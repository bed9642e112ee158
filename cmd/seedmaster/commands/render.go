package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/seedmaster/cmd/seedmaster/handlers"
)

// Render returns the command printing a downstream configuration.
func Render(flags *globalFlags) *cobra.Command {
	var (
		instanceID int64
		address    string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the downstream configuration for a master",
		Long: `Print the configuration a master with the given id and address receives.

Nothing is created. Use it to review what setup will copy to the master.

Examples:
  seedmaster render --id 4242 --address 203.0.113.10
  seedmaster render --id 4242 --address 203.0.113.10 -o yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Render(flags.configPath, instanceID, address, output, cmd.OutOrStdout())
		},
	}

	cmd.Flags().Int64Var(&instanceID, "id", 0, "Provider ID of the master")
	cmd.Flags().StringVar(&address, "address", "", "IPv4 address of the master")
	cmd.Flags().StringVarP(&output, "output", "o", handlers.RenderJSON, "Output format (json or yaml)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("address")

	return cmd
}
