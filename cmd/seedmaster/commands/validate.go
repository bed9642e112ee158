package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/seedmaster/cmd/seedmaster/handlers"
)

// Validate returns the command checking a configuration file.
func Validate(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Validate(flags.configPath, cmd.OutOrStdout())
		},
	}
}
