package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/seedmaster/cmd/seedmaster/handlers"
	"github.com/imamik/seedmaster/internal/config"
)

// Init returns the command for interactively creating a configuration.
//
// Flags:
//
//	--output, -o: Path to output file (default "config.json")
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a configuration",
		Long: `Interactively create a configuration file.

This command asks for:

  - The cloud provider and its API key
  - Master name, region, size, image and SSH keys
  - Worker image, size and count
  - Whether results are uploaded to Google Drive`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", config.DefaultConfigFilename, "Output file path")

	return cmd
}
