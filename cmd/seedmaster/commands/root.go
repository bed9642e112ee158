// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/seedmaster/internal/config"
)

// globalFlags are shared by all subcommands.
type globalFlags struct {
	configPath string
	verbose    bool
	logFormat  string
}

// Root returns the root command for the seedmaster CLI.
func Root() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "seedmaster",
		Short:         "Provision and bootstrap a master instance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", config.DefaultConfigFilename, "Path to configuration file")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "console", "Log format (console or json)")

	cmd.AddCommand(Setup(flags))
	cmd.AddCommand(Render(flags))
	cmd.AddCommand(Validate(flags))
	cmd.AddCommand(Init())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
