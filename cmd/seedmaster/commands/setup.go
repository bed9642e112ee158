package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/seedmaster/cmd/seedmaster/handlers"
	"github.com/imamik/seedmaster/internal/provisioning/master"
	"github.com/imamik/seedmaster/internal/upload"
)

// Setup returns the command provisioning the master.
//
// Environment variables:
//
//	SEEDMASTER_POLL_INTERVAL, SEEDMASTER_BOOTSTRAP_BACKOFF: loop pauses (default 1m)
//	SEEDMASTER_POLL_MAX_ATTEMPTS, SEEDMASTER_BOOTSTRAP_MAX_ATTEMPTS: loop bounds (default unbounded)
//	SEEDMASTER_DEADLINE: wall time bound of each loop
//	SEEDMASTER_SSH_DIAL_TIMEOUT: SSH connect timeout (default 10s)
func Setup(flags *globalFlags) *cobra.Command {
	opts := handlers.SetupOptions{}

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the master and launch its environment",
		Long: `Create the master instance and launch its environment.

The master is created from master-image, polled until the provider reports
every action completed, then the environment repository is cloned, the
downstream configuration is copied and the master process is started in the
background. Unreachable masters are retried until they answer.

Examples:
  # Provision using config.json in the current directory
  seedmaster setup

  # Expose progress metrics while running
  seedmaster setup -c lab.yaml --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.ConfigPath = flags.configPath
			opts.Verbose = flags.verbose
			opts.LogFormat = flags.logFormat
			return handlers.Setup(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.ArtifactPath, "artifact", master.DefaultArtifactPath, "Local path of the downstream configuration")
	cmd.Flags().StringVar(&opts.SessionPath, "session", upload.DefaultSessionPath, "Local path of the upload session")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	return cmd
}
