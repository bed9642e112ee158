package handlers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/imamik/seedmaster/internal/config"
	"github.com/imamik/seedmaster/internal/logging"
	"github.com/imamik/seedmaster/internal/metrics"
	"github.com/imamik/seedmaster/internal/platform/digitalocean"
	"github.com/imamik/seedmaster/internal/platform/hcloud"
	"github.com/imamik/seedmaster/internal/platform/s3"
	"github.com/imamik/seedmaster/internal/platform/ssh"
	"github.com/imamik/seedmaster/internal/provisioning"
	"github.com/imamik/seedmaster/internal/provisioning/master"
	"github.com/imamik/seedmaster/internal/upload"
	"github.com/imamik/seedmaster/internal/util/retry"
)

// SetupOptions carries the flags of the setup command.
type SetupOptions struct {
	ConfigPath   string
	ArtifactPath string
	SessionPath  string
	MetricsAddr  string
	Verbose      bool
	LogFormat    string
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfig loads and validates the local configuration.
	loadConfig = config.Load

	// loadTimeouts reads retry tuning from the environment.
	loadTimeouts = config.LoadTimeouts

	// newLogger creates the structured logger.
	newLogger = logging.New

	// newObserver creates the progress printer.
	newObserver = func() provisioning.Observer {
		return provisioning.NewConsoleObserver(os.Stdout)
	}

	// newProvider creates the cloud backend selected by the configuration.
	newProvider = defaultProvider

	// newChannel creates the remote channel to the master.
	newChannel = defaultChannel

	// newArchiver creates the optional artifact archive.
	newArchiver = func(ctx context.Context, a *config.ArchiveConfig) (provisioning.Archiver, error) {
		return s3.NewArchiver(ctx, s3.Options{
			Endpoint:  a.Endpoint,
			Region:    a.Region,
			Bucket:    a.Bucket,
			AccessKey: a.AccessKey,
			SecretKey: a.SecretKey,
		})
	}

	// prepareSession authorizes the upload integration.
	prepareSession = func(ctx context.Context, secretPath, sessionPath string) error {
		_, err := (&upload.Setup{}).Prepare(ctx, secretPath, sessionPath)
		return err
	}
)

// Setup provisions the master and bootstraps its environment.
//
// The run is forward only: a failure after the instance was created leaves
// the instance in place and is reported to the caller.
func Setup(ctx context.Context, opts SetupOptions) error {
	if opts.ArtifactPath == "" {
		opts.ArtifactPath = master.DefaultArtifactPath
	}
	if opts.SessionPath == "" {
		opts.SessionPath = upload.DefaultSessionPath
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	log, err := newLogger(logging.Options{Verbose: opts.Verbose, Format: opts.LogFormat})
	if err != nil {
		return err
	}
	log = log.WithValues("run", uuid.NewString(), "provider", cfg.ProviderName())
	log.V(1).Info("loaded configuration", "path", opts.ConfigPath, "master", cfg.MasterName)

	if cfg.GoogleDrive {
		if err := prepareSession(ctx, cfg.GoogleDriveSecret, opts.SessionPath); err != nil {
			return fmt.Errorf("failed to prepare upload session: %w", err)
		}
	}

	timeouts := loadTimeouts()

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}

	channel, closeChannel, err := newChannel(cfg, timeouts)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeChannel(); err != nil {
			log.Error(err, "failed to close remote channel")
		}
	}()

	m := metrics.New()
	if opts.MetricsAddr != "" {
		stop := serveMetrics(log, m, opts.MetricsAddr)
		defer stop()
	}

	orchestratorOpts := []master.Option{
		master.WithObserver(newObserver()),
		master.WithLogger(log),
		master.WithMetrics(m),
		master.WithPollPolicy(pollPolicy(timeouts)),
		master.WithBootstrapPolicy(bootstrapPolicy(timeouts)),
		master.WithArtifactPath(opts.ArtifactPath),
		master.WithSessionPath(opts.SessionPath),
	}
	if cfg.Archive != nil {
		archiver, err := newArchiver(ctx, cfg.Archive)
		if err != nil {
			return fmt.Errorf("failed to create archive client: %w", err)
		}
		orchestratorOpts = append(orchestratorOpts, master.WithArchiver(archiver))
	}

	res, err := master.New(provider, channel, orchestratorOpts...).Run(ctx, cfg)
	if err != nil {
		return fmt.Errorf("setup of master %s failed: %w", cfg.MasterName, err)
	}

	log.Info("master ready",
		"instance", res.Instance.ID,
		"address", res.Address,
		"bootstrapAttempts", res.BootstrapAttempts)
	fmt.Println("Finished setup")
	return nil
}

func defaultProvider(cfg *config.Config) (provisioning.Provider, error) {
	switch cfg.ProviderName() {
	case config.ProviderDigitalOcean:
		return digitalocean.NewProvider(cfg.APIKey), nil
	case config.ProviderHetzner:
		return hcloud.NewProvider(cfg.APIKey), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

func defaultChannel(cfg *config.Config, timeouts *config.Timeouts) (provisioning.RemoteChannel, func() error, error) {
	sshCfg := &ssh.Config{
		Port:        cfg.Remote.Port,
		User:        cfg.Remote.User,
		DialTimeout: timeouts.SSHDial,
	}
	if cfg.Remote.PrivateKey != "" {
		key, err := ssh.LoadPrivateKey(cfg.Remote.PrivateKey)
		if err != nil {
			return nil, nil, err
		}
		sshCfg.PrivateKey = key
	}

	channel, err := ssh.NewChannel(sshCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create remote channel: %w", err)
	}
	return channel, channel.Close, nil
}

func pollPolicy(t *config.Timeouts) retry.Policy {
	return retry.Policy{Interval: t.PollInterval, MaxAttempts: t.PollMaxAttempts, Deadline: t.Deadline}
}

func bootstrapPolicy(t *config.Timeouts) retry.Policy {
	return retry.Policy{Interval: t.BootstrapBackoff, MaxAttempts: t.BootstrapMaxAttempts, Deadline: t.Deadline}
}

// serveMetrics exposes m on addr and returns a function stopping the server.
func serveMetrics(log logr.Logger, m *metrics.Metrics, addr string) func() {
	srv, errCh := m.Serve(addr)
	go func() {
		for err := range errCh {
			log.Error(err, "metrics server stopped", "addr", addr)
		}
	}()
	log.Info("serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error(err, "failed to stop metrics server")
		}
	}
}
