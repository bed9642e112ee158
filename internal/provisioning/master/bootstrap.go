package master

import (
	"context"
	"fmt"

	"github.com/imamik/seedmaster/internal/config"
	"github.com/imamik/seedmaster/internal/provisioning"
)

// State is a stage of one bootstrap attempt.
type State string

// Bootstrap states. A failed attempt starts over at StatePreparing.
const (
	StatePreparing    State = "PREPARING"
	StateTransferring State = "TRANSFERRING"
	StateLaunching    State = "LAUNCHING"
	StateDone         State = "DONE"
)

const (
	remoteConfigFile  = "config.json"
	remoteSessionFile = "google-session.json"
	remoteLogFile     = "/tmp/master-log"
)

// Plan is the remote bootstrap sequence of a master.
type Plan struct {
	Repository string
	Directory  string
	Launch     string

	// ArtifactPath is the local downstream configuration.
	ArtifactPath string
	// SessionPath is the local upload session file. Empty skips its transfer.
	SessionPath string
}

// PlanFor builds the plan for cfg. The session is only transferred when the
// upload integration is enabled.
func PlanFor(cfg *config.Config, artifactPath, sessionPath string) Plan {
	p := Plan{
		Repository:   cfg.Remote.Repository,
		Directory:    cfg.Remote.Directory,
		Launch:       cfg.Remote.Launch,
		ArtifactPath: artifactPath,
	}
	if p.Repository == "" {
		p.Repository = config.DefaultRemoteRepository
	}
	if p.Directory == "" {
		p.Directory = config.DefaultRemoteDirectory
	}
	if p.Launch == "" {
		p.Launch = config.DefaultLaunchCommand
	}
	if cfg.GoogleDrive {
		p.SessionPath = sessionPath
	}
	return p
}

// CloneCommand fetches the master environment with its submodules.
func (p Plan) CloneCommand() string {
	return "git clone --recursive " + p.Repository
}

// RemoteConfigPath is where the downstream configuration lands.
func (p Plan) RemoteConfigPath() string {
	return fmt.Sprintf("~/%s/%s", p.Directory, remoteConfigFile)
}

// RemoteSessionPath is where the upload session lands.
func (p Plan) RemoteSessionPath() string {
	return fmt.Sprintf("~/%s/%s", p.Directory, remoteSessionFile)
}

// LaunchCommand starts the master detached from the session: stdin closed,
// output redirected, backgrounded.
func (p Plan) LaunchCommand() string {
	return fmt.Sprintf("cd ~/%s/; %s < /dev/null > %s 2>&1 &", p.Directory, p.Launch, remoteLogFile)
}

type step struct {
	state State
	name  string
	run   func(ctx context.Context, ch provisioning.RemoteChannel, host string) error
}

func (p Plan) steps() []step {
	steps := []step{
		{
			state: StatePreparing,
			name:  "clone",
			run: func(ctx context.Context, ch provisioning.RemoteChannel, host string) error {
				return ch.Execute(ctx, host, p.CloneCommand())
			},
		},
		{
			state: StateTransferring,
			name:  "transfer config",
			run: func(ctx context.Context, ch provisioning.RemoteChannel, host string) error {
				return ch.Transfer(ctx, p.ArtifactPath, host, p.RemoteConfigPath())
			},
		},
	}
	if p.SessionPath != "" {
		steps = append(steps, step{
			state: StateTransferring,
			name:  "transfer session",
			run: func(ctx context.Context, ch provisioning.RemoteChannel, host string) error {
				return ch.Transfer(ctx, p.SessionPath, host, p.RemoteSessionPath())
			},
		})
	}
	return append(steps, step{
		state: StateLaunching,
		name:  "launch",
		run: func(ctx context.Context, ch provisioning.RemoteChannel, host string) error {
			return ch.Execute(ctx, host, p.LaunchCommand())
		},
	})
}

// Bootstrap runs the plan against host until one attempt gets through every
// step. A channel failure aborts the attempt and the whole sequence restarts
// after the bootstrap back-off. A remote command exiting non-zero is logged
// and does not abort, so a clone into an existing directory does not block
// a retried attempt.
//
// It returns the number of attempts made.
func (o *Orchestrator) Bootstrap(ctx context.Context, host string, plan Plan) (int, error) {
	steps := plan.steps()
	attempts := 0

	err := o.bootstrapPolicy.Do(ctx, func(ctx context.Context, attempt int) error {
		attempts = attempt
		err := o.runAttempt(ctx, host, steps, attempt)
		o.metrics.RecordBootstrapAttempt(err)
		if err == nil {
			return nil
		}

		o.log.Info("bootstrap attempt failed", "host", host, "attempt", attempt, "error", err.Error())
		if o.willRetry(o.bootstrapPolicy.MaxAttempts, attempt) && ctx.Err() == nil {
			provisioning.LogRetry(o.observer, provisioning.PhaseBootstrap, attempt, o.bootstrapPolicy.Interval,
				fmt.Sprintf("unable to reach master %s", host))
		}
		return err
	})
	if err != nil {
		return attempts, fmt.Errorf("bootstrap of %s: %w", host, err)
	}
	return attempts, nil
}

func (o *Orchestrator) runAttempt(ctx context.Context, host string, steps []step, attempt int) error {
	log := o.log.WithValues("host", host, "attempt", attempt)

	for _, s := range steps {
		log.V(1).Info("bootstrap step", "state", string(s.state), "step", s.name)
		if err := s.run(ctx, o.channel, host); err != nil {
			if provisioning.IsCommandError(err) {
				log.Info("remote command failed, continuing", "step", s.name, "error", err.Error())
				continue
			}
			return fmt.Errorf("%s (%s): %w", s.name, s.state, err)
		}
	}

	log.V(1).Info("bootstrap step", "state", string(StateDone))
	return nil
}

func (o *Orchestrator) willRetry(maxAttempts, attempt int) bool {
	return maxAttempts <= 0 || attempt < maxAttempts
}
