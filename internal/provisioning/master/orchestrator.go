package master

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/seedmaster/internal/config"
	"github.com/imamik/seedmaster/internal/metrics"
	"github.com/imamik/seedmaster/internal/provisioning"
	"github.com/imamik/seedmaster/internal/util/naming"
	"github.com/imamik/seedmaster/internal/util/retry"
)

// DefaultInterval is the pause between polls and between bootstrap attempts.
const DefaultInterval = time.Minute

// Orchestrator drives one master through creation and bootstrap.
// It holds no per-run state; everything a run learns is returned in Result.
type Orchestrator struct {
	provider provisioning.Provider
	channel  provisioning.RemoteChannel
	archiver provisioning.Archiver

	observer provisioning.Observer
	log      logr.Logger
	metrics  *metrics.Metrics

	pollPolicy      retry.Policy
	bootstrapPolicy retry.Policy

	artifactPath string
	sessionPath  string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver sets where progress lines go.
func WithObserver(observer provisioning.Observer) Option {
	return func(o *Orchestrator) {
		o.observer = observer
	}
}

// WithLogger sets the structured logger.
func WithLogger(log logr.Logger) Option {
	return func(o *Orchestrator) {
		o.log = log
	}
}

// WithMetrics records polls, attempts and phase durations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithPollPolicy sets the policy of the action polling loop.
func WithPollPolicy(p retry.Policy) Option {
	return func(o *Orchestrator) {
		o.pollPolicy = p
	}
}

// WithBootstrapPolicy sets the policy of the bootstrap retry loop.
func WithBootstrapPolicy(p retry.Policy) Option {
	return func(o *Orchestrator) {
		o.bootstrapPolicy = p
	}
}

// WithArchiver keeps a copy of the downstream configuration.
func WithArchiver(a provisioning.Archiver) Option {
	return func(o *Orchestrator) {
		o.archiver = a
	}
}

// WithArtifactPath overrides DefaultArtifactPath.
func WithArtifactPath(path string) Option {
	return func(o *Orchestrator) {
		o.artifactPath = path
	}
}

// WithSessionPath sets the local upload session file.
func WithSessionPath(path string) Option {
	return func(o *Orchestrator) {
		o.sessionPath = path
	}
}

// New creates an Orchestrator. Both loops default to an unbounded
// one-minute policy.
func New(provider provisioning.Provider, channel provisioning.RemoteChannel, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider:        provider,
		channel:         channel,
		observer:        provisioning.NopObserver{},
		log:             logr.Discard(),
		pollPolicy:      retry.Forever(DefaultInterval),
		bootstrapPolicy: retry.Forever(DefaultInterval),
		artifactPath:    DefaultArtifactPath,
		sessionPath:     "google-session.json",
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Result describes a finished run.
type Result struct {
	Instance          provisioning.Instance
	Address           string
	Artifact          DownstreamConfig
	ArtifactPath      string
	BootstrapAttempts int
}

// Run provisions the master described by cfg and bootstraps it.
func (o *Orchestrator) Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	var (
		inst    *provisioning.Instance
		address string
		data    []byte
		res     = &Result{ArtifactPath: o.artifactPath}
	)

	err := o.phase(provisioning.PhaseCreate, func() error {
		var err error
		inst, err = o.CreateMaster(ctx, cfg)
		return err
	})
	if err != nil {
		return nil, err
	}

	o.observer.Printf("Initialized creation process of master %s", cfg.MasterName)
	if err := o.phase(provisioning.PhaseWait, func() error {
		var err error
		inst, err = o.AwaitReady(ctx, inst)
		return err
	}); err != nil {
		return nil, err
	}
	o.observer.Printf("Finished creating master instance (%d)", inst.ID)

	if err := o.phase(provisioning.PhaseResolve, func() error {
		var err error
		address, err = o.ResolveAddress(ctx, inst)
		return err
	}); err != nil {
		return nil, err
	}
	res.Instance = *inst
	res.Address = address

	if err := o.phase(provisioning.PhaseArtifact, func() error {
		res.Artifact = BuildDownstreamConfig(cfg, inst.ID, address)
		var err error
		data, err = WriteArtifact(o.artifactPath, res.Artifact)
		return err
	}); err != nil {
		return nil, err
	}

	if o.archiver != nil {
		o.archive(ctx, cfg.MasterName, inst.ID, data)
	}

	if err := o.phase(provisioning.PhaseBootstrap, func() error {
		var err error
		res.BootstrapAttempts, err = o.Bootstrap(ctx, address, PlanFor(cfg, o.artifactPath, o.sessionPath))
		return err
	}); err != nil {
		return nil, err
	}
	o.observer.Printf("Master has been initialized")

	return res, nil
}

func (o *Orchestrator) archive(ctx context.Context, masterName string, id int64, data []byte) {
	key := naming.ArchiveKey(masterName, id, filepath.Base(o.artifactPath))
	start := time.Now()

	if err := o.archiver.Archive(ctx, key, data); err != nil {
		o.log.Error(err, "failed to archive downstream config", "key", key)
		o.observer.Event(provisioning.Event{
			Type:     provisioning.EventWarning,
			Phase:    provisioning.PhaseArchive,
			Resource: key,
			Message:  fmt.Sprintf("archive skipped: %v", err),
		})
		return
	}
	o.metrics.ObservePhase(provisioning.PhaseArchive, time.Since(start))
	o.log.V(1).Info("archived downstream config", "key", key, "instance", strconv.FormatInt(id, 10))
}

// phase times fn and reports it to the observer and the metrics.
func (o *Orchestrator) phase(name string, fn func() error) error {
	start := time.Now()
	provisioning.LogPhaseStart(o.observer, name)

	if err := fn(); err != nil {
		provisioning.LogPhaseFailed(o.observer, name, err)
		return err
	}

	elapsed := time.Since(start)
	o.metrics.ObservePhase(name, elapsed)
	provisioning.LogPhaseComplete(o.observer, name, elapsed)
	return nil
}
