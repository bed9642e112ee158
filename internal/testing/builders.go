package testing

import (
	"slices"

	"github.com/imamik/seedmaster/internal/config"
)

// ConfigBuilder provides a fluent interface for constructing test configs.
// Each method returns a new builder (immutable) for chaining.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a ConfigBuilder with a complete, valid config.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: config.Config{
			APIKey:     "test-api-key",
			MasterName: "PTMaster",
			MasterImage: config.MasterImage{
				Region:  "nyc3",
				Size:    "s-2vcpu-4gb",
				ID:      "123456",
				SSHKeys: []config.Ref{"111"},
			},
			SlaveImage: map[string]any{
				"region": "nyc3",
				"size":   "s-1vcpu-2gb",
				"id":     "654321",
			},
			SlavesUsed:  2,
			Simulations: []any{"default"},
			Remote: config.RemoteConfig{
				User:       config.DefaultRemoteUser,
				Port:       config.DefaultRemotePort,
				Repository: config.DefaultRemoteRepository,
				Directory:  config.DefaultRemoteDirectory,
				Launch:     config.DefaultLaunchCommand,
			},
		},
	}
}

// WithMasterName sets the master name.
func (b *ConfigBuilder) WithMasterName(name string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.MasterName = name
	return newBuilder
}

// WithProvider sets the provider.
func (b *ConfigBuilder) WithProvider(provider string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Provider = provider
	return newBuilder
}

// WithSlaves sets the worker count.
func (b *ConfigBuilder) WithSlaves(count int) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.SlavesUsed = count
	return newBuilder
}

// WithSlaveNamePrefix sets the worker name prefix.
func (b *ConfigBuilder) WithSlaveNamePrefix(prefix string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.SlaveNamePrefix = prefix
	return newBuilder
}

// WithGoogleDrive enables the upload integration.
func (b *ConfigBuilder) WithGoogleDrive(secretPath string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.GoogleDrive = true
	newBuilder.cfg.GoogleDriveSecret = secretPath
	return newBuilder
}

// WithArchive sets the archive target.
func (b *ConfigBuilder) WithArchive(archive config.ArchiveConfig) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Archive = &archive
	return newBuilder
}

// Build returns the configuration.
func (b *ConfigBuilder) Build() *config.Config {
	cfg := b.clone().cfg
	return &cfg
}

func (b *ConfigBuilder) clone() *ConfigBuilder {
	cfg := b.cfg
	cfg.MasterImage.SSHKeys = slices.Clone(b.cfg.MasterImage.SSHKeys)
	cfg.SlaveImage = cloneValue(b.cfg.SlaveImage)
	cfg.Simulations = cloneValue(b.cfg.Simulations)
	if b.cfg.Archive != nil {
		archive := *b.cfg.Archive
		cfg.Archive = &archive
	}
	return &ConfigBuilder{cfg: cfg}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

// MinimalConfig returns a valid config with defaults.
func MinimalConfig() *config.Config {
	return NewConfigBuilder().Build()
}
