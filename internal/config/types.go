package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Supported cloud providers.
const (
	ProviderDigitalOcean = "digitalocean"
	ProviderHetzner      = "hetzner"
)

// Defaults for the remote master environment.
const (
	DefaultConfigFilename   = "config.json"
	DefaultRemoteUser       = "root"
	DefaultRemotePort       = 22
	DefaultRemoteRepository = "https://github.com/frankyn/ElasticPowerTAC-Master.git"
	DefaultRemoteDirectory  = "ElasticPowerTAC-Master"
	DefaultLaunchCommand    = "python master.py"
)

// Config is the local configuration of a provisioning run.
type Config struct {
	// APIKey is the cloud provider API token. It is passed through to the
	// master untouched.
	APIKey string `json:"api-key" yaml:"api-key"`

	// Provider selects the cloud backend. Empty means DigitalOcean.
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`

	MasterName  string      `json:"master-name" yaml:"master-name"`
	MasterImage MasterImage `json:"master-image" yaml:"master-image"`

	// SlaveImage and Simulations are opaque to this tool and copied verbatim
	// into the downstream configuration.
	SlaveImage      any    `json:"slave-image" yaml:"slave-image"`
	SlaveNamePrefix string `json:"slave-name-prefix,omitempty" yaml:"slave-name-prefix,omitempty"`
	SlavesUsed      int    `json:"slaves-used" yaml:"slaves-used"`
	Simulations     any    `json:"simulations" yaml:"simulations"`

	// GoogleDrive enables the upload integration on the master.
	GoogleDrive       bool   `json:"google-drive" yaml:"google-drive"`
	GoogleDriveSecret string `json:"google-drive-secret,omitempty" yaml:"google-drive-secret,omitempty"`

	Remote  RemoteConfig   `json:"remote,omitempty" yaml:"remote,omitempty"`
	Archive *ArchiveConfig `json:"archive,omitempty" yaml:"archive,omitempty"`
}

// MasterImage is the instance template of the master.
type MasterImage struct {
	Region  string `json:"region" yaml:"region"`
	Size    string `json:"size" yaml:"size"`
	ID      Ref    `json:"id" yaml:"id"`
	SSHKeys []Ref  `json:"ssh_keys" yaml:"ssh_keys"`
}

// RemoteConfig describes how the master is reached and what runs on it.
type RemoteConfig struct {
	User       string `json:"user,omitempty" yaml:"user,omitempty"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty"`
	PrivateKey string `json:"private-key,omitempty" yaml:"private-key,omitempty"`
	Repository string `json:"repository,omitempty" yaml:"repository,omitempty"`
	Directory  string `json:"directory,omitempty" yaml:"directory,omitempty"`
	Launch     string `json:"launch,omitempty" yaml:"launch,omitempty"`
}

// ArchiveConfig points at an S3 compatible bucket receiving a copy of the
// downstream configuration.
type ArchiveConfig struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	Region    string `json:"region" yaml:"region"`
	Bucket    string `json:"bucket" yaml:"bucket"`
	AccessKey string `json:"access-key" yaml:"access-key"`
	SecretKey string `json:"secret-key" yaml:"secret-key"`
}

// Ref is a provider reference that may be written as a number (an ID) or a
// string (a slug, name or fingerprint).
type Ref string

// Int64 returns the numeric form of the reference, if it has one.
func (r Ref) Int64() (int64, bool) {
	id, err := strconv.ParseInt(string(r), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// String implements fmt.Stringer.
func (r Ref) String() string {
	return string(r)
}

// UnmarshalJSON accepts both JSON strings and JSON numbers.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Ref(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("reference must be a string or a number: %s", string(data))
	}
	*r = Ref(n.String())
	return nil
}

// MarshalJSON writes numeric references as JSON numbers.
func (r Ref) MarshalJSON() ([]byte, error) {
	if id, ok := r.Int64(); ok && strconv.FormatInt(id, 10) == string(r) {
		return []byte(r), nil
	}
	return json.Marshal(string(r))
}

// UnmarshalYAML accepts any scalar.
func (r *Ref) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: reference must be a scalar", node.Line)
	}
	*r = Ref(node.Value)
	return nil
}

// ProviderName returns the configured provider with the default applied.
func (c *Config) ProviderName() string {
	if c.Provider == "" {
		return ProviderDigitalOcean
	}
	return c.Provider
}
