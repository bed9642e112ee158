package master

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/imamik/seedmaster/internal/config"
	"github.com/imamik/seedmaster/internal/util/naming"
)

// DefaultArtifactPath is where the downstream configuration is written
// before it is transferred.
const DefaultArtifactPath = "master.config.json"

// DownstreamConfig is the configuration handed to the master environment.
type DownstreamConfig struct {
	LocalIP     string `json:"local-ip"`
	SlaveName   string `json:"slave-name"`
	SlaveImage  any    `json:"slave-image"`
	APIKey      string `json:"api-key"`
	SlavesUsed  int    `json:"slaves-used"`
	Simulations any    `json:"simulations"`
	GoogleDrive bool   `json:"google-drive"`
	// MasterDropletID is only set when GoogleDrive is enabled.
	MasterDropletID *int64 `json:"master-droplet-id,omitempty"`
}

// BuildDownstreamConfig derives the downstream configuration of the master
// with the given ID and address. It performs no I/O and does not modify cfg;
// the opaque slave image and simulation specs are deep copies.
func BuildDownstreamConfig(cfg *config.Config, instanceID int64, address string) DownstreamConfig {
	dc := DownstreamConfig{
		LocalIP:     address,
		SlaveName:   naming.WorkerName(cfg.SlaveNamePrefix, instanceID),
		SlaveImage:  deepCopy(cfg.SlaveImage),
		APIKey:      cfg.APIKey,
		SlavesUsed:  cfg.SlavesUsed,
		Simulations: deepCopy(cfg.Simulations),
		GoogleDrive: cfg.GoogleDrive,
	}
	if cfg.GoogleDrive {
		id := instanceID
		dc.MasterDropletID = &id
	}
	return dc
}

// Marshal serializes the configuration the way it is written to disk.
func (d DownstreamConfig) Marshal() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal downstream config: %w", err)
	}
	return data, nil
}

// WriteArtifact serializes d to path and returns the bytes written.
func WriteArtifact(path string, d DownstreamConfig) ([]byte, error) {
	data, err := d.Marshal()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write downstream config %s: %w", path, err)
	}
	return data, nil
}

// deepCopy copies the container types produced by the JSON and YAML
// decoders. Mappings come back with string keys.
func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any, map[any]any, []any:
		return config.StringKeys(t)
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}
