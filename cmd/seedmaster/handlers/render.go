package handlers

import (
	"fmt"
	"io"

	"sigs.k8s.io/yaml"

	"github.com/imamik/seedmaster/internal/provisioning/master"
)

// Render output formats.
const (
	RenderJSON = "json"
	RenderYAML = "yaml"
)

// Render prints the downstream configuration a master with the given id and
// address would receive. No provider is contacted.
func Render(configPath string, instanceID int64, address, format string, out io.Writer) error {
	if instanceID <= 0 {
		return fmt.Errorf("instance id must be positive, got %d", instanceID)
	}
	if address == "" {
		return fmt.Errorf("address is required")
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	data, err := master.BuildDownstreamConfig(cfg, instanceID, address).Marshal()
	if err != nil {
		return err
	}

	switch format {
	case "", RenderJSON:
	case RenderYAML:
		data, err = yaml.JSONToYAML(data)
		if err != nil {
			return fmt.Errorf("failed to convert to YAML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported output format %q (use %s or %s)", format, RenderJSON, RenderYAML)
	}

	if _, err := out.Write(data); err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		_, err = io.WriteString(out, "\n")
	}
	return err
}
