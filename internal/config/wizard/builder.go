package wizard

import (
	"strconv"

	"github.com/imamik/seedmaster/internal/config"
)

// BuildConfig converts wizard answers into a configuration.
func BuildConfig(r *Result) *config.Config {
	keys := make([]config.Ref, 0, len(r.SSHKeys))
	for _, k := range r.SSHKeys {
		keys = append(keys, config.Ref(k))
	}

	simulations := r.Simulations
	if simulations == "" {
		simulations = "default"
	}

	cfg := &config.Config{
		APIKey:     r.APIKey,
		Provider:   r.Provider,
		MasterName: r.MasterName,
		MasterImage: config.MasterImage{
			Region:  r.Region,
			Size:    r.Size,
			ID:      config.Ref(r.ImageID),
			SSHKeys: keys,
		},
		SlaveImage: map[string]any{
			"region":   r.Region,
			"size":     r.SlaveSize,
			"id":       imageValue(r.SlaveImageID),
			"ssh_keys": r.SSHKeys,
		},
		SlavesUsed:  r.SlavesUsed,
		Simulations: simulations,
		GoogleDrive: r.GoogleDrive,
	}
	if r.GoogleDrive {
		cfg.GoogleDriveSecret = r.GoogleDriveSecret
	}
	return cfg
}

// imageValue keeps numeric snapshot IDs numeric in the written file.
func imageValue(s string) any {
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id
	}
	return s
}
