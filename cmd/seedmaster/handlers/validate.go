package handlers

import (
	"fmt"
	"io"
)

// Validate loads and validates the configuration at configPath.
func Validate(configPath string, out io.Writer) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "%s is valid\n", configPath)
	_, _ = fmt.Fprintf(out, "  Provider: %s\n", cfg.ProviderName())
	_, _ = fmt.Fprintf(out, "  Master:   %s (%s, %s, image %s)\n",
		cfg.MasterName, cfg.MasterImage.Region, cfg.MasterImage.Size, cfg.MasterImage.ID)
	_, _ = fmt.Fprintf(out, "  Workers:  %d\n", cfg.SlavesUsed)
	if cfg.GoogleDrive {
		_, _ = fmt.Fprintf(out, "  Upload:   google-drive (%s)\n", cfg.GoogleDriveSecret)
	}
	if cfg.Archive != nil {
		_, _ = fmt.Fprintf(out, "  Archive:  %s\n", cfg.Archive.Bucket)
	}
	return nil
}
