package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ValidProviders lists the cloud backends a run can target.
var ValidProviders = map[string]bool{
	ProviderDigitalOcean: true,
	ProviderHetzner:      true,
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.APIKey == "" {
		errs = append(errs, errors.New("api-key is required"))
	}
	if !ValidProviders[c.ProviderName()] {
		errs = append(errs, fmt.Errorf("provider %q is not supported", c.Provider))
	}
	if c.MasterName == "" {
		errs = append(errs, errors.New("master-name is required"))
	}
	if err := c.MasterImage.validate(); err != nil {
		errs = append(errs, fmt.Errorf("master-image: %w", err))
	}
	if c.SlavesUsed < 0 {
		errs = append(errs, fmt.Errorf("slaves-used must not be negative, got %d", c.SlavesUsed))
	}
	if _, err := json.Marshal(c.SlaveImage); err != nil {
		errs = append(errs, fmt.Errorf("slave-image cannot be encoded as JSON: %w", err))
	}
	if _, err := json.Marshal(c.Simulations); err != nil {
		errs = append(errs, fmt.Errorf("simulations cannot be encoded as JSON: %w", err))
	}
	if c.GoogleDrive && c.GoogleDriveSecret == "" {
		errs = append(errs, errors.New("google-drive-secret is required when google-drive is enabled"))
	}
	if c.Remote.Port < 0 || c.Remote.Port > 65535 {
		errs = append(errs, fmt.Errorf("remote.port %d is out of range", c.Remote.Port))
	}
	if strings.ContainsAny(c.Remote.Directory, " \t\n'\"") {
		errs = append(errs, fmt.Errorf("remote.directory %q must not contain whitespace or quotes", c.Remote.Directory))
	}
	if c.Archive != nil {
		if err := c.Archive.validate(); err != nil {
			errs = append(errs, fmt.Errorf("archive: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (m MasterImage) validate() error {
	var errs []error
	if m.Region == "" {
		errs = append(errs, errors.New("region is required"))
	}
	if m.Size == "" {
		errs = append(errs, errors.New("size is required"))
	}
	if m.ID == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if len(m.SSHKeys) == 0 {
		errs = append(errs, errors.New("at least one ssh key is required"))
	}
	for i, k := range m.SSHKeys {
		if k == "" {
			errs = append(errs, fmt.Errorf("ssh_keys[%d] is empty", i))
		}
	}
	return errors.Join(errs...)
}

func (a *ArchiveConfig) validate() error {
	var errs []error
	if a.Endpoint == "" {
		errs = append(errs, errors.New("endpoint is required"))
	}
	if a.Bucket == "" {
		errs = append(errs, errors.New("bucket is required"))
	}
	if a.AccessKey == "" || a.SecretKey == "" {
		errs = append(errs, errors.New("access-key and secret-key are required"))
	}
	return errors.Join(errs...)
}
