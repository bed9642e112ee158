package wizard

import (
	"context"
	"fmt"
)

// Result holds all the answers from the interactive wizard.
type Result struct {
	Provider   string
	APIKey     string
	MasterName string

	Region  string
	Size    string
	ImageID string
	SSHKeys []string

	SlaveImageID string
	SlaveSize    string
	SlavesUsed   int
	Simulations  string

	GoogleDrive       bool
	GoogleDriveSecret string
}

// RunWizard runs the interactive configuration wizard.
// The context is used for cancellation support (e.g., Ctrl+C).
func RunWizard(ctx context.Context) (*Result, error) {
	result := &Result{}

	if err := runProviderGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}
	if err := runMasterGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("master: %w", err)
	}
	if err := runWorkersGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("workers: %w", err)
	}
	if err := runUploadGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("upload integration: %w", err)
	}

	return result, nil
}
