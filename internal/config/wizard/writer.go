package wizard

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/imamik/seedmaster/internal/config"
)

// Function variable for dependency injection in tests.
var confirmOverwrite = defaultConfirmOverwrite

// WriteConfig validates cfg and writes it as JSON to outputPath, asking
// before an existing file is replaced.
func WriteConfig(cfg *config.Config, outputPath string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("generated configuration is invalid: %w", err)
	}

	if _, err := os.Stat(outputPath); err == nil {
		ok, err := confirmOverwrite(outputPath)
		if err != nil {
			return err
		}
		if !ok {
			return errAborted
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check %s: %w", outputPath, err)
	}

	return config.Save(cfg, outputPath)
}

func defaultConfirmOverwrite(path string) (bool, error) {
	overwrite := false
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("%s already exists. Overwrite?", path)).
				Value(&overwrite),
		),
	).Run()
	return overwrite, err
}
