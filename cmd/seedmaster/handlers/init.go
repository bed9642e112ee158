package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/seedmaster/internal/config"
	"github.com/imamik/seedmaster/internal/config/wizard"
)

// Factory function variables for init - can be replaced in tests.
var (
	// runWizard runs the interactive form.
	runWizard = wizard.RunWizard

	// writeConfig validates and writes the generated configuration.
	writeConfig = wizard.WriteConfig
)

// Init runs the configuration wizard and writes the result to outputPath.
func Init(ctx context.Context, outputPath string) error {
	printWelcome()

	result, err := runWizard(ctx)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}

	cfg := wizard.BuildConfig(result)
	if err := writeConfig(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)
	return nil
}

func printWelcome() {
	fmt.Println()
	fmt.Println("seedmaster - master provisioning")
	fmt.Println("================================")
	fmt.Println()
	fmt.Println("This wizard creates the configuration of a master instance.")
	fmt.Println()
}

func printInitSuccess(outputPath string, cfg *config.Config) {
	fmt.Println()
	fmt.Println("Configuration saved!")
	fmt.Println()
	fmt.Printf("  File:     %s\n", outputPath)
	fmt.Printf("  Provider: %s\n", cfg.ProviderName())
	fmt.Printf("  Master:   %s in %s\n", cfg.MasterName, cfg.MasterImage.Region)
	fmt.Printf("  Workers:  %d\n", cfg.SlavesUsed)
	fmt.Println()
	fmt.Println("Next Steps")
	fmt.Println("----------")
	fmt.Printf("  1. Review %s if needed\n", outputPath)
	fmt.Println("  2. Provision the master:")
	fmt.Printf("     seedmaster setup -c %s\n", outputPath)
	fmt.Println()
}
