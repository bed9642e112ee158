package wizard

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

// masterNameRegex follows hostname label rules shared by both providers.
var masterNameRegex = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9.-]{0,61}[a-zA-Z0-9])?$`)

func runProviderGroup(ctx context.Context, result *Result) error {
	result.Provider = Providers[0].Value

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Cloud Provider").
				Options(toHuhOptions(Providers)...).
				Value(&result.Provider),
			huh.NewInput().
				Title("API Key").
				Description("Passed through to the master, which provisions the workers").
				EchoMode(huh.EchoModePassword).
				Value(&result.APIKey).
				Validate(validateRequired(errAPIKeyRequired)),
		).Title("Provider"),
	).RunWithContext(ctx)
}

func runMasterGroup(ctx context.Context, result *Result) error {
	var sshKeysInput string

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Master Name").
				Placeholder("PTMaster").
				Value(&result.MasterName).
				Validate(validateMasterName),
			huh.NewSelect[string]().
				Title("Region").
				Options(toHuhOptions(Regions[result.Provider])...).
				Value(&result.Region),
			huh.NewSelect[string]().
				Title("Size").
				Options(toHuhOptions(Sizes[result.Provider])...).
				Value(&result.Size),
			huh.NewInput().
				Title("Image").
				Description("Snapshot ID or image slug/name prepared with the master environment").
				Value(&result.ImageID).
				Validate(validateRequired(errImageRequired)),
			huh.NewInput().
				Title("SSH Keys").
				Description("Comma-separated key IDs, fingerprints or names registered with the provider").
				Value(&sshKeysInput).
				Validate(validateSSHKeys),
		).Title("Master"),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	result.SSHKeys = parseList(sshKeysInput)
	return nil
}

func runWorkersGroup(ctx context.Context, result *Result) error {
	countInput := "1"

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Worker Image").
				Description("Snapshot ID or image the master boots its workers from").
				Value(&result.SlaveImageID).
				Validate(validateRequired(errImageRequired)),
			huh.NewSelect[string]().
				Title("Worker Size").
				Options(toHuhOptions(Sizes[result.Provider])...).
				Value(&result.SlaveSize),
			huh.NewInput().
				Title("Worker Count").
				Value(&countInput).
				Validate(validateCount),
			huh.NewInput().
				Title("Simulation Set").
				Placeholder("default").
				Value(&result.Simulations),
		).Title("Workers"),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	result.SlavesUsed, _ = strconv.Atoi(strings.TrimSpace(countInput))
	return nil
}

func runUploadGroup(ctx context.Context, result *Result) error {
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable Google Drive uploads?").
				Value(&result.GoogleDrive),
		).Title("Upload Integration"),
	).RunWithContext(ctx)
	if err != nil || !result.GoogleDrive {
		return err
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Client Secret File").
				Placeholder("client_secret.json").
				Value(&result.GoogleDriveSecret).
				Validate(validateRequired(errSecretRequired)),
		),
	).RunWithContext(ctx)
}

func validateRequired(errEmpty error) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errEmpty
		}
		return nil
	}
}

func validateMasterName(s string) error {
	if s == "" {
		return errMasterNameRequired
	}
	if !masterNameRegex.MatchString(s) {
		return errMasterNameInvalid
	}
	return nil
}

func validateSSHKeys(s string) error {
	if len(parseList(s)) == 0 {
		return errSSHKeysRequired
	}
	return nil
}

func validateCount(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return errCountInvalid
	}
	return nil
}

// parseList splits a comma-separated answer and drops empty entries.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
