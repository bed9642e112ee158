// Package wizard provides the interactive `init` form that produces a local
// configuration file.
//
// It uses charmbracelet/huh for form-based input collection. RunWizard
// collects a Result, BuildConfig turns it into a config.Config and
// WriteConfig stores it as JSON.
package wizard
