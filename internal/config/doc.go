// Package config defines the local configuration a provisioning run starts
// from and the retry tuning read from the environment.
//
// The [Config] struct is loaded once from a JSON (or YAML) file, defaulted,
// validated and then treated as read-only for the rest of the run.
package config
