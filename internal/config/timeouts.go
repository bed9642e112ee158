package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds the retry tuning of a run.
// These values can be customized via environment variables.
type Timeouts struct {
	PollInterval         time.Duration // Pause between two provider action polls
	PollMaxAttempts      int           // Poll bound, 0 polls until the instance is ready
	BootstrapBackoff     time.Duration // Pause between two bootstrap attempts
	BootstrapMaxAttempts int           // Bootstrap bound, 0 retries until the master answers
	Deadline             time.Duration // Wall time bound applied to each loop, 0 for none
	SSHDial              time.Duration // TCP dial timeout of the remote channel
}

// LoadTimeouts loads retry tuning from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - SEEDMASTER_POLL_INTERVAL (default: 1m)
//   - SEEDMASTER_POLL_MAX_ATTEMPTS (default: 0, unbounded)
//   - SEEDMASTER_BOOTSTRAP_BACKOFF (default: 1m)
//   - SEEDMASTER_BOOTSTRAP_MAX_ATTEMPTS (default: 0, unbounded)
//   - SEEDMASTER_DEADLINE (default: 0, none)
//   - SEEDMASTER_SSH_DIAL_TIMEOUT (default: 10s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		PollInterval:         parseInterval("SEEDMASTER_POLL_INTERVAL", time.Minute),
		PollMaxAttempts:      parseInt("SEEDMASTER_POLL_MAX_ATTEMPTS", 0),
		BootstrapBackoff:     parseInterval("SEEDMASTER_BOOTSTRAP_BACKOFF", time.Minute),
		BootstrapMaxAttempts: parseInt("SEEDMASTER_BOOTSTRAP_MAX_ATTEMPTS", 0),
		Deadline:             parseDuration("SEEDMASTER_DEADLINE", 0),
		SSHDial:              parseDuration("SEEDMASTER_SSH_DIAL_TIMEOUT", 10*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}

// parseInterval is parseDuration for pauses between attempts.
// Values <= 0 fall back to defaultVal.
func parseInterval(envVar string, defaultVal time.Duration) time.Duration {
	if d := parseDuration(envVar, defaultVal); d > 0 {
		return d
	}
	return defaultVal
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}
