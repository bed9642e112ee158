package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "seedmaster", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
}

func TestRoot_Subcommands(t *testing.T) {
	cmd := Root()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"setup", "render", "validate", "init", "version", "completion"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestRoot_PersistentFlags(t *testing.T) {
	cmd := Root()

	config := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, config)
	assert.Equal(t, "c", config.Shorthand)
	assert.Equal(t, "config.json", config.DefValue)

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("log-format")
	require.NotNil(t, format)
	assert.Equal(t, "console", format.DefValue)
}

func TestSetup_Flags(t *testing.T) {
	cmd := Setup(&globalFlags{})

	assert.Equal(t, "setup", cmd.Use)
	assert.NotNil(t, cmd.RunE)

	tests := map[string]string{
		"artifact":     "master.config.json",
		"session":      "google-session.json",
		"metrics-addr": "",
	}
	for name, def := range tests {
		flag := cmd.Flags().Lookup(name)
		require.NotNil(t, flag, "flag %s should exist", name)
		assert.Equal(t, def, flag.DefValue)
	}
}

func TestInit_Flags(t *testing.T) {
	cmd := Init()

	flag := cmd.Flags().Lookup("output")
	require.NotNil(t, flag)
	assert.Equal(t, "o", flag.Shorthand)
	assert.Equal(t, "config.json", flag.DefValue)
}
