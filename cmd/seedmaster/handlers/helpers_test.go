package handlers

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
	"api-key": "do-token",
	"master-name": "PTMaster",
	"master-image": {"region": "nyc3", "size": "4gb", "id": 123456, "ssh_keys": [111]},
	"slave-image": {"region": "nyc3", "size": "2gb", "id": 777},
	"slaves-used": 3,
	"simulations": [{"name": "default", "games": 10}],
	"google-drive": false
}`

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// captureOutput captures stdout during function execution.
func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}
