package wizard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/seedmaster/internal/config"
)

func sampleResult() *Result {
	return &Result{
		Provider:     config.ProviderDigitalOcean,
		APIKey:       "token",
		MasterName:   "PTMaster",
		Region:       "nyc3",
		Size:         "s-4vcpu-8gb",
		ImageID:      "123456",
		SSHKeys:      []string{"111", "ab:cd"},
		SlaveImageID: "654321",
		SlaveSize:    "s-2vcpu-4gb",
		SlavesUsed:   3,
	}
}

func TestBuildConfig(t *testing.T) {
	cfg := BuildConfig(sampleResult())

	assert.Equal(t, "token", cfg.APIKey)
	assert.Equal(t, config.ProviderDigitalOcean, cfg.Provider)
	assert.Equal(t, config.Ref("123456"), cfg.MasterImage.ID)
	assert.Equal(t, []config.Ref{"111", "ab:cd"}, cfg.MasterImage.SSHKeys)
	assert.Equal(t, 3, cfg.SlavesUsed)
	assert.Equal(t, "default", cfg.Simulations)
	assert.Empty(t, cfg.GoogleDriveSecret)

	slave, ok := cfg.SlaveImage.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(654321), slave["id"])
	assert.Equal(t, "s-2vcpu-4gb", slave["size"])
	assert.NoError(t, cfg.Validate())
}

func TestBuildConfig_GoogleDrive(t *testing.T) {
	r := sampleResult()
	r.GoogleDrive = true
	r.GoogleDriveSecret = "client_secret.json"
	r.Simulations = "finals"

	cfg := BuildConfig(r)

	assert.True(t, cfg.GoogleDrive)
	assert.Equal(t, "client_secret.json", cfg.GoogleDriveSecret)
	assert.Equal(t, "finals", cfg.Simulations)
}

func TestWriteConfig_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	require.NoError(t, WriteConfig(BuildConfig(sampleResult()), path))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "PTMaster", loaded.MasterName)
}

func TestWriteConfig_ExistingFileDeclined(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0600))

	orig := confirmOverwrite
	t.Cleanup(func() { confirmOverwrite = orig })
	confirmOverwrite = func(string) (bool, error) { return false, nil }

	err := WriteConfig(BuildConfig(sampleResult()), path)
	require.ErrorIs(t, err, errAborted)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestWriteConfig_InvalidConfig(t *testing.T) {
	r := sampleResult()
	r.APIKey = ""

	err := WriteConfig(BuildConfig(r), filepath.Join(t.TempDir(), "config.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api-key is required")
}

func TestValidators(t *testing.T) {
	assert.ErrorIs(t, validateMasterName(""), errMasterNameRequired)
	assert.ErrorIs(t, validateMasterName("-bad"), errMasterNameInvalid)
	assert.NoError(t, validateMasterName("PTMaster"))

	assert.ErrorIs(t, validateSSHKeys(" , "), errSSHKeysRequired)
	assert.NoError(t, validateSSHKeys("1, 2"))

	assert.ErrorIs(t, validateCount("-1"), errCountInvalid)
	assert.ErrorIs(t, validateCount("many"), errCountInvalid)
	assert.NoError(t, validateCount(" 4 "))

	assert.ErrorIs(t, validateRequired(errImageRequired)("  "), errImageRequired)
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, parseList(" a, ,b ,"))
	assert.Nil(t, parseList(""))
}
