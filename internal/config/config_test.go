package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.EntryTimeout())
	assert.Equal(t, 20*time.Second, cfg.AssetTimeout())
	assert.Equal(t, ".", cfg.OutputDir)
	assert.False(t, cfg.ExportCSV)
	assert.Empty(t, cfg.LogFile)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("XYZRANK_BASE_URL", "mirror.example.test")
	t.Setenv("XYZRANK_REQUEST_TIMEOUT_ENTRY", "5")
	t.Setenv("XYZRANK_OUTPUT_DIR", "/tmp/xyzrank")
	t.Setenv("XYZRANK_EXPORT_CSV", "true")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "https://mirror.example.test", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.EntryTimeout())
	assert.Equal(t, 20*time.Second, cfg.AssetTimeout())
	assert.Equal(t, "/tmp/xyzrank", cfg.OutputDir)
	assert.True(t, cfg.ExportCSV)
}

func TestLoad_ExplicitValueWins(t *testing.T) {
	t.Setenv("XYZRANK_OUTPUT_DIR", "/from/env")

	v := viper.New()
	v.Set(KeyOutputDir, "/from/flag")

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", cfg.OutputDir)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	t.Setenv("XYZRANK_REQUEST_TIMEOUT_ASSET", "0")

	_, err := Load(viper.New(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), KeyRequestTimeoutAsset)
}

func TestEnsureScheme(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  string
		expectErr bool
	}{
		{"https kept", "https://xyzrank.com", "https://xyzrank.com", false},
		{"http kept", "http://127.0.0.1:8080", "http://127.0.0.1:8080", false},
		{"scheme added", "xyzrank.com", "https://xyzrank.com", false},
		{"ftp rejected", "ftp://xyzrank.com", "", true},
		{"missing host", "https://", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EnsureScheme(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestValidate_EmptyOutputDir(t *testing.T) {
	cfg := &Config{BaseURL: "https://xyzrank.com", RequestTimeoutEntry: 1, RequestTimeoutAsset: 1}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := "base_url: https://mirror.example.test\nrequest_timeout_asset: 45\nexport_csv: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "https://mirror.example.test", cfg.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.AssetTimeout())
	assert.Equal(t, 15*time.Second, cfg.EntryTimeout())
	assert.True(t, cfg.ExportCSV)
}

func TestLoad_ExplicitConfigFileMissing(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing_file_is_not_an_error", func(t *testing.T) {
		t.Chdir(t.TempDir())
		assert.NoError(t, LoadDotEnv())
	})

	t.Run("values_are_exported", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("XYZRANK_OUTPUT_DIR=/from/dotenv\n"), 0o644))
		t.Chdir(dir)
		t.Setenv("XYZRANK_OUTPUT_DIR", "")
		require.NoError(t, os.Unsetenv("XYZRANK_OUTPUT_DIR"))

		require.NoError(t, LoadDotEnv())
		cfg, err := Load(viper.New(), "")
		require.NoError(t, err)
		assert.Equal(t, "/from/dotenv", cfg.OutputDir)
	})

	t.Run("unreadable_file_is_reported", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, ".env"), 0o755))
		t.Chdir(dir)

		err := LoadDotEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), ".env")
	})
}
