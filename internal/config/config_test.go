package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"port": 9090,
		"data_dir": "/var/lib/podcasts",
		"text_model": "gemini-2.0-flash",
		"speech_model": "gemini-2.5-flash-preview-tts"
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/var/lib/podcasts", cfg.DataDir)
	assert.Equal(t, "gemini-2.0-flash", cfg.TextModel)
	assert.Equal(t, "gemini-2.5-flash-preview-tts", cfg.SpeechModel)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestValidate(t *testing.T) {
	valid := Config{Port: 8080}
	assert.NoError(t, valid.Validate())

	zero := Config{}
	assert.NoError(t, zero.Validate())

	negative := Config{Port: -1}
	assert.Error(t, negative.Validate())

	tooLarge := Config{Port: 70000}
	assert.Error(t, tooLarge.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Port: 9090}
	defaults := Config{
		Port:      8080,
		DataDir:   "data/jobs",
		APIKey:    "default-key",
		TextModel: "gemini-2.0-flash",
	}

	merged := cfg.MergeWithDefaults(defaults)

	assert.Equal(t, 9090, merged.Port, "explicit value wins")
	assert.Equal(t, "data/jobs", merged.DataDir)
	assert.Equal(t, "default-key", merged.APIKey)
	assert.Equal(t, "gemini-2.0-flash", merged.TextModel)
}
