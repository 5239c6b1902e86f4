package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fdfskit/pkg/config"
)

type yamlConfig struct {
	Enabled      bool     `env:"TEST_YAML_ENABLED"`
	WebServerURL string   `env:"TEST_YAML_WEB_SERVER_URL"`
	Group        string   `env:"TEST_YAML_GROUP"`
	ThumbWidth   int      `env:"TEST_YAML_THUMB_WIDTH"`
	ThumbHeight  int      `env:"TEST_YAML_THUMB_HEIGHT"`
	Allowed      []string `env:"TEST_YAML_ALLOWED" envSeparator:","`
	InfoCache    string   `env:"TEST_YAML_INFO_CACHE"`
}

func unsetYAMLVars() {
	for _, k := range []string{
		"TEST_YAML_ENABLED", "TEST_YAML_WEB_SERVER_URL", "TEST_YAML_GROUP", "TEST_YAML_THUMB_WIDTH",
		"TEST_YAML_THUMB_HEIGHT", "TEST_YAML_ALLOWED", "TEST_YAML_INFO_CACHE", "TEST_YAML_EMPTY",
	} {
		os.Unsetenv(k)
	}
}

func TestReadYAML(t *testing.T) {
	values, err := config.ReadYAML("testdata/fdfs.yml")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"TEST_YAML_ENABLED":        "true",
		"TEST_YAML_WEB_SERVER_URL": "http://img.example.com",
		"TEST_YAML_GROUP":          "group1",
		"TEST_YAML_THUMB_WIDTH":    "150",
		"TEST_YAML_THUMB_HEIGHT":   "120",
		"TEST_YAML_ALLOWED":        "image/png,image/jpeg",
		"TEST_YAML_INFO_CACHE":     "memory",
		"TEST_YAML_EMPTY":          "",
	}, values)

	values, err = config.ReadYAML("testdata/fdfs.yml", "testdata/fdfs.override.yml")
	require.NoError(t, err)
	assert.Equal(t, "group3", values["TEST_YAML_GROUP"])
	assert.Equal(t, "150", values["TEST_YAML_THUMB_WIDTH"])
}

func TestLoadYAML(t *testing.T) {
	unsetYAMLVars()
	t.Cleanup(unsetYAMLVars)

	os.Setenv("TEST_YAML_GROUP", "from_env")

	require.NoError(t, config.LoadYAML("testdata/fdfs.yml"))

	var cfg yamlConfig
	require.NoError(t, config.ForceReloadConfig(&cfg))

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "http://img.example.com", cfg.WebServerURL)
	assert.Equal(t, "from_env", cfg.Group, "environment wins over yaml")
	assert.Equal(t, 150, cfg.ThumbWidth)
	assert.Equal(t, 120, cfg.ThumbHeight)
	assert.Equal(t, []string{"image/png", "image/jpeg"}, cfg.Allowed)
	assert.Equal(t, "memory", cfg.InfoCache)
}

func TestLoadYAML_Errors(t *testing.T) {
	assert.ErrorIs(t, config.LoadYAML("testdata/missing.yml"), config.ErrLoadingYAMLFile)
	assert.ErrorIs(t, config.LoadYAML("testdata/broken.yml"), config.ErrLoadingYAMLFile)
	assert.Panics(t, func() { config.MustLoadYAML("testdata/missing.yml") })
}
