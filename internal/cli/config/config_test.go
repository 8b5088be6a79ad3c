package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultFormat, cfg.Format)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultHistoryFile, cfg.HistoryFile)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "windql.yaml")
	content := "format: json\nworkers: 8\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, path, FileUsed())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "windql.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: json\n"), 0o644))

	t.Setenv("WINDQL_FORMAT", "csv")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Format)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("WINDQL_FORMAT", "csv")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "", "")
	flags.Int("workers", 0, "")
	require.NoError(t, flags.Parse([]string{"--format=md", "--workers=2"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "md", cfg.Format)
	assert.Equal(t, 2, cfg.Workers)
}

func TestLoadUnchangedFlagsIgnored(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, DefaultFormat, cfg.Format)
}

func TestLoadRejectsBadWorkers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "windql.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 0\n"), 0o644))

	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml", nil)
	require.Error(t, err)
}
