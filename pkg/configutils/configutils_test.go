package configutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveAndMergeFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "storage:\n  provider: gcs\n  bucket: panoptes-images\n")

	v := viper.New()
	require.NoError(t, ResolveAndMergeFile(v, path))

	assert.Equal(t, "gcs", v.GetString("storage.provider"))
	assert.Equal(t, "panoptes-images", v.GetString("storage.bucket"))
}

func TestResolveAndMergeFileImports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "logging:\n  level: DEBUG\nstorage:\n  provider: local\n")
	path := writeFile(t, dir, "config.yaml", "imports:\n  - base.yaml\nstorage:\n  provider: gcs\n")

	v := viper.New()
	require.NoError(t, ResolveAndMergeFile(v, path))

	// The importing file wins over its imports.
	assert.Equal(t, "gcs", v.GetString("storage.provider"))
	assert.Equal(t, "DEBUG", v.GetString("logging.level"))
}

func TestResolveAndMergeFileErrors(t *testing.T) {
	v := viper.New()
	assert.Error(t, ResolveAndMergeFile(v, "/does/not/exist.yaml"))

	dir := t.TempDir()
	noExt := writeFile(t, dir, "config", "a: b\n")
	assert.Error(t, ResolveAndMergeFile(viper.New(), noExt))

	badExt := writeFile(t, dir, "config.conf", "a: b\n")
	assert.Error(t, ResolveAndMergeFile(viper.New(), badExt))
}

func TestBindEnvsRecursive(t *testing.T) {
	type inner struct {
		Bucket string `mapstructure:"bucket"`
	}
	type outer struct {
		Provider string `mapstructure:"provider"`
		Index    *inner `mapstructure:"index"`
		ignored  string
	}

	v := viper.NewWithOptions(viper.EnvKeyReplacer(strings.NewReplacer(".", "_")))
	v.SetEnvPrefix("PANDATA")
	t.Setenv("PANDATA_INDEX_BUCKET", "from-env")

	cfg := &outer{}
	require.NoError(t, BindEnvsRecursive(v, cfg, ""))
	_ = cfg.ignored

	assert.Equal(t, "from-env", v.GetString("index.bucket"))
}
