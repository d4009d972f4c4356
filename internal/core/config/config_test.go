package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing file uses defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)

		assert.Equal(t, ".", cfg.ContextDir)
		assert.Equal(t, []string{"**/*.md", "**/*.txt"}, cfg.Documents)
		assert.Equal(t, 2, cfg.Review.RejectionThreshold)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
context_dir: /srv/docs
documents:
  - "plans/**/*.md"
review:
  rejection_threshold: 5
`), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "/srv/docs", cfg.ContextDir)
		assert.Equal(t, []string{"plans/**/*.md"}, cfg.Documents)
		assert.Equal(t, 5, cfg.Review.RejectionThreshold)
	})

	t.Run("partial file keeps defaults for the rest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("context_dir: /srv/docs\n"), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "/srv/docs", cfg.ContextDir)
		assert.Equal(t, []string{"**/*.md", "**/*.txt"}, cfg.Documents)
		assert.Equal(t, 2, cfg.Review.RejectionThreshold)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("context_dir: [\n"), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, Default().Validate())
	})

	t.Run("nonexistent directories are allowed", func(t *testing.T) {
		cfg := Default()
		cfg.ContextDir = filepath.Join(t.TempDir(), "does-not-exist-yet")
		assert.NoError(t, cfg.Validate())
	})

	t.Run("context dir must be a directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

		cfg := Default()
		cfg.ContextDir = file
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "context_dir")
	})

	t.Run("invalid glob pattern", func(t *testing.T) {
		cfg := Default()
		cfg.Documents = []string{"[invalid"}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "documents[0]")
	})

	t.Run("rejection threshold must be positive", func(t *testing.T) {
		cfg := Default()
		cfg.Review.RejectionThreshold = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rejection_threshold")
	})
}
