package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domaincfg "github.com/modryn-studio/ProjectLoom-sub000/domain/config"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDynamicConfigDefaults(t *testing.T) {
	d := NewDynamicConfig(nil)
	assert.Equal(t, domaincfg.DefaultDomainConfig().MaxMergeParents, d.Current().MaxMergeParents)
}

func TestLoadFileMergesOverrides(t *testing.T) {
	d := NewDynamicConfig(nil)
	before := d.Current()

	path := writeRules(t, "maxMergeParents: 3\nundoDepth: 25\n")
	require.NoError(t, d.LoadFile(path))

	after := d.Current()
	assert.Equal(t, 3, after.MaxMergeParents)
	assert.Equal(t, 25, after.UndoDepth)
	// Unset keys keep their previous values
	assert.Equal(t, before.MaxTitleLength, after.MaxTitleLength)
	// The previous rules struct is untouched; readers holding it see a
	// consistent view
	assert.Equal(t, 5, before.MaxMergeParents)
}

func TestLoadFileNotifiesListeners(t *testing.T) {
	d := NewDynamicConfig(nil)

	var got *domaincfg.DomainConfig
	d.OnChange(func(cfg *domaincfg.DomainConfig) { got = cfg })

	path := writeRules(t, "complexMergeThreshold: 4\n")
	require.NoError(t, d.LoadFile(path))

	require.NotNil(t, got)
	assert.Equal(t, 4, got.ComplexMergeThreshold)
}

func TestLoadFileRejectsBadInput(t *testing.T) {
	d := NewDynamicConfig(nil)
	before := d.Current()

	assert.Error(t, d.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))

	path := writeRules(t, "maxMergeParents: [not a number\n")
	assert.Error(t, d.LoadFile(path))

	// A failed reload keeps the active rules
	assert.Same(t, before, d.Current())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("MAX_MERGE_PARENTS", "4")
	t.Setenv("UNDO_DEPTH", "10")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	rules := cfg.DomainConfig()
	assert.Equal(t, 4, rules.MaxMergeParents)
	assert.Equal(t, 10, rules.UndoDepth)
}

func TestConfigValidate(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	cfg.StorageDriver = "tape"
	assert.Error(t, cfg.Validate())

	cfg.StorageDriver = StorageMemory
	cfg.Environment = "production"
	assert.Error(t, cfg.Validate(), "production must not run on memory storage")
}
