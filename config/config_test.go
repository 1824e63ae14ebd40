package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brettbedarf/treefs/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestNewConfig_WithNilOverride tests that NewConfig creates a config with all default values
// when no override is provided.
func TestNewConfig_WithNilOverride(t *testing.T) {
	t.Parallel()

	cfg := NewConfig(nil)

	require.NotNil(t, cfg)
	assert.Equal(t, createDefaultCfg(), cfg, "must use default values when no config provided")
}

func TestNewConfig_WithAllOverride(t *testing.T) {
	t.Parallel()

	override := createOverride()
	override.LogLvl = util.Pointer(TraceVerbose)
	cfg := NewConfig(override)

	expCfg := &Config{
		MountOptions: MountOptions{
			Debug:  true,
			FsName: "test_fs",
			Name:   "test_name",
		},
		LogLvl:                      util.TraceLevel,
		AttrTimeout:                 *override.AttrTimeout,
		EntryTimeout:                *override.EntryTimeout,
		MakeIntermediateDirectories: *override.MakeIntermediateDirectories,
		FileMode:                    *override.FileMode,
		DirMode:                     *override.DirMode,
		HTTPTimeout:                 *override.HTTPTimeout,
	}
	require.NotNil(t, cfg)
	assert.Equal(t, expCfg, cfg, "must override all provided fields")
}

func TestConfig_Merge_LogLvlConversion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		verboseValue  int
		expectedLevel util.LogLevel
	}{
		{"verbose_1_error", 1, util.ErrorLevel},
		{"verbose_2_warn", 2, util.WarnLevel},
		{"verbose_3_info", 3, util.InfoLevel},
		{"verbose_4_debug", 4, util.DebugLevel},
		{"verbose_5_trace", 5, util.TraceLevel},
		{"verbose_0_clamped_to_1", 0, util.ErrorLevel},
		{"verbose_100_clamped_to_5", 100, util.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			override := &ConfigOverride{
				LogLvl: &tt.verboseValue,
			}

			cfg := NewConfig(override)

			assert.Equal(t, tt.expectedLevel, cfg.LogLvl,
				"CLI verbose %d should map to util.LogLevel %v", tt.verboseValue, tt.expectedLevel)
		})
	}
}

func TestConfig_Merge_NilOverrideVals(t *testing.T) {
	t.Parallel()

	cfg := NewConfig(&ConfigOverride{})

	require.NotNil(t, cfg)
	assert.Equal(t, createDefaultCfg(), cfg, "must use default values for nil override fields")
}

func TestConfig_Merge_PartialOverride(t *testing.T) {
	t.Parallel()

	override := &ConfigOverride{
		FsName:                      util.Pointer("test_fs"),
		MakeIntermediateDirectories: util.Pointer(false),
	}
	cfg := NewConfig(override)

	expCfg := createDefaultCfg()
	expCfg.FsName = "test_fs"
	expCfg.MakeIntermediateDirectories = false

	require.NotNil(t, cfg)
	assert.Equal(t, expCfg, cfg, "must override all provided fields and leave rest default")
}

func TestConfig_Durations(t *testing.T) {
	t.Parallel()

	cfg := Config{AttrTimeout: 1.5, EntryTimeout: 0, HTTPTimeout: 30}
	assert.Equal(t, 1500*time.Millisecond, cfg.AttrTimeoutDuration())
	assert.Equal(t, time.Duration(0), cfg.EntryTimeoutDuration())
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeoutDuration())
}

func TestLoadConfigOverrideFile_Valid(t *testing.T) {
	t.Parallel()

	type tc struct {
		ext   string
		build func() (*ConfigOverride, []byte)
	}

	cases := []tc{
		{
			ext: ".yaml",
			build: func() (*ConfigOverride, []byte) {
				o := createOverride()
				b, err := yaml.Marshal(o)
				require.NoError(t, err)
				return o, b
			},
		},
		{
			ext: ".yml",
			build: func() (*ConfigOverride, []byte) {
				o := createOverride()
				b, err := yaml.Marshal(o)
				require.NoError(t, err)
				return o, b
			},
		},
		{
			ext: ".json",
			build: func() (*ConfigOverride, []byte) {
				o := createOverride()
				b, err := json.Marshal(o)
				require.NoError(t, err)
				return o, b
			},
		},
	}

	for _, c := range cases {
		name := "valid" + c.ext
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			override, data := c.build()
			dir := t.TempDir()
			path := filepath.Join(dir, "override"+c.ext)
			require.NoError(t, os.WriteFile(path, data, 0o600))

			loaded, err := LoadConfigOverrideFile(path)

			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.Equal(t, *override, *loaded)
		})
	}
}

func TestLoadConfigOverrideFile_HandWritten(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "treefs.yaml")
	content := "verbose: 4\nfs_name: snapshots\nfile_mode: 0o600\nmake_intermediate_directories: false\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := NewConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, util.DebugLevel, cfg.LogLvl)
	assert.Equal(t, "snapshots", cfg.FsName)
	assert.Equal(t, uint32(0o600), cfg.FileMode)
	assert.False(t, cfg.MakeIntermediateDirectories)
	assert.Equal(t, uint32(DefaultDirMode), cfg.DirMode)
}

func TestLoadConfigOverrideFile_JSONC(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "treefs.jsonc")
	content := `{
		// mount naming
		"fs_name": "commented",
		"http_timeout": 5, /* seconds */
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := NewConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "commented", cfg.FsName)
	assert.Equal(t, 5.0, cfg.HTTPTimeout)
}

// TestLoadConfigOverrideFile_NonExistentFile tests error handling
// when trying to load a file that doesn't exist.
func TestLoadConfigOverrideFile_NonExistentFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "does_not_exist.yaml")

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err), "expected not exist error, got %v", err)
}

// TestLoadConfigOverrideFile_UnsupportedExtension tests error handling
// for file extensions that aren't supported (.txt, .xml, etc).
func TestLoadConfigOverrideFile_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "override.txt")
	require.NoError(t, os.WriteFile(path, []byte("verbose: 1"), 0o600))

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config file extension")
}

func TestLoadConfigOverrideFile_Malformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "override.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := LoadConfigOverrideFile(path)
	assert.ErrorContains(t, err, "failed to unmarshal config file")
}

// TestNewConfigFromFile_FileError tests that file loading errors
// are properly propagated by the convenience function.
func TestNewConfigFromFile_FileError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.json")

	_, err := NewConfigFromFile(path)
	require.Error(t, err)
}

func createDefaultCfg() *Config {
	return &Config{
		MountOptions: MountOptions{
			FsName: DefaultFsName,
			Name:   DefaultName,
		},
		LogLvl:                      DefaultLogLvl,
		AttrTimeout:                 DefaultAttrTimeout,
		EntryTimeout:                DefaultEntryTimeout,
		MakeIntermediateDirectories: DefaultMakeIntermediateDirectories,
		FileMode:                    DefaultFileMode,
		DirMode:                     DefaultDirMode,
		HTTPTimeout:                 DefaultHTTPTimeout,
	}
}

// createOverride makes a ConfigOverride with all non-default values
func createOverride() *ConfigOverride {
	testLogVerbose := TraceVerbose
	if DefaultLogLvl == util.TraceLevel {
		testLogVerbose = DebugVerbose
	}
	return &ConfigOverride{
		LogLvl:                      util.Pointer(testLogVerbose),
		Debug:                       util.Pointer(true),
		FsName:                      util.Pointer("test_fs"),
		Name:                        util.Pointer("test_name"),
		AttrTimeout:                 util.Pointer(float64(DefaultAttrTimeout + 1)),
		EntryTimeout:                util.Pointer(float64(DefaultEntryTimeout + 1)),
		MakeIntermediateDirectories: util.Pointer(!DefaultMakeIntermediateDirectories),
		FileMode:                    util.Pointer(uint32(0o600)),
		DirMode:                     util.Pointer(uint32(0o700)),
		HTTPTimeout:                 util.Pointer(float64(DefaultHTTPTimeout + 1)),
	}
}
