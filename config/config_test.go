package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvkit/diag"
	"github.com/gogpu/spvkit/spirv"
)

const sample = `
[spirv]
version = "1.5"
debug = true

[dump]
enabled = true
dir = "ir"

[log]
level = "debug"

[compile]
parallelism = 3
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.True(t, cfg.SPIRV.Debug)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Parallelism())

	v, err := cfg.Version()
	require.NoError(t, err)
	assert.Equal(t, spirv.Version1_5, v)

	var col diag.Collector
	opts := cfg.ShaderOptions(&col)
	assert.Equal(t, spirv.Version1_5, opts.Version)
	assert.True(t, opts.Debug)
	dr, ok := opts.Reporter.(*diag.DirReporter)
	require.True(t, ok)
	assert.Equal(t, "ir", dr.Dir)
	assert.Same(t, &col, dr.Next)
}

func TestDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Parallelism())

	var col diag.Collector
	opts := cfg.ShaderOptions(&col)
	assert.Equal(t, spirv.Version1_3, opts.Version)
	assert.Same(t, &col, opts.Reporter)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("[spirv]\nversion = \"2.0\"\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("[spirv]\nverison = \"1.3\"\n"))
	var strict *toml.StrictMissingError
	assert.True(t, errors.As(err, &strict))

	_, err = Parse([]byte("[spirv"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spvkit.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "1.5", cfg.SPIRV.Version)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)
	data, err := cfg.Marshal()
	require.NoError(t, err)
	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}
