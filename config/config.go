// Package config loads the TOML settings shared by the CLI and the
// pipeline compiler.
//
//	[spirv]
//	version = "1.3"
//	debug = true
//
//	[dump]
//	enabled = true
//	dir = "ir"
//
//	[log]
//	level = "debug"
//	caller = false
//
//	[compile]
//	parallelism = 4
package config

import (
	"bytes"
	"fmt"
	"os"
	"runtime"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/spvkit/diag"
	"github.com/gogpu/spvkit/internal/logger"
	"github.com/gogpu/spvkit/shader"
	"github.com/gogpu/spvkit/spirv"
)

type Config struct {
	SPIRV   SPIRV   `toml:"spirv"`
	Dump    Dump    `toml:"dump"`
	Log     Log     `toml:"log"`
	Compile Compile `toml:"compile"`
}

type SPIRV struct {
	Version string `toml:"version"`
	Debug   bool   `toml:"debug"`
}

// Dump controls IR dumps. Enabled turns on shader.SetIRDump; stages still
// have to call DumpIR. With Dir set, dumps are also written to files.
type Dump struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type Log struct {
	Level  string `toml:"level"`
	Caller bool   `toml:"caller"`
}

type Compile struct {
	// Parallelism bounds concurrent configuration translation. Zero or
	// negative means GOMAXPROCS.
	Parallelism int `toml:"parallelism"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		SPIRV: SPIRV{Version: spirv.Version1_3.String()},
		Log:   Log{Level: "info"},
	}
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.Version(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Version returns the parsed SPIR-V target version.
func (c *Config) Version() (spirv.Version, error) {
	if c.SPIRV.Version == "" {
		return spirv.Version1_3, nil
	}
	return spirv.ParseVersion(c.SPIRV.Version)
}

// ShaderOptions returns the module generation options. r receives
// diagnostics and dumps; nil uses diag.Default.
func (c *Config) ShaderOptions(r diag.Reporter) shader.Options {
	v, err := c.Version()
	if err != nil {
		v = spirv.Version1_3
	}
	if c.Dump.Enabled && c.Dump.Dir != "" {
		r = &diag.DirReporter{Next: r, Dir: c.Dump.Dir}
	}
	return shader.Options{Version: v, Debug: c.SPIRV.Debug, Reporter: r}
}

// Parallelism returns the effective translation parallelism.
func (c *Config) Parallelism() int {
	if c.Compile.Parallelism <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Compile.Parallelism
}

// Apply configures the shared logger and the process-wide IR dump switch.
func (c *Config) Apply() {
	logger.Configure(c.Log.Level, c.Log.Caller)
	shader.SetIRDump(c.Dump.Enabled)
}

// Marshal encodes c as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
