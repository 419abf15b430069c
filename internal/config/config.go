// Package config loads decsimp settings from a YAML or TOML file and
// DECSIMP_* environment variables.
package config // import "github.com/andrewarchi/decsimp/internal/config"

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/xyproto/env/v2"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/andrewarchi/decsimp/ir/optimize"
)

// Config holds the simplifier settings.
type Config struct {
	Target Target `yaml:"target" toml:"target"`

	DisableZonedToDFPReduction bool `yaml:"disable_zoned_to_dfp_reduction" toml:"disable_zoned_to_dfp_reduction"`
	KeepBCDWidening            bool `yaml:"keep_bcd_widening" toml:"keep_bcd_widening"`
	LastRun                    bool `yaml:"last_run" toml:"last_run"`

	// BisectLimit is the number of transformations allowed, or -1 for
	// no limit.
	BisectLimit int    `yaml:"bisect_limit" toml:"bisect_limit"`
	Trace       bool   `yaml:"trace" toml:"trace"`
	Verify      bool   `yaml:"verify" toml:"verify"`
	LogLevel    string `yaml:"log_level" toml:"log_level"`
}

// Target holds the code generator capabilities.
type Target struct {
	FastPackedDFP           bool `yaml:"fast_packed_dfp" toml:"fast_packed_dfp"`
	ZonedDFP                bool `yaml:"zoned_dfp" toml:"zoned_dfp"`
	SignThroughBCDLeftShift bool `yaml:"sign_through_bcd_left_shift" toml:"sign_through_bcd_left_shift"`
}

// Default returns the settings used without a file or environment.
func Default() Config {
	return Config{BisectLimit: -1, LogLevel: "warn"}
}

// Load reads the defaults, then the file at path when it is not empty,
// then the environment.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		if err := c.readFile(path); err != nil {
			return Config{}, err
		}
	}
	c.applyEnv()
	if _, err := c.Level(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config")
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		err = toml.Unmarshal(data, c)
	default:
		return errors.Errorf("config %s: unknown format %q", path, ext)
	}
	if err != nil {
		return errors.Wrapf(err, "parse config %s", path)
	}
	return nil
}

func (c *Config) applyEnv() {
	// env caches the environment on first use.
	env.Load()
	boolVar := func(name string, p *bool) {
		if env.Has(name) {
			*p = env.Bool(name)
		}
	}
	boolVar("DECSIMP_TRACE", &c.Trace)
	boolVar("DECSIMP_VERIFY", &c.Verify)
	boolVar("DECSIMP_LAST_RUN", &c.LastRun)
	boolVar("DECSIMP_FAST_PACKED_DFP", &c.Target.FastPackedDFP)
	boolVar("DECSIMP_ZONED_DFP", &c.Target.ZonedDFP)
	c.BisectLimit = env.Int("DECSIMP_BISECT_LIMIT", c.BisectLimit)
	c.LogLevel = env.Str("DECSIMP_LOG_LEVEL", c.LogLevel)
}

// Level parses the log level.
func (c Config) Level() (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, errors.Wrapf(err, "log level %q", c.LogLevel)
	}
	return l, nil
}

// Capabilities returns the simplifier capabilities of the settings.
func (c Config) Capabilities() optimize.Capabilities {
	return optimize.Capabilities{
		FastPackedDFP:              c.Target.FastPackedDFP,
		ZonedDFP:                   c.Target.ZonedDFP,
		SignThroughBCDLeftShift:    c.Target.SignThroughBCDLeftShift,
		DisableZonedToDFPReduction: c.DisableZonedToDFPReduction,
		KeepBCDWidening:            c.KeepBCDWidening,
		LastRun:                    c.LastRun,
	}
}
