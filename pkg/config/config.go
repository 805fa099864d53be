// Package config loads gitonboard's options: built-in defaults, an
// optional gitonboard.toml next to the destination tree, and
// GITONBOARD_* environment overrides, merged in that order.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"gitonboard/pkg/errors"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// GITONBOARD_GENERATOR_PERCENT_SIMILAR=85.
const EnvPrefix = "GITONBOARD_"

// Config is the fully merged configuration.
type Config struct {
	Generator GeneratorConfig `koanf:"generator"`
	Git       GitConfig       `koanf:"git"`
}

// GeneratorConfig parameterizes the heuristics engine and the emitted
// onboarding config.
type GeneratorConfig struct {
	// PercentSimilar is the similarity threshold (0-100) for counting a
	// changed file as the same file
	PercentSimilar int `koanf:"percent_similar"`

	// IgnoreCarriageReturn compares file contents with CRs stripped
	IgnoreCarriageReturn bool `koanf:"ignore_carriage_return"`

	// IgnoreWhitespace compares file contents with whitespace collapsed
	IgnoreWhitespace bool `koanf:"ignore_whitespace"`

	// DestinationOnlyPaths are destination-relative paths never touched
	// by migrations
	DestinationOnlyPaths []string `koanf:"destination_only_paths"`

	// OutputFormat selects the generated config format: toml or yaml
	OutputFormat string `koanf:"output_format"`
}

// GitConfig parameterizes the repository access layer.
type GitConfig struct {
	// CacheDir overrides where bare mirrors are cached; empty means the
	// XDG cache home
	CacheDir string `koanf:"cache_dir"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"generator.percent_similar":        80,
		"generator.ignore_carriage_return": true,
		"generator.ignore_whitespace":      false,
		"generator.output_format":          "toml",
		"git.cache_dir":                    "",
	}
}

// ConfigFileNames are the file names probed, in order, when loading.
var ConfigFileNames = []string{".gitonboard.toml", "gitonboard.toml"}

// Load merges defaults, the config file found under searchDir (if any)
// and environment overrides into a Config.
func Load(searchDir string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "loading defaults")
	}

	if path := findConfigFile(searchDir); path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "loading config from %s", path)
		}
	}

	// GITONBOARD_GENERATOR_PERCENT_SIMILAR -> generator.percent_similar
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(
			strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "loading environment overrides")
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "unmarshalling config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects out-of-range or unknown option values.
func (c *Config) Validate() error {
	if c.Generator.PercentSimilar < 0 || c.Generator.PercentSimilar > 100 {
		return errors.Newf(errors.ErrConfigValid,
			"generator.percent_similar must be in [0,100], got %d", c.Generator.PercentSimilar)
	}
	switch c.Generator.OutputFormat {
	case "toml", "yaml":
	default:
		return errors.Newf(errors.ErrConfigValid,
			"generator.output_format must be toml or yaml, got %q", c.Generator.OutputFormat)
	}
	return nil
}

func findConfigFile(searchDir string) string {
	if searchDir == "" {
		searchDir = "."
	}
	for _, name := range ConfigFileNames {
		path := filepath.Join(searchDir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
