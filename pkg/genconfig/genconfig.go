// Package genconfig turns resolved inputs into the generated onboarding
// config file handed to the user.
package genconfig

import (
	"context"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"gitonboard/pkg/errors"
	"gitonboard/pkg/glob"
	"gitonboard/pkg/heuristics"
	"gitonboard/pkg/inputs"
)

// OnboardingConfig is the shape of the generated file.
type OnboardingConfig struct {
	Origin          Origin           `toml:"origin" yaml:"origin"`
	Destination     Destination      `toml:"destination" yaml:"destination"`
	Transformations []Transformation `toml:"transformations,omitempty" yaml:"transformations,omitempty"`
}

// Origin describes where and what to migrate from.
type Origin struct {
	URL     string   `toml:"url" yaml:"url"`
	Ref     string   `toml:"ref" yaml:"ref"`
	Include []string `toml:"include" yaml:"include"`
	Exclude []string `toml:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// Destination describes the target tree.
type Destination struct {
	Path         string   `toml:"path" yaml:"path"`
	ExcludePaths []string `toml:"exclude_paths,omitempty" yaml:"exclude_paths,omitempty"`
}

// Transformation mirrors heuristics.Transformation in file form.
type Transformation struct {
	Kind   string `toml:"kind" yaml:"kind"`
	Before string `toml:"before,omitempty" yaml:"before,omitempty"`
	After  string `toml:"after,omitempty" yaml:"after,omitempty"`
	Note   string `toml:"note,omitempty" yaml:"note,omitempty"`
}

// Collect resolves the onboarding inputs into an OnboardingConfig.
// The origin URL, version and destination path are required; the
// inferred inputs are optional and fall back to permissive defaults
// when no provider can answer them.
func Collect(ctx context.Context, resolver inputs.Resolver) (*OnboardingConfig, error) {
	url, err := inputs.ResolveAs[string](ctx, resolver, inputs.GitOriginURL)
	if err != nil {
		return nil, err
	}
	ref, err := inputs.ResolveAs[string](ctx, resolver, inputs.CurrentVersion)
	if err != nil {
		return nil, err
	}
	destination, err := inputs.ResolveAs[string](ctx, resolver, inputs.DestinationPath)
	if err != nil {
		return nil, err
	}

	originGlob, err := resolveOptional(ctx, resolver, inputs.OriginGlob, glob.All())
	if err != nil {
		return nil, err
	}
	transformations, err := resolveOptional[[]heuristics.Transformation](ctx, resolver, inputs.Transformations, nil)
	if err != nil {
		return nil, err
	}
	excludePaths, err := resolveOptional[[]string](ctx, resolver, inputs.DestinationExcludePaths, nil)
	if err != nil {
		return nil, err
	}

	cfg := &OnboardingConfig{
		Origin: Origin{
			URL:     url,
			Ref:     ref,
			Include: originGlob.Include(),
			Exclude: originGlob.Exclude(),
		},
		Destination: Destination{
			Path:         destination,
			ExcludePaths: excludePaths,
		},
	}
	for _, tr := range transformations {
		cfg.Transformations = append(cfg.Transformations, Transformation{
			Kind:   string(tr.Kind),
			Before: tr.Before,
			After:  tr.After,
			Note:   tr.Note,
		})
	}
	return cfg, nil
}

// resolveOptional treats "no provider could answer" as a soft miss and
// substitutes the fallback.
func resolveOptional[T any](ctx context.Context, resolver inputs.Resolver, input *inputs.Input, fallback T) (T, error) {
	value, err := inputs.ResolveAs[T](ctx, resolver, input)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrCannotProvide) {
			return fallback, nil
		}
		return fallback, err
	}
	return value, nil
}

// Render marshals the config in the requested format.
func (c *OnboardingConfig) Render(format string) ([]byte, error) {
	switch format {
	case "toml":
		out, err := toml.Marshal(c)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "marshalling toml")
		}
		return out, nil
	case "yaml":
		out, err := yaml.Marshal(c)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "marshalling yaml")
		}
		return out, nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown output format %q", format)
	}
}
