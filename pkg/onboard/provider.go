// Package onboard contains the heuristic input provider: it watches a
// source repository and an already-synced destination tree and infers
// migration configuration values on demand, computing them at most once
// per provider instance.
package onboard

import (
	"context"

	"github.com/rs/zerolog"

	"gitonboard/pkg/console"
	"gitonboard/pkg/git"
	"gitonboard/pkg/heuristics"
	"gitonboard/pkg/inputs"
	"gitonboard/pkg/logging"
	"gitonboard/pkg/versions"
)

// Engine is the slice of the heuristics engine the pipeline needs.
type Engine interface {
	Run(ctx context.Context) (*heuristics.Result, error)
}

// EngineFactory builds an engine for one pipeline run. Tests substitute
// factories returning canned results.
type EngineFactory func(params heuristics.Params) Engine

// DestinationPathFunc resolves the destination tree path. It exists so
// the destination can differ from the generator's output directory.
type DestinationPathFunc func(ctx context.Context, resolver inputs.Resolver) (string, error)

// Options wires the provider's collaborators and parameters.
type Options struct {
	// Backend hands out local repositories for origin URLs
	Backend git.Backend

	// Selector resolves a requested version to a concrete ref; nil
	// means fuzzy tag matching
	Selector versions.Selector

	// Console receives progress reporting; nil means a pterm terminal
	Console console.Console

	// EngineFactory builds the heuristics engine; nil means the real one
	EngineFactory EngineFactory

	// DestinationPath resolves the destination tree; nil resolves the
	// destination_path input
	DestinationPath DestinationPathFunc

	// DestinationOnlyPaths, PercentSimilar and the normalization flags
	// are passed through to the engine
	DestinationOnlyPaths []string
	PercentSimilar       int
	IgnoreCarriageReturn bool
	IgnoreWhitespace     bool

	// TempDir is the base for checkout directories; empty means the
	// system default
	TempDir string
}

// extractor pulls one input's value out of a computed Result. Returning
// false means the value carries no signal and must stay unanswered.
type extractor func(*heuristics.Result) (interface{}, bool)

// ConfigHeuristicsProvider infers origin_glob, transformations and
// destination_exclude_paths by diffing an origin checkout against the
// destination tree. The expensive pipeline runs at most once per
// instance; queries must be serialized by the caller.
type ConfigHeuristicsProvider struct {
	opts    Options
	state   cacheState
	cached  *heuristics.Result
	extract map[*inputs.Input]extractor
	logger  zerolog.Logger
}

// NewConfigHeuristicsProvider creates a provider. Zero-value
// collaborators in opts are replaced by the production implementations.
func NewConfigHeuristicsProvider(opts Options) *ConfigHeuristicsProvider {
	if opts.Backend == nil {
		opts.Backend = git.NewMirrorCache("")
	}
	if opts.Selector == nil {
		opts.Selector = versions.NewFuzzyClosestSelector()
	}
	if opts.Console == nil {
		opts.Console = console.NewTerminal()
	}
	if opts.EngineFactory == nil {
		opts.EngineFactory = func(params heuristics.Params) Engine {
			return heuristics.New(params)
		}
	}
	if opts.DestinationPath == nil {
		opts.DestinationPath = func(ctx context.Context, resolver inputs.Resolver) (string, error) {
			return inputs.ResolveAs[string](ctx, resolver, inputs.DestinationPath)
		}
	}

	return &ConfigHeuristicsProvider{
		opts:  opts,
		state: stateNotComputed,
		extract: map[*inputs.Input]extractor{
			inputs.OriginGlob: func(r *heuristics.Result) (interface{}, bool) {
				g := r.OriginGlob()
				if g.IsNoop() {
					// a no-op glob carries no signal and must not mask
					// a better-informed provider
					return nil, false
				}
				return g, true
			},
			inputs.Transformations: func(r *heuristics.Result) (interface{}, bool) {
				return r.Transformations(), true
			},
			inputs.DestinationExcludePaths: func(r *heuristics.Result) (interface{}, bool) {
				return r.DestinationExcludePaths(), true
			},
		},
		logger: logging.GetLogger("onboard.provider"),
	}
}

// Name implements inputs.Provider.
func (p *ConfigHeuristicsProvider) Name() string {
	return "config-heuristics"
}

// Resolve implements inputs.Provider. Prerequisite resolution failures
// propagate; pipeline failures degrade to "no value".
func (p *ConfigHeuristicsProvider) Resolve(ctx context.Context, input *inputs.Input, resolver inputs.Resolver) (interface{}, bool, error) {
	extract, supported := p.extract[input]
	if !supported {
		return nil, false, nil
	}

	originURL, err := inputs.ResolveAs[string](ctx, resolver, inputs.GitOriginURL)
	if err != nil {
		return nil, false, err
	}
	currentVersion, err := inputs.ResolveAs[string](ctx, resolver, inputs.CurrentVersion)
	if err != nil {
		return nil, false, err
	}
	destination, err := p.opts.DestinationPath(ctx, resolver)
	if err != nil {
		return nil, false, err
	}

	result, err := p.computeHeuristic(ctx, originURL, currentVersion, destination)
	if err != nil {
		return nil, false, err
	}
	if result == nil {
		return nil, false, nil
	}

	value, ok := extract(result)
	return value, ok, nil
}

// Provides implements inputs.Provider: the three inferred inputs, all
// at the uniform default priority.
func (p *ConfigHeuristicsProvider) Provides() map[*inputs.Input]int {
	return inputs.DefaultPriorities(
		inputs.OriginGlob,
		inputs.Transformations,
		inputs.DestinationExcludePaths,
	)
}
