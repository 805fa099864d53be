// Package inputs implements the typed-input resolution protocol:
// named input keys, providers that can answer subsets of them, and a
// resolver that queries providers in priority order.
package inputs

import (
	"context"

	"gitonboard/pkg/errors"
)

// Input is a typed configuration key. Inputs are identity-compared:
// every key is declared exactly once as a package-level singleton and
// passed around by pointer.
type Input struct {
	name string
	doc  string
}

// New declares an input key. Call it once per key, at package level.
func New(name, doc string) *Input {
	return &Input{name: name, doc: doc}
}

// Name returns the key's stable name, used in logs and generated configs.
func (i *Input) Name() string {
	return i.name
}

// Doc returns the human-readable description of the key.
func (i *Input) Doc() string {
	return i.doc
}

// The input keys of the onboarding flow.
var (
	// GitOriginURL is the URL of the repository being migrated from
	GitOriginURL = New("origin_url", "URL of the origin repository")

	// CurrentVersion is the version of the origin currently synced into
	// the destination
	CurrentVersion = New("current_version", "version of the origin present in the destination")

	// DestinationPath is the local path of the synced destination tree
	DestinationPath = New("destination_path", "local path of the destination tree")

	// OriginGlob is the inferred origin file include/exclude pattern
	OriginGlob = New("origin_glob", "inferred origin file pattern")

	// Transformations is the inferred set of content transformations
	Transformations = New("transformations", "suggested content transformations")

	// DestinationExcludePaths is the inferred set of destination-only paths
	DestinationExcludePaths = New("destination_exclude_paths", "paths that must stay destination-only")
)

// Resolver answers input queries. The concrete resolver fans out to
// registered providers; providers receive it so they can resolve their
// own prerequisites.
type Resolver interface {
	Resolve(ctx context.Context, input *Input) (interface{}, error)
}

// ResolveAs resolves an input and asserts its type.
func ResolveAs[T any](ctx context.Context, r Resolver, input *Input) (T, error) {
	var zero T
	value, err := r.Resolve(ctx, input)
	if err != nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, errors.Newf(errors.ErrCannotProvide,
			"input %q resolved to %T, not the requested type", input.Name(), value)
	}
	return typed, nil
}

// Provider is one source of input values. Resolve returns the value and
// true, or false when this provider has no answer for the input — a
// soft negative that lets the resolver try other providers. Errors
// abort the resolution.
type Provider interface {
	// Name identifies the provider in logs
	Name() string

	// Resolve answers one input, possibly resolving prerequisites
	// through the resolver
	Resolve(ctx context.Context, input *Input, resolver Resolver) (interface{}, bool, error)

	// Provides advertises the inputs this provider can answer, each
	// with a priority. Higher priorities are queried first.
	Provides() map[*Input]int
}

// DefaultPriority is the priority for providers with no reason to rank
// their inputs differently.
const DefaultPriority = 50

// DefaultPriorities builds a Provides map with every input at
// DefaultPriority.
func DefaultPriorities(keys ...*Input) map[*Input]int {
	m := make(map[*Input]int, len(keys))
	for _, k := range keys {
		m[k] = DefaultPriority
	}
	return m
}
