package inputs

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"gitonboard/pkg/errors"
	"gitonboard/pkg/logging"
)

// ProviderResolver resolves inputs by querying registered providers in
// priority order, memoizing answers for the lifetime of the resolver.
// It is meant to live for one resolution session and is not safe for
// concurrent use.
type ProviderResolver struct {
	byInput  map[*Input][]rankedProvider
	cache    map[*Input]interface{}
	inFlight map[*Input]bool
	logger   zerolog.Logger
}

type rankedProvider struct {
	provider Provider
	priority int
	order    int
}

// NewProviderResolver builds a resolver over the given providers.
// Registration order breaks priority ties.
func NewProviderResolver(providers ...Provider) *ProviderResolver {
	byInput := make(map[*Input][]rankedProvider)
	for order, p := range providers {
		for input, priority := range p.Provides() {
			byInput[input] = append(byInput[input], rankedProvider{
				provider: p,
				priority: priority,
				order:    order,
			})
		}
	}
	for _, ranked := range byInput {
		sort.SliceStable(ranked, func(i, j int) bool {
			if ranked[i].priority != ranked[j].priority {
				return ranked[i].priority > ranked[j].priority
			}
			return ranked[i].order < ranked[j].order
		})
	}
	return &ProviderResolver{
		byInput:  byInput,
		cache:    make(map[*Input]interface{}),
		inFlight: make(map[*Input]bool),
		logger:   logging.GetLogger("inputs.resolver"),
	}
}

// Resolve implements Resolver. The first provider returning a value
// wins; the answer is memoized. When no provider answers, resolution
// fails with a CANNOT_PROVIDE error.
func (r *ProviderResolver) Resolve(ctx context.Context, input *Input) (interface{}, error) {
	if value, ok := r.cache[input]; ok {
		return value, nil
	}
	if r.inFlight[input] {
		return nil, errors.Newf(errors.ErrCannotProvide,
			"input %q depends on itself", input.Name())
	}
	r.inFlight[input] = true
	defer delete(r.inFlight, input)

	for _, ranked := range r.byInput[input] {
		value, ok, err := ranked.provider.Resolve(ctx, input, r)
		if err != nil {
			return nil, err
		}
		if !ok {
			r.logger.Debug().
				Str("input", input.Name()).
				Str("provider", ranked.provider.Name()).
				Msg("Provider had no answer")
			continue
		}
		r.logger.Debug().
			Str("input", input.Name()).
			Str("provider", ranked.provider.Name()).
			Msg("Input resolved")
		r.cache[input] = value
		return value, nil
	}

	return nil, errors.Newf(errors.ErrCannotProvide,
		"no provider could answer input %q", input.Name())
}

// ConstantProvider answers inputs from a fixed map. It is used to seed
// the session with values already known from flags or configuration.
type ConstantProvider struct {
	values map[*Input]interface{}
}

// Constants creates a ConstantProvider over the given values.
func Constants(values map[*Input]interface{}) *ConstantProvider {
	return &ConstantProvider{values: values}
}

func (p *ConstantProvider) Name() string {
	return "constants"
}

func (p *ConstantProvider) Resolve(_ context.Context, input *Input, _ Resolver) (interface{}, bool, error) {
	value, ok := p.values[input]
	return value, ok, nil
}

// Provides ranks constants above inferring providers: a value the user
// already supplied must never be shadowed by a guess.
func (p *ConstantProvider) Provides() map[*Input]int {
	m := make(map[*Input]int, len(p.values))
	for input := range p.values {
		m[input] = DefaultPriority + 50
	}
	return m
}
