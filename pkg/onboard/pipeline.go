package onboard

import (
	"context"
	"os"

	"gitonboard/pkg/errors"
	"gitonboard/pkg/git"
	"gitonboard/pkg/heuristics"
)

// cacheState is the memo slot's explicit tri-state: the distinction
// between "never attempted" and "attempted, no result" must stay
// observable.
type cacheState int

const (
	stateNotComputed cacheState = iota
	stateFailed
	stateReady
)

// computeHeuristic returns the memoized Result, running the pipeline on
// the first call. A nil Result with nil error is the soft negative.
//
// The destination-directory check runs before the cache is consulted:
// while the slot is unset, a missing destination never burns it, so a
// destination appearing later still gets a pipeline run.
func (p *ConfigHeuristicsProvider) computeHeuristic(ctx context.Context, originURL, currentVersion, destination string) (*heuristics.Result, error) {
	if fi, err := os.Stat(destination); err != nil || !fi.IsDir() {
		p.logger.Debug().Str("destination", destination).Msg("Destination is not a directory, skipping heuristics")
		return nil, nil
	}

	switch p.state {
	case stateReady:
		return p.cached, nil
	case stateFailed:
		return nil, nil
	}

	result, err := p.runPipeline(ctx, originURL, currentVersion, destination)
	if err != nil {
		if ctx.Err() != nil {
			// interruption propagates; the slot stays unset
			return nil, err
		}
		p.logger.Warn().Err(err).Str("url", originURL).
			Msg("Cannot compute heuristics for repository")
		p.state = stateFailed
		return nil, nil
	}

	p.state = stateReady
	p.cached = result
	return result, nil
}

// runPipeline performs one full fetch/checkout/compare cycle.
func (p *ConfigHeuristicsProvider) runPipeline(ctx context.Context, originURL, currentVersion, destination string) (*heuristics.Result, error) {
	workTree, err := os.MkdirTemp(p.opts.TempDir, "gitonboard-checkout-")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDirCreate, "creating checkout dir")
	}

	repo, err := p.opts.Backend.BareRepoForURL(ctx, originURL)
	if err != nil {
		return nil, err
	}
	repo = repo.WithWorkTree(workTree)

	version, err := p.opts.Selector.SelectVersion(ctx, currentVersion, repo, originURL, p.opts.Console)
	if err != nil {
		return nil, err
	}

	p.opts.Console.Progressf("Fetching %q from %s", version, originURL)
	revision, err := p.fetchWithFallback(ctx, repo, originURL, version)
	if err != nil {
		return nil, err
	}

	refs, err := repo.ShowRef(ctx)
	if err != nil {
		return nil, err
	}
	tags := git.FilterTags(refs)

	p.opts.Console.Progressf("Checking out files at %s", revision.SHA)
	if err := repo.ForceCheckout(ctx, revision.SHA); err != nil {
		return nil, err
	}

	p.opts.Console.Progressf("Computing globs")
	engine := p.opts.EngineFactory(heuristics.Params{
		Origin:               workTree,
		Destination:          destination,
		DestinationOnlyPaths: p.opts.DestinationOnlyPaths,
		PercentSimilar:       p.opts.PercentSimilar,
		IgnoreCarriageReturn: p.opts.IgnoreCarriageReturn,
		IgnoreWhitespace:     p.opts.IgnoreWhitespace,
		Versions:             tags,
	})
	return engine.Run(ctx)
}

// fetchWithFallback first fetches the ref together with all tags; when
// the repository layer rejects that combination it retries once as a
// plain single-ref fetch. Only repo-level errors qualify for the
// fallback, and there is no further retry.
func (p *ConfigHeuristicsProvider) fetchWithFallback(ctx context.Context, repo git.Repo, url, ref string) (git.Revision, error) {
	revision, err := repo.FetchSingleRefWithTags(ctx, url, ref, true, false)
	if err == nil {
		return revision, nil
	}
	if !isRepoError(err) {
		return git.Revision{}, err
	}
	p.logger.Debug().Err(err).Str("ref", ref).
		Msg("Tag-aware fetch rejected, retrying as plain single-ref fetch")
	return repo.FetchSingleRef(ctx, url, ref, false)
}

// isRepoError is the fallback trigger predicate.
func isRepoError(err error) bool {
	return errors.IsErrorCode(err, errors.ErrRepo)
}
