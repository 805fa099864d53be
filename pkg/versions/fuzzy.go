// Package versions selects the closest actually-available tag for a
// requested version string.
package versions

import (
	"context"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog"

	"gitonboard/pkg/console"
	"gitonboard/pkg/git"
	"gitonboard/pkg/logging"
)

// Selector resolves a requested version string to a concrete ref name.
type Selector interface {
	SelectVersion(ctx context.Context, desired string, repo git.Repo, url string, cons console.Console) (string, error)
}

// FuzzyClosestSelector matches the requested version against the tags
// advertised by the remote. An exact match on the normalized form wins;
// otherwise the closest fuzzy match is used. When nothing matches the
// requested string is returned unchanged so the fetch can still try it
// as a literal ref.
type FuzzyClosestSelector struct {
	logger zerolog.Logger
}

// NewFuzzyClosestSelector creates a selector.
func NewFuzzyClosestSelector() *FuzzyClosestSelector {
	return &FuzzyClosestSelector{
		logger: logging.GetLogger("versions.fuzzy"),
	}
}

// SelectVersion implements Selector.
func (s *FuzzyClosestSelector) SelectVersion(ctx context.Context, desired string, repo git.Repo, url string, cons console.Console) (string, error) {
	if desired == "" {
		return desired, nil
	}

	refs, err := repo.LsRemote(ctx, url, git.TagRefPrefix+"*")
	if err != nil {
		return "", err
	}

	tags := make([]string, 0, len(refs))
	for _, name := range git.FilterTags(refs) {
		tags = append(tags, strings.TrimPrefix(name, git.TagRefPrefix))
	}
	if len(tags) == 0 {
		s.logger.Debug().Str("url", url).Msg("Remote has no tags, keeping requested version")
		return desired, nil
	}

	if match, ok := ClosestTag(desired, tags); ok {
		if match != desired {
			cons.Infof("Assuming version %s for requested %q", match, desired)
		}
		return match, nil
	}

	s.logger.Debug().
		Str("url", url).
		Str("desired", desired).
		Int("tags", len(tags)).
		Msg("No tag resembles the requested version")
	return desired, nil
}

// ClosestTag picks the tag closest to the requested version, or false
// when no tag resembles it at all.
func ClosestTag(desired string, tags []string) (string, bool) {
	want := Normalize(desired)

	// Exact match on the normalized form beats any fuzzy rank.
	for _, tag := range tags {
		if Normalize(tag) == want {
			return tag, true
		}
	}

	best := ""
	bestRank := -1
	for _, tag := range tags {
		rank := fuzzy.RankMatchNormalizedFold(want, Normalize(tag))
		if rank < 0 {
			continue
		}
		if bestRank < 0 || rank < bestRank {
			best, bestRank = tag, rank
		}
	}
	if bestRank < 0 {
		return "", false
	}
	return best, true
}

// Normalize strips naming conventions off a version-ish string: common
// prefixes, case, and separator variance.
func Normalize(version string) string {
	v := strings.ToLower(strings.TrimSpace(version))
	for _, prefix := range []string{"release-", "releases/", "version-", "version/", "rel-", "v"} {
		if strings.HasPrefix(v, prefix) {
			v = strings.TrimPrefix(v, prefix)
			break
		}
	}
	v = strings.ReplaceAll(v, "_", ".")
	v = strings.ReplaceAll(v, "-", ".")
	return v
}
