// Package heuristics compares an origin tree against an already-synced
// destination tree and infers migration configuration: which origin
// files to include, which transformations to apply, and which
// destination paths to leave alone.
package heuristics

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/rs/zerolog"

	"gitonboard/pkg/errors"
	"gitonboard/pkg/glob"
	"gitonboard/pkg/logging"
)

// Params are the inputs of one engine run.
type Params struct {
	// Origin is the local path of the checked-out origin tree
	Origin string

	// Destination is the local path of the synced destination tree
	Destination string

	// DestinationOnlyPaths are destination-relative paths excluded from
	// matching and reported back as destination-only
	DestinationOnlyPaths []string

	// PercentSimilar is the similarity threshold (0-100) above which a
	// changed file still counts as the same file
	PercentSimilar int

	// IgnoreCarriageReturn compares contents with CRs stripped
	IgnoreCarriageReturn bool

	// IgnoreWhitespace compares contents with whitespace collapsed
	IgnoreWhitespace bool

	// Versions is the tag inventory of the origin, in encounter order
	Versions []string
}

// Engine computes a Result from a Params set. One engine performs one
// run; it keeps no state between runs.
type Engine struct {
	params Params
	logger zerolog.Logger
}

// New creates an engine for the given parameters.
func New(params Params) *Engine {
	return &Engine{
		params: params,
		logger: logging.GetLogger("heuristics.engine"),
	}
}

// Run walks both trees and derives the migration configuration.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if e.params.PercentSimilar < 0 || e.params.PercentSimilar > 100 {
		return nil, errors.Newf(errors.ErrValidation,
			"percentSimilar must be in [0,100], got %d", e.params.PercentSimilar)
	}

	originFiles, err := listFiles(ctx, e.params.Origin, nil)
	if err != nil {
		return nil, err
	}
	destFiles, err := listFiles(ctx, e.params.Destination, e.params.DestinationOnlyPaths)
	if err != nil {
		return nil, err
	}

	e.logger.Debug().
		Int("originFiles", len(originFiles)).
		Int("destFiles", len(destFiles)).
		Msg("Comparing trees")

	matched := make(map[string]bool, len(originFiles))
	sawCROnly := false
	sawWhitespaceOnly := false

	for _, rel := range destFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !contains(originFiles, rel) {
			continue
		}
		kind, err := e.compareFile(rel)
		if err != nil {
			return nil, err
		}
		switch kind {
		case matchIdentical, matchSimilar:
			matched[rel] = true
		case matchCROnly:
			matched[rel] = true
			sawCROnly = true
		case matchWhitespaceOnly:
			matched[rel] = true
			sawWhitespaceOnly = true
		}
	}

	originGlob := buildOriginGlob(originFiles, matched)
	transformations := e.suggestTransformations(sawCROnly, sawWhitespaceOnly, matched)
	destExclude := e.destinationExcludes(originFiles)

	e.logger.Info().
		Int("matched", len(matched)).
		Int("originFiles", len(originFiles)).
		Bool("noop", originGlob.IsNoop()).
		Msg("Heuristics computed")

	return NewResult(originGlob, transformations, destExclude), nil
}

type matchKind int

const (
	matchNone matchKind = iota
	matchIdentical
	matchCROnly
	matchWhitespaceOnly
	matchSimilar
)

var whitespaceRun = regexp.MustCompile(`[ \t]+`)

// compareFile classifies how the origin and destination versions of one
// relative path relate.
func (e *Engine) compareFile(rel string) (matchKind, error) {
	originBytes, err := os.ReadFile(filepath.Join(e.params.Origin, filepath.FromSlash(rel)))
	if err != nil {
		return matchNone, errors.Wrapf(err, errors.ErrFileAccess, "reading origin file %s", rel)
	}
	destBytes, err := os.ReadFile(filepath.Join(e.params.Destination, filepath.FromSlash(rel)))
	if err != nil {
		return matchNone, errors.Wrapf(err, errors.ErrFileAccess, "reading destination file %s", rel)
	}

	origin, dest := string(originBytes), string(destBytes)
	if origin == dest {
		return matchIdentical, nil
	}

	if e.params.IgnoreCarriageReturn {
		if stripCR(origin) == stripCR(dest) {
			return matchCROnly, nil
		}
	}
	if e.params.IgnoreWhitespace {
		if collapseWhitespace(origin) == collapseWhitespace(dest) {
			return matchWhitespaceOnly, nil
		}
	}

	matcher := difflib.NewMatcher(
		difflib.SplitLines(origin),
		difflib.SplitLines(dest),
	)
	if matcher.Ratio() >= float64(e.params.PercentSimilar)/100.0 {
		return matchSimilar, nil
	}
	return matchNone, nil
}

// suggestTransformations turns observed normalization-only differences
// and the tag inventory into concrete suggestions.
func (e *Engine) suggestTransformations(sawCROnly, sawWhitespaceOnly bool, matched map[string]bool) []Transformation {
	var out []Transformation
	if sawCROnly {
		out = append(out, Transformation{
			Kind: KindNormalizeLineEndings,
			Note: "destination files differ from origin only in carriage returns",
		})
	}
	if sawWhitespaceOnly {
		out = append(out, Transformation{
			Kind: KindNormalizeWhitespace,
			Note: "destination files differ from origin only in whitespace",
		})
	}

	// When matched files carry the newest tag literally, suggest pinning
	// it so future migrations bump it in one place.
	if latest := latestVersion(e.params.Versions); latest != "" {
		for rel := range matched {
			content, err := os.ReadFile(filepath.Join(e.params.Origin, filepath.FromSlash(rel)))
			if err != nil {
				continue
			}
			if strings.Contains(string(content), latest) {
				out = append(out, Transformation{
					Kind:   KindReplace,
					Before: latest,
					After:  "${VERSION}",
					Note:   "origin content embeds the current version string",
				})
				break
			}
		}
	}
	return out
}

// destinationExcludes returns the configured destination-only paths
// minus any that also exist in the origin tree.
func (e *Engine) destinationExcludes(originFiles []string) []string {
	var out []string
	for _, p := range e.params.DestinationOnlyPaths {
		p = filepath.ToSlash(p)
		if contains(originFiles, p) {
			continue
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// buildOriginGlob rolls the matched/unmatched file sets into a pattern
// pair. Nothing matched yields the no-op glob; everything matched
// yields a bare include-all.
func buildOriginGlob(originFiles []string, matched map[string]bool) glob.Glob {
	if len(originFiles) == 0 || len(matched) == 0 {
		return glob.Noop()
	}
	if len(matched) == len(originFiles) {
		return glob.All()
	}

	// Count files per directory so fully-unmatched subtrees collapse to
	// a single dir/** pattern.
	totals := map[string]int{}
	misses := map[string]int{}
	var flat []string
	for _, rel := range originFiles {
		dir := parentDir(rel)
		totals[dir]++
		if !matched[rel] {
			misses[dir]++
			flat = append(flat, rel)
		}
	}

	var exclude []string
	covered := map[string]bool{}
	for dir, total := range totals {
		if dir != "." && misses[dir] == total {
			exclude = append(exclude, dir+"/**")
			covered[dir] = true
		}
	}
	for _, rel := range flat {
		if !covered[parentDir(rel)] {
			exclude = append(exclude, rel)
		}
	}
	return glob.New([]string{"**"}, exclude)
}

func parentDir(rel string) string {
	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir == "" {
		return "."
	}
	return dir
}

// listFiles walks root and returns slash-separated relative file paths
// in lexical order. The skip list removes subtrees (and single files)
// from consideration; .git databases are always skipped.
func listFiles(ctx context.Context, root string, skip []string) ([]string, error) {
	skipSet := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipSet[filepath.ToSlash(s)] = true
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return rerr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" || skipSet[rel] {
				return filepath.SkipDir
			}
			return nil
		}
		if !skipSet[rel] {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "walking %s", root)
	}
	sort.Strings(files)
	return files, nil
}

func contains(sorted []string, want string) bool {
	i := sort.SearchStrings(sorted, want)
	return i < len(sorted) && sorted[i] == want
}

func stripCR(s string) string {
	return strings.ReplaceAll(s, "\r", "")
}

func collapseWhitespace(s string) string {
	s = stripCR(s)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(whitespaceRun.ReplaceAllString(line, " "))
	}
	return strings.Join(lines, "\n")
}

// latestVersion picks the last tag of the inventory, stripped of its
// ref prefix. The inventory preserves the origin's encounter order, so
// the last entry is the newest for the common tag layouts.
func latestVersion(versions []string) string {
	if len(versions) == 0 {
		return ""
	}
	last := versions[len(versions)-1]
	return strings.TrimPrefix(last, "refs/tags/")
}
