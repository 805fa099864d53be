package heuristics

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitonboard/pkg/glob"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func run(t *testing.T, params Params) *Result {
	t.Helper()
	result, err := New(params).Run(context.Background())
	require.NoError(t, err)
	return result
}

func TestRunIdenticalTrees(t *testing.T) {
	origin, dest := t.TempDir(), t.TempDir()
	files := map[string]string{
		"main.go":       "package main\n",
		"lib/helper.go": "package lib\n",
	}
	writeTree(t, origin, files)
	writeTree(t, dest, files)

	result := run(t, Params{Origin: origin, Destination: dest, PercentSimilar: 80})

	assert.True(t, result.OriginGlob().Equal(glob.All()))
	assert.Empty(t, result.Transformations())
}

func TestRunNothingMatchesYieldsNoopGlob(t *testing.T) {
	origin, dest := t.TempDir(), t.TempDir()
	writeTree(t, origin, map[string]string{"a.txt": "completely different\n"})
	writeTree(t, dest, map[string]string{"b.txt": "unrelated\n"})

	result := run(t, Params{Origin: origin, Destination: dest, PercentSimilar: 90})

	assert.True(t, result.OriginGlob().IsNoop())
}

func TestRunPartialMatchExcludesUnmatched(t *testing.T) {
	origin, dest := t.TempDir(), t.TempDir()
	writeTree(t, origin, map[string]string{
		"src/a.go":       "package src\nfunc A() {}\n",
		"src/b.go":       "package src\nfunc B() {}\n",
		"internal/x.go":  "package internal\n",
		"internal/y.go":  "package internal\nvar Y int\n",
		"docs/readme.md": "# docs\n",
	})
	writeTree(t, dest, map[string]string{
		"src/a.go":       "package src\nfunc A() {}\n",
		"src/b.go":       "package src\nfunc B() {}\n",
		"docs/readme.md": "# docs\n",
	})

	result := run(t, Params{Origin: origin, Destination: dest, PercentSimilar: 80})

	g := result.OriginGlob()
	assert.False(t, g.IsNoop())
	// the fully-unmatched internal/ subtree collapses to one pattern
	assert.Contains(t, g.Exclude(), "internal/**")
	assert.True(t, g.Matches("src/a.go"))
	assert.False(t, g.Matches("internal/x.go"))
}

func TestRunSimilarityThreshold(t *testing.T) {
	origin, dest := t.TempDir(), t.TempDir()
	content := "line1\nline2\nline3\nline4\nline5\nline6\nline7\nline8\nline9\nline10\n"
	writeTree(t, origin, map[string]string{"f.txt": content})
	// one of ten lines changed: ~90% similar
	writeTree(t, dest, map[string]string{"f.txt": "line1\nline2\nline3\nline4\nCHANGED\nline6\nline7\nline8\nline9\nline10\n"})

	lenient := run(t, Params{Origin: origin, Destination: dest, PercentSimilar: 80})
	assert.False(t, lenient.OriginGlob().IsNoop())

	strict := run(t, Params{Origin: origin, Destination: dest, PercentSimilar: 99})
	assert.True(t, strict.OriginGlob().IsNoop())
}

func TestRunWhitespaceOnlyDifferenceSuggestsTransformation(t *testing.T) {
	origin, dest := t.TempDir(), t.TempDir()
	writeTree(t, origin, map[string]string{"f.txt": "alpha  beta\n\tgamma\n"})
	writeTree(t, dest, map[string]string{"f.txt": "alpha beta\ngamma\n"})

	result := run(t, Params{
		Origin:           origin,
		Destination:      dest,
		PercentSimilar:   100,
		IgnoreWhitespace: true,
	})

	assert.False(t, result.OriginGlob().IsNoop())
	require.Len(t, result.Transformations(), 1)
	assert.Equal(t, KindNormalizeWhitespace, result.Transformations()[0].Kind)
}

func TestRunCarriageReturnOnlyDifference(t *testing.T) {
	origin, dest := t.TempDir(), t.TempDir()
	writeTree(t, origin, map[string]string{"f.txt": "alpha\r\nbeta\r\n"})
	writeTree(t, dest, map[string]string{"f.txt": "alpha\nbeta\n"})

	result := run(t, Params{
		Origin:               origin,
		Destination:          dest,
		PercentSimilar:       100,
		IgnoreCarriageReturn: true,
	})

	require.Len(t, result.Transformations(), 1)
	assert.Equal(t, KindNormalizeLineEndings, result.Transformations()[0].Kind)
}

func TestRunVersionPinSuggestion(t *testing.T) {
	origin, dest := t.TempDir(), t.TempDir()
	files := map[string]string{"version.txt": "current release: 1.2.0\n"}
	writeTree(t, origin, files)
	writeTree(t, dest, files)

	result := run(t, Params{
		Origin:         origin,
		Destination:    dest,
		PercentSimilar: 80,
		Versions:       []string{"refs/tags/1.0.0", "refs/tags/1.2.0"},
	})

	require.Len(t, result.Transformations(), 1)
	tr := result.Transformations()[0]
	assert.Equal(t, KindReplace, tr.Kind)
	assert.Equal(t, "1.2.0", tr.Before)
	assert.Equal(t, "${VERSION}", tr.After)
}

func TestRunDestinationExcludePaths(t *testing.T) {
	origin, dest := t.TempDir(), t.TempDir()
	writeTree(t, origin, map[string]string{
		"main.go":    "package main\n",
		"shared.txt": "both sides\n",
	})
	writeTree(t, dest, map[string]string{
		"main.go":        "package main\n",
		"shared.txt":     "both sides\n",
		"generated/x.pb": "binary\n",
		"OWNERS":         "someone\n",
	})

	result := run(t, Params{
		Origin:               origin,
		Destination:          dest,
		PercentSimilar:       80,
		DestinationOnlyPaths: []string{"generated/x.pb", "OWNERS", "shared.txt"},
	})

	// shared.txt exists in origin too, so it is dropped from the set
	assert.Equal(t, []string{"OWNERS", "generated/x.pb"}, result.DestinationExcludePaths())
}

func TestRunSkipsGitDir(t *testing.T) {
	origin, dest := t.TempDir(), t.TempDir()
	writeTree(t, origin, map[string]string{
		"main.go":      "package main\n",
		".git/config":  "[core]\n",
		".git/objects": "x",
	})
	writeTree(t, dest, map[string]string{"main.go": "package main\n"})

	result := run(t, Params{Origin: origin, Destination: dest, PercentSimilar: 80})
	assert.True(t, result.OriginGlob().Equal(glob.All()))
}

func TestRunInvalidPercent(t *testing.T) {
	_, err := New(Params{Origin: t.TempDir(), Destination: t.TempDir(), PercentSimilar: 130}).
		Run(context.Background())
	assert.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	origin, dest := t.TempDir(), t.TempDir()
	writeTree(t, origin, map[string]string{"a.txt": "x\n"})
	writeTree(t, dest, map[string]string{"a.txt": "x\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Params{Origin: origin, Destination: dest, PercentSimilar: 80}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
