// Package glob provides the include/exclude pattern pair used to describe
// which origin files take part in a migration.
package glob

import (
	"path"
	"sort"
	"strings"
)

// Glob is an immutable pair of include and exclude patterns over
// slash-separated relative paths. Patterns support "*" within a path
// segment and "**" for any number of segments.
type Glob struct {
	include []string
	exclude []string
}

// New creates a Glob from include and exclude pattern lists.
// The pattern lists are copied and sorted for stable output.
func New(include, exclude []string) Glob {
	g := Glob{
		include: append([]string(nil), include...),
		exclude: append([]string(nil), exclude...),
	}
	sort.Strings(g.include)
	sort.Strings(g.exclude)
	return g
}

// All returns the glob that includes everything and excludes nothing.
func All() Glob {
	return New([]string{"**"}, nil)
}

// Noop returns the semantically empty glob: everything included,
// everything excluded. Heuristics that learned nothing produce it.
func Noop() Glob {
	return New([]string{"**"}, []string{"**"})
}

// Include returns the include patterns.
func (g Glob) Include() []string {
	return append([]string(nil), g.include...)
}

// Exclude returns the exclude patterns.
func (g Glob) Exclude() []string {
	return append([]string(nil), g.exclude...)
}

// IsNoop reports whether the glob carries no signal: it includes
// everything and excludes everything.
func (g Glob) IsNoop() bool {
	return g.Equal(Noop())
}

// Equal reports whether two globs have identical pattern sets.
func (g Glob) Equal(other Glob) bool {
	if len(g.include) != len(other.include) || len(g.exclude) != len(other.exclude) {
		return false
	}
	for i, p := range g.include {
		if other.include[i] != p {
			return false
		}
	}
	for i, p := range g.exclude {
		if other.exclude[i] != p {
			return false
		}
	}
	return true
}

// Matches reports whether the relative path is selected by the glob:
// matched by at least one include pattern and no exclude pattern.
func (g Glob) Matches(rel string) bool {
	rel = path.Clean(strings.TrimPrefix(rel, "/"))
	included := false
	for _, p := range g.include {
		if matchPattern(p, rel) {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, p := range g.exclude {
		if matchPattern(p, rel) {
			return false
		}
	}
	return true
}

// String renders the glob in the textual form used in generated configs.
func (g Glob) String() string {
	var b strings.Builder
	b.WriteString("glob(include = [")
	b.WriteString(quoteJoin(g.include))
	b.WriteString("]")
	if len(g.exclude) > 0 {
		b.WriteString(", exclude = [")
		b.WriteString(quoteJoin(g.exclude))
		b.WriteString("]")
	}
	b.WriteString(")")
	return b.String()
}

func quoteJoin(patterns []string) string {
	quoted := make([]string, len(patterns))
	for i, p := range patterns {
		quoted[i] = `"` + p + `"`
	}
	return strings.Join(quoted, ", ")
}

// matchPattern matches a slash-separated path against a pattern where
// "**" spans any number of segments and other segments use path.Match.
func matchPattern(pattern, rel string) bool {
	return matchSegments(strings.Split(pattern, "/"), strings.Split(rel, "/"))
}

func matchSegments(pattern, segs []string) bool {
	if len(pattern) == 0 {
		return len(segs) == 0
	}
	if pattern[0] == "**" {
		// "**" may swallow zero or more leading segments
		for i := 0; i <= len(segs); i++ {
			if matchSegments(pattern[1:], segs[i:]) {
				return true
			}
		}
		return false
	}
	if len(segs) == 0 {
		return false
	}
	ok, err := path.Match(pattern[0], segs[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pattern[1:], segs[1:])
}
