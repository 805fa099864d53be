package heuristics

import (
	"gitonboard/pkg/glob"
)

// TransformationKind classifies a suggested content transformation.
type TransformationKind string

const (
	// KindNormalizeLineEndings suggests stripping carriage returns during copy
	KindNormalizeLineEndings TransformationKind = "normalize_line_endings"

	// KindNormalizeWhitespace suggests collapsing whitespace during copy
	KindNormalizeWhitespace TransformationKind = "normalize_whitespace"

	// KindReplace suggests a literal text replacement
	KindReplace TransformationKind = "replace"
)

// Transformation is one suggested content transformation with enough
// context for a human to accept or reject it.
type Transformation struct {
	Kind   TransformationKind
	Before string
	After  string
	Note   string
}

// Result bundles the three artifacts derived by one engine run. It is
// immutable once constructed.
type Result struct {
	originGlob              glob.Glob
	transformations         []Transformation
	destinationExcludePaths []string
}

// NewResult constructs a Result. Slices are copied.
func NewResult(originGlob glob.Glob, transformations []Transformation, destinationExcludePaths []string) *Result {
	return &Result{
		originGlob:              originGlob,
		transformations:         append([]Transformation(nil), transformations...),
		destinationExcludePaths: append([]string(nil), destinationExcludePaths...),
	}
}

// OriginGlob returns the inferred origin file pattern.
func (r *Result) OriginGlob() glob.Glob {
	return r.originGlob
}

// Transformations returns the suggested transformations.
func (r *Result) Transformations() []Transformation {
	return append([]Transformation(nil), r.transformations...)
}

// DestinationExcludePaths returns the paths that must stay
// destination-only.
func (r *Result) DestinationExcludePaths() []string {
	return append([]string(nil), r.destinationExcludePaths...)
}
