// Package git provides the repository access layer: cached bare mirrors,
// tag-aware fetching, ref enumeration and working-tree checkouts. All
// protocol work is delegated to the system git binary.
package git

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"gitonboard/pkg/errors"
	"gitonboard/pkg/logging"
)

// Revision identifies a fetched commit together with the ref it was
// resolved from.
type Revision struct {
	SHA string
	Ref string
}

// Ref is a single entry of a ref listing, in encounter order.
type Ref struct {
	Name string
	SHA  string
}

// Repo is the narrow repository surface the onboarding pipeline needs.
// Repository implements it against the git binary; tests substitute fakes.
type Repo interface {
	// GitDir returns the path of the (bare) repository database
	GitDir() string

	// WorkTree returns the bound working tree, or "" when none is bound
	WorkTree() string

	// WithWorkTree returns a view of the same repository bound to dir
	WithWorkTree(dir string) Repo

	// FetchSingleRefWithTags fetches one ref, optionally together with all
	// tags. Full depth; partial requests a blob-less fetch.
	FetchSingleRefWithTags(ctx context.Context, url, ref string, fetchTags, partial bool) (Revision, error)

	// FetchSingleRef fetches one ref without tags at full depth
	FetchSingleRef(ctx context.Context, url, ref string, partial bool) (Revision, error)

	// ShowRef lists all refs known to the repository, preserving the
	// order git reports them in.
	ShowRef(ctx context.Context) ([]Ref, error)

	// LsRemote lists refs advertised by the remote at url
	LsRemote(ctx context.Context, url string, patterns ...string) ([]Ref, error)

	// ForceCheckout materializes the revision into the bound working tree
	ForceCheckout(ctx context.Context, sha string) error
}

// Repository runs git against a bare repository database, optionally
// bound to a working tree.
type Repository struct {
	gitDir   string
	workTree string
	logger   zerolog.Logger
}

// NewRepository creates a Repository for an existing git dir.
func NewRepository(gitDir string) *Repository {
	return &Repository{
		gitDir: gitDir,
		logger: logging.GetLogger("git.repository"),
	}
}

func (r *Repository) GitDir() string {
	return r.gitDir
}

func (r *Repository) WorkTree() string {
	return r.workTree
}

// WithWorkTree returns a copy of the repository bound to the given
// working tree. The receiver is not modified.
func (r *Repository) WithWorkTree(dir string) Repo {
	clone := *r
	clone.workTree = dir
	return &clone
}

// FetchSingleRefWithTags fetches ref from url, with all tags when
// fetchTags is set. The fetched commit is resolved through FETCH_HEAD.
func (r *Repository) FetchSingleRefWithTags(ctx context.Context, url, ref string, fetchTags, partial bool) (Revision, error) {
	args := []string{"fetch", "--no-recurse-submodules"}
	if fetchTags {
		args = append(args, "--tags")
	}
	if partial {
		args = append(args, "--filter=blob:none")
	}
	args = append(args, url, ref)

	if _, err := r.run(ctx, args...); err != nil {
		return Revision{}, err
	}

	sha, err := r.run(ctx, "rev-parse", "FETCH_HEAD")
	if err != nil {
		return Revision{}, err
	}
	return Revision{SHA: strings.TrimSpace(sha), Ref: ref}, nil
}

// FetchSingleRef fetches ref from url without tags.
func (r *Repository) FetchSingleRef(ctx context.Context, url, ref string, partial bool) (Revision, error) {
	return r.FetchSingleRefWithTags(ctx, url, ref, false, partial)
}

// ShowRef lists the refs of the repository in git's reporting order.
// A repository without refs yields an empty list, not an error.
func (r *Repository) ShowRef(ctx context.Context) ([]Ref, error) {
	out, err := r.run(ctx, "show-ref")
	if err != nil {
		// show-ref exits 1 on an empty ref database
		if errors.IsErrorCode(err, errors.ErrRepo) && strings.TrimSpace(out) == "" {
			return nil, nil
		}
		return nil, err
	}
	return ParseRefLines(out), nil
}

// LsRemote lists the refs advertised by the remote at url.
func (r *Repository) LsRemote(ctx context.Context, url string, patterns ...string) ([]Ref, error) {
	args := append([]string{"ls-remote", url}, patterns...)
	out, err := r.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return ParseRefLines(out), nil
}

// ForceCheckout checks out sha into the bound working tree, overwriting
// local modifications.
func (r *Repository) ForceCheckout(ctx context.Context, sha string) error {
	if r.workTree == "" {
		return errors.New(errors.ErrInvalidInput, "checkout requires a bound work tree")
	}
	_, err := r.run(ctx, "checkout", "-f", sha, "--", ".")
	return err
}

// run executes a git subcommand against this repository. stdout is
// returned even on failure so callers can inspect partial output.
func (r *Repository) run(ctx context.Context, args ...string) (string, error) {
	full := []string{"--git-dir", r.gitDir}
	if r.workTree != "" {
		full = append(full, "--work-tree", r.workTree)
	}
	full = append(full, args...)

	r.logger.Debug().Strs("args", full).Msg("Running git")

	cmd := exec.CommandContext(ctx, "git", full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			// Interruption must propagate, never be mistaken for a repo error
			return stdout.String(), ctx.Err()
		}
		r.logger.Debug().
			Err(err).
			Str("stderr", strings.TrimSpace(stderr.String())).
			Msg("git command failed")
		return stdout.String(), errors.Wrapf(err, errors.ErrRepo,
			"git %s: %s", args[0], strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// ParseRefLines parses "sha<TAB or space>refname" lines as emitted by
// show-ref and ls-remote, preserving encounter order.
func ParseRefLines(out string) []Ref {
	var refs []Ref
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		refs = append(refs, Ref{SHA: fields[0], Name: fields[1]})
	}
	return refs
}

// TagRefPrefix is the namespace of tag refs.
const TagRefPrefix = "refs/tags/"

// FilterTags returns the names of the refs under the tag namespace,
// preserving encounter order. Peeled "^{}" entries are skipped.
func FilterTags(refs []Ref) []string {
	var tags []string
	for _, ref := range refs {
		if !strings.HasPrefix(ref.Name, TagRefPrefix) {
			continue
		}
		if strings.HasSuffix(ref.Name, "^{}") {
			continue
		}
		tags = append(tags, ref.Name)
	}
	return tags
}
