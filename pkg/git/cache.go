package git

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"

	"gitonboard/pkg/errors"
	"gitonboard/pkg/logging"
)

// Backend hands out local repositories for remote URLs. MirrorCache is
// the production implementation.
type Backend interface {
	BareRepoForURL(ctx context.Context, url string) (Repo, error)
}

// MirrorCache keeps one bare repository per remote URL under a local
// cache directory, so repeated pipelines against the same origin reuse
// already-fetched objects.
type MirrorCache struct {
	baseDir string
	logger  zerolog.Logger
}

// NewMirrorCache creates a cache rooted at baseDir. An empty baseDir
// places mirrors under the XDG cache home.
func NewMirrorCache(baseDir string) *MirrorCache {
	if baseDir == "" {
		baseDir = filepath.Join(xdg.CacheHome, "gitonboard", "repos")
	}
	return &MirrorCache{
		baseDir: baseDir,
		logger:  logging.GetLogger("git.mirrorcache"),
	}
}

// BaseDir returns the cache root.
func (c *MirrorCache) BaseDir() string {
	return c.baseDir
}

// BareRepoForURL returns the cached bare repository for url, creating
// and initializing it on first use.
func (c *MirrorCache) BareRepoForURL(ctx context.Context, url string) (Repo, error) {
	dir := filepath.Join(c.baseDir, MirrorDirName(url))

	if _, err := os.Stat(filepath.Join(dir, "HEAD")); err == nil {
		c.logger.Debug().Str("url", url).Str("dir", dir).Msg("Reusing cached mirror")
		return NewRepository(dir), nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "creating mirror dir for %s", url)
	}

	repo := NewRepository(dir)
	if _, err := repo.run(ctx, "init", "--bare", dir); err != nil {
		return nil, err
	}

	c.logger.Debug().Str("url", url).Str("dir", dir).Msg("Initialized mirror")
	return repo, nil
}

// MirrorDirName derives a stable directory name for a remote URL: a
// readable slug plus a digest to avoid collisions between similar URLs.
func MirrorDirName(url string) string {
	sum := sha256.Sum256([]byte(url))
	return slugify(url) + "-" + hex.EncodeToString(sum[:])[:12]
}

func slugify(url string) string {
	s := url
	for _, prefix := range []string{"https://", "http://", "ssh://", "git://"} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.TrimSuffix(s, ".git")
	mapper := func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}
	s = strings.Map(mapper, s)
	if len(s) > 64 {
		s = s[:64]
	}
	return s
}
