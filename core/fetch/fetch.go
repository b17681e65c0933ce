// Package fetch provides the blocking network-fetch collaborator used by
// the file and directory data types: single-file downloads, tar archive
// extraction, and a process-wide URL-keyed cache of fetched artifacts.
package fetch

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"

	"github.com/dvschultz/MUNIT-runway/adapters/metrics"
)

// Options configures a Cache.
type Options struct {
	// Dir is the cache directory. Defaults to a fixed directory under
	// the OS temp dir.
	Dir string

	// Client is the HTTP client used for downloads. Defaults to
	// http.DefaultClient. Fetches have no built-in timeout or retry;
	// callers wanting either configure the client.
	Client *http.Client

	// Logger receives fetch and cache events. Defaults to a no-op
	// logger.
	Logger *zerolog.Logger

	// Metrics, when set, records fetch counts, bytes and durations.
	Metrics *metrics.Collector
}

// Cache downloads remote resources into a local content-addressed cache.
// Artifacts are keyed by the URL digest; a persistent SQLite index maps
// keys to local paths so artifacts survive process restarts. At most one
// fetch per distinct URL runs at a time; concurrent requests for the
// same URL share the in-flight result.
type Cache struct {
	dir     string
	client  *http.Client
	logger  zerolog.Logger
	metrics *metrics.Collector
	idx     *index

	mu       sync.Mutex
	inflight map[string]*flight
}

type flight struct {
	done chan struct{}
	path string
	err  error
}

// New creates a cache rooted at opts.Dir, opening (or creating) its
// persistent index.
func New(opts Options) (*Cache, error) {
	dir := opts.Dir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "munit-cache")
	}
	for _, sub := range []string{"objects", "tmp"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	idx, err := openIndex(filepath.Join(dir, "index.db"))
	if err != nil {
		return nil, err
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &Cache{
		dir:      dir,
		client:   client,
		logger:   logger,
		metrics:  opts.Metrics,
		idx:      idx,
		inflight: make(map[string]*flight),
	}, nil
}

var (
	defaultOnce  sync.Once
	defaultCache *Cache
	defaultErr   error
)

// Default returns the process-wide cache, creating it on first use.
func Default() (*Cache, error) {
	defaultOnce.Do(func() {
		defaultCache, defaultErr = New(Options{})
	})
	return defaultCache, defaultErr
}

// Close releases the cache index. Cached artifacts stay on disk.
func (c *Cache) Close() error {
	return c.idx.Close()
}

// Dir returns the cache root directory.
func (c *Cache) Dir() string { return c.dir }

// File fetches a single file and returns its local path. A previously
// fetched artifact for the same URL is reused when it still exists.
func (c *Cache) File(ctx context.Context, rawURL string) (string, error) {
	return c.fetch(ctx, rawURL, "file")
}

// Archive fetches a tar or tar.gz archive, extracts it, and returns the
// extraction directory path.
func (c *Cache) Archive(ctx context.Context, rawURL string) (string, error) {
	return c.fetch(ctx, rawURL, "archive")
}

func (c *Cache) fetch(ctx context.Context, rawURL, kind string) (string, error) {
	key := urlKey(rawURL)

	if p, ok := c.lookup(ctx, key); ok {
		c.logger.Debug().Str("url", rawURL).Str("path", p).Msg("fetch cache hit")
		if c.metrics != nil {
			c.metrics.CacheHits.WithLabelValues(kind).Inc()
		}
		return p, nil
	}
	if c.metrics != nil {
		c.metrics.CacheMisses.WithLabelValues(kind).Inc()
	}

	c.mu.Lock()
	if f, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		<-f.done
		return f.path, f.err
	}
	f := &flight{done: make(chan struct{})}
	c.inflight[key] = f
	c.mu.Unlock()

	f.path, f.err = c.download(ctx, key, rawURL, kind)

	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
	close(f.done)

	return f.path, f.err
}

// lookup consults the index and verifies the artifact still exists;
// stale entries force a re-fetch.
func (c *Cache) lookup(ctx context.Context, key string) (string, bool) {
	p, ok, err := c.idx.get(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Msg("fetch index lookup failed")
		return "", false
	}
	if !ok {
		return "", false
	}
	if _, err := os.Stat(p); err != nil {
		return "", false
	}
	return p, true
}

func (c *Cache) download(ctx context.Context, key, rawURL, kind string) (string, error) {
	start := time.Now()
	p, size, err := c.downloadInto(ctx, key, rawURL, kind)
	if c.metrics != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		c.metrics.FetchesTotal.WithLabelValues(kind, result).Inc()
		c.metrics.FetchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		if size > 0 {
			c.metrics.BytesFetched.Add(float64(size))
		}
	}
	if err != nil {
		c.logger.Error().Err(err).Str("url", rawURL).Msg("fetch failed")
		return "", err
	}
	c.logger.Info().
		Str("url", rawURL).
		Str("kind", kind).
		Str("path", p).
		Int64("bytes", size).
		Dur("elapsed", time.Since(start)).
		Msg("fetched remote resource")
	if err := c.idx.put(ctx, key, rawURL, kind, p, size); err != nil {
		c.logger.Warn().Err(err).Msg("fetch index update failed")
	}
	return p, nil
}

func (c *Cache) downloadInto(ctx context.Context, key, rawURL, kind string) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("build request for %s: %w", rawURL, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("fetch %s: unexpected status %s", rawURL, resp.Status)
	}

	staging := filepath.Join(c.dir, "tmp", uuid.NewString())
	final := filepath.Join(c.dir, "objects", key)

	if kind == "archive" {
		size, err := extractArchive(resp.Body, staging)
		if err != nil {
			os.RemoveAll(staging)
			return "", 0, fmt.Errorf("extract %s: %w", rawURL, err)
		}
		if err := commit(staging, final); err != nil {
			return "", 0, err
		}
		return final, size, nil
	}

	if err := os.MkdirAll(staging, 0o755); err != nil {
		return "", 0, fmt.Errorf("create staging dir: %w", err)
	}
	name := remoteName(rawURL)
	tmp := filepath.Join(staging, name)
	out, err := os.Create(tmp)
	if err != nil {
		os.RemoveAll(staging)
		return "", 0, fmt.Errorf("create %s: %w", tmp, err)
	}
	size, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.RemoveAll(staging)
		return "", 0, fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := commit(staging, final); err != nil {
		return "", 0, err
	}
	return filepath.Join(final, name), size, nil
}

// commit moves a fully staged artifact into its final cache location. A
// concurrent or earlier artifact at the destination is replaced.
func commit(staging, final string) error {
	if err := os.RemoveAll(final); err != nil {
		os.RemoveAll(staging)
		return fmt.Errorf("replace cached artifact: %w", err)
	}
	if err := os.Rename(staging, final); err != nil {
		os.RemoveAll(staging)
		return fmt.Errorf("commit cached artifact: %w", err)
	}
	return nil
}

// remoteName derives a local filename from the URL path so extension
// checks on the deserialized path keep working.
func remoteName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "resource"
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "resource"
	}
	return name
}

// urlKey content-addresses a URL.
func urlKey(rawURL string) string {
	sum := blake2b.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:16])
}
