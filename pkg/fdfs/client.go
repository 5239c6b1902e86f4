package fdfs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/fdfskit/pkg/file"
	"github.com/dmitrymomot/fdfskit/pkg/logger"
	"github.com/dmitrymomot/fdfskit/pkg/pathutil"
)

const (
	DefaultGroup       = "group1"
	DefaultThumbWidth  = 150
	DefaultThumbHeight = 150
)

// Client stores files on a file.Storage backend under FastDFS-style
// "<group>/M00/.." paths and hands out access URLs for them.
// It is safe for concurrent use.
type Client struct {
	storage     file.Storage
	backend     string
	group       string
	webURL      string
	thumbWidth  int
	thumbHeight int
	maxPixels   int
	cache       InfoCache
	fills       singleflight.Group
	newPath     KeyGenerator
	log         *slog.Logger
	checks      []func(context.Context) error
	closers     []func() error
}

type Option func(*Client)

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithInfoCache caches FileInfo lookups. Nil disables caching.
func WithInfoCache(ic InfoCache) Option {
	return func(c *Client) { c.cache = ic }
}

// WithThumbSize sets the bounding box for generated thumbnails.
func WithThumbSize(width, height int) Option {
	if width <= 0 || height <= 0 {
		panic("fdfs: WithThumbSize: width and height must be > 0")
	}
	return func(c *Client) {
		c.thumbWidth = width
		c.thumbHeight = height
	}
}

// WithMaxImagePixels caps width*height of images accepted for thumbnails.
func WithMaxImagePixels(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxPixels = n
		}
	}
}

// WithWebServerURL sets the public address files are served from, e.g.
// "img.example.com" or "https://cdn.example.com/files". A missing scheme
// means http. Without it, access URLs come from the storage backend.
func WithWebServerURL(u string) Option {
	return func(c *Client) { c.webURL = webServerURL(u) }
}

// WithGroup sets the group new files are stored in. The name must contain
// "group" so paths can be parsed back.
func WithGroup(group string) Option {
	return func(c *Client) { c.group = strings.TrimSpace(group) }
}

// WithKeyGenerator replaces the path layout of new files.
func WithKeyGenerator(fn KeyGenerator) Option {
	return func(c *Client) {
		if fn != nil {
			c.newPath = fn
		}
	}
}

// WithBackendName labels log records with the backend name.
func WithBackendName(name string) Option {
	return func(c *Client) { c.backend = name }
}

// WithHealthCheck adds a dependency probe reported by Checks.
func WithHealthCheck(fn func(context.Context) error) Option {
	return func(c *Client) {
		if fn != nil {
			c.checks = append(c.checks, fn)
		}
	}
}

func withCloser(fn func() error) Option {
	return func(c *Client) { c.closers = append(c.closers, fn) }
}

// New returns a Client over storage.
func New(storage file.Storage, opts ...Option) (*Client, error) {
	if storage == nil {
		return nil, ErrNilStorage
	}

	c := &Client{
		storage:     storage,
		backend:     fmt.Sprintf("%T", storage),
		group:       DefaultGroup,
		thumbWidth:  DefaultThumbWidth,
		thumbHeight: DefaultThumbHeight,
		maxPixels:   50_000_000,
		newPath:     defaultKeyGenerator,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := validateGroup(c.group); err != nil {
		return nil, err
	}
	c.log = c.log.With(logger.Component("fdfs"), logger.Backend(c.backend))

	return c, nil
}

func validateGroup(g string) error {
	if !strings.Contains(g, groupMarker) || strings.ContainsAny(g, `/\:`) || pathutil.Normalize(g) != g {
		return fmt.Errorf("%w: %q", ErrInvalidGroup, g)
	}
	return nil
}

func webServerURL(u string) string {
	u = strings.TrimRight(strings.TrimSpace(u), "/")
	if u == "" || strings.Contains(u, "://") {
		return u
	}
	return "http://" + u
}

func (c *Client) Group() string { return c.group }

func (c *Client) Storage() file.Storage { return c.storage }

// AccessURL returns the public URL of fullPath.
func (c *Client) AccessURL(fullPath string) string {
	p := strings.TrimPrefix(pathutil.Normalize(fullPath), "/")
	if c.webURL == "" {
		return c.storage.URL(p)
	}
	return c.webURL + "/" + p
}

func (c *Client) URL(sp StorePath) string { return c.AccessURL(sp.FullPath()) }

// ThumbPath returns the thumbnail path for a file path:
// "M00/00/00/a.jpg" becomes "M00/00/00/a_150x150.jpg".
func (c *Client) ThumbPath(path string) string {
	return thumbPath(path, c.thumbWidth, c.thumbHeight)
}

// Resolve parses a full path or access URL into a StorePath. URLs under
// the configured web server have that prefix removed first.
func (c *Client) Resolve(ref string) (StorePath, error) {
	ref = strings.TrimSpace(ref)
	if c.webURL != "" && len(ref) > len(c.webURL) && strings.EqualFold(ref[:len(c.webURL)], c.webURL) {
		ref = ref[len(c.webURL):]
	}
	return ParseStorePath(ref)
}

// Checks returns the readiness probes of the client: the storage backend
// plus anything registered with WithHealthCheck.
func (c *Client) Checks() []func(context.Context) error {
	storageCheck := func(ctx context.Context) error {
		_, err := c.storage.List(ctx, "")
		return err
	}
	return append([]func(context.Context) error{storageCheck}, c.checks...)
}

// Close releases resources opened by NewFromConfig.
func (c *Client) Close() error {
	var errs []error
	for _, fn := range c.closers {
		errs = append(errs, fn())
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *Client) cacheGet(ctx context.Context, key string) (FileInfo, bool) {
	if c.cache == nil {
		return FileInfo{}, false
	}
	info, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.WarnContext(ctx, "info cache read failed", logger.StorageKey(key), logger.Error(err))
		return FileInfo{}, false
	}
	return info, ok
}

func (c *Client) cacheSet(ctx context.Context, info FileInfo) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, info); err != nil {
		c.log.WarnContext(ctx, "info cache write failed", logger.StorageKey(info.StorePath().FullPath()), logger.Error(err))
	}
}

func (c *Client) cacheDelete(ctx context.Context, key string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, key); err != nil {
		c.log.WarnContext(ctx, "info cache delete failed", logger.StorageKey(key), logger.Error(err))
	}
}
