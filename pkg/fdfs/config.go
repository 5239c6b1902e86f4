package fdfs

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/fdfskit/pkg/file"
	"github.com/dmitrymomot/fdfskit/pkg/redis"
)

const (
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendOSS   = "oss"

	InfoCacheMemory = "memory"
	InfoCacheRedis  = "redis"
	InfoCacheNone   = "none"
)

// Config drives NewFromConfig. Tags are relative, nest it with
// `envPrefix:"FDFS_"` to read FDFS_ENABLED, FDFS_S3_BUCKET and so on.
type Config struct {
	Enabled       bool          `env:"ENABLED" envDefault:"false"`
	WebServerURL  string        `env:"WEB_SERVER_URL"`
	Group         string        `env:"GROUP" envDefault:"group1"`
	Backend       string        `env:"BACKEND" envDefault:"local"`
	LocalDir      string        `env:"LOCAL_DIR" envDefault:"./data/fdfs"`
	LocalBaseURL  string        `env:"LOCAL_BASE_URL" envDefault:"/files/"`
	UploadTimeout time.Duration `env:"UPLOAD_TIMEOUT" envDefault:"0s"`
	ThumbWidth    int           `env:"THUMB_WIDTH" envDefault:"150"`
	ThumbHeight   int           `env:"THUMB_HEIGHT" envDefault:"150"`
	InfoCache     string        `env:"INFO_CACHE" envDefault:"memory"`
	InfoCacheSize int           `env:"INFO_CACHE_SIZE" envDefault:"1024"`
	InfoCacheTTL  time.Duration `env:"INFO_CACHE_TTL" envDefault:"5m"`

	S3    file.S3Config `envPrefix:"S3_"`
	OSS   OSSConfig     `envPrefix:"OSS_"`
	Redis redis.Config  `envPrefix:"REDIS_"`
}

// OSSConfig describes an Aliyun OSS bucket, reached through its
// S3-compatible API.
type OSSConfig struct {
	Endpoint        string `env:"ENDPOINT"` // public endpoint, e.g. oss-cn-hangzhou.aliyuncs.com
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	AccessKeySecret string `env:"ACCESS_KEY_SECRET"`
	Intranet        string `env:"INTRANET"`      // internal endpoint
	OpenIntranet    int    `env:"OPEN_INTRANET"` // 1 uploads through Intranet
	Bucket          string `env:"BUCKET"`
	Region          string `env:"REGION"` // derived from the endpoint when empty
}

// S3Config maps the OSS settings to an S3 storage config. Public URLs
// always use the public endpoint, even when uploads go through the
// intranet one.
func (o OSSConfig) S3Config() (file.S3Config, error) {
	if o.Endpoint == "" || o.Bucket == "" {
		return file.S3Config{}, fmt.Errorf("%w: endpoint and bucket are required", ErrInvalidOSSConfig)
	}

	public, err := endpointURL(o.Endpoint)
	if err != nil {
		return file.S3Config{}, err
	}
	api := public
	if o.OpenIntranet == 1 && o.Intranet != "" {
		if api, err = endpointURL(o.Intranet); err != nil {
			return file.S3Config{}, err
		}
	}

	region := o.Region
	if region == "" {
		region = strings.TrimSuffix(strings.SplitN(api.Hostname(), ".", 2)[0], "-internal")
	}

	return file.S3Config{
		Bucket:      o.Bucket,
		Region:      region,
		AccessKeyID: o.AccessKeyID,
		SecretKey:   o.AccessKeySecret,
		Endpoint:    api.String(),
		BaseURL:     public.Scheme + "://" + o.Bucket + "." + public.Host + "/",
	}, nil
}

func endpointURL(endpoint string) (*url.URL, error) {
	e := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if !strings.Contains(e, "://") {
		e = "https://" + e
	}
	u, err := url.Parse(e)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: endpoint %q", ErrInvalidOSSConfig, endpoint)
	}
	return u, nil
}

// NewFromConfig builds the storage backend and info cache described by cfg
// and returns a Client over them. It returns ErrDisabled when cfg.Enabled
// is false. opts are applied after the config. Close the client to release
// the Redis connection.
func NewFromConfig(ctx context.Context, cfg Config, log *slog.Logger, opts ...Option) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	storage, err := newStorage(ctx, backend, cfg)
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithLogger(log),
		WithBackendName(backend),
		WithGroup(cfg.Group),
		WithWebServerURL(cfg.WebServerURL),
	}
	if cfg.ThumbWidth > 0 && cfg.ThumbHeight > 0 {
		base = append(base, WithThumbSize(cfg.ThumbWidth, cfg.ThumbHeight))
	}

	var cleanup func() error
	switch strings.ToLower(strings.TrimSpace(cfg.InfoCache)) {
	case InfoCacheMemory:
		base = append(base, WithInfoCache(NewMemoryInfoCache(cfg.InfoCacheSize, cfg.InfoCacheTTL)))
	case InfoCacheRedis:
		rdb, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		cleanup = rdb.Close
		base = append(base,
			WithInfoCache(NewRedisInfoCache(redis.NewStoreWithConfig(rdb, cfg.Redis), cfg.InfoCacheTTL)),
			WithHealthCheck(redis.Healthcheck(rdb)),
			withCloser(cleanup),
		)
	case InfoCacheNone, "":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedInfoCache, cfg.InfoCache)
	}

	c, err := New(storage, append(base, opts...)...)
	if err != nil {
		if cleanup != nil {
			_ = cleanup()
		}
		return nil, err
	}
	return c, nil
}

func newStorage(ctx context.Context, backend string, cfg Config) (file.Storage, error) {
	switch backend {
	case BackendLocal:
		s, err := file.NewLocalStorage(cfg.LocalDir, cfg.LocalBaseURL, file.WithLocalUploadTimeout(cfg.UploadTimeout))
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendS3, BackendOSS:
		s3cfg := cfg.S3
		if backend == BackendOSS {
			var err error
			if s3cfg, err = cfg.OSS.S3Config(); err != nil {
				return nil, err
			}
		}
		s, err := file.NewS3Storage(ctx, s3cfg, file.WithS3UploadTimeout(cfg.UploadTimeout))
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, backend)
	}
}
