package fdfs_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fdfskit/pkg/fdfs"
	"github.com/dmitrymomot/fdfskit/pkg/file"
	"github.com/dmitrymomot/fdfskit/pkg/logger"
)

func TestConfig_Env(t *testing.T) {
	t.Parallel()

	var cfg fdfs.Config
	err := env.ParseWithOptions(&cfg, env.Options{
		Prefix: "FDFS_",
		Environment: map[string]string{
			"FDFS_ENABLED":           "true",
			"FDFS_WEB_SERVER_URL":    "img.example.com",
			"FDFS_BACKEND":           "oss",
			"FDFS_INFO_CACHE_TTL":    "30s",
			"FDFS_OSS_ENDPOINT":      "oss-cn-hangzhou.aliyuncs.com",
			"FDFS_OSS_BUCKET":        "media",
			"FDFS_OSS_OPEN_INTRANET": "1",
			"FDFS_S3_BUCKET":         "s3-bucket",
			"FDFS_REDIS_URL":         "redis://cache:6379/1",
		},
	})
	require.NoError(t, err)

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "img.example.com", cfg.WebServerURL)
	assert.Equal(t, "group1", cfg.Group)
	assert.Equal(t, "oss", cfg.Backend)
	assert.Equal(t, 150, cfg.ThumbWidth)
	assert.Equal(t, "memory", cfg.InfoCache)
	assert.Equal(t, 30*time.Second, cfg.InfoCacheTTL)
	assert.Equal(t, "media", cfg.OSS.Bucket)
	assert.Equal(t, 1, cfg.OSS.OpenIntranet)
	assert.Equal(t, "s3-bucket", cfg.S3.Bucket)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.ConnectionURL)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	localCfg := func(t *testing.T) fdfs.Config {
		return fdfs.Config{
			Enabled:       true,
			Group:         "group7",
			Backend:       "local",
			LocalDir:      t.TempDir(),
			LocalBaseURL:  "/files/",
			ThumbWidth:    64,
			ThumbHeight:   32,
			InfoCache:     "memory",
			InfoCacheSize: 8,
			InfoCacheTTL:  time.Minute,
		}
	}

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		_, err := fdfs.NewFromConfig(ctx, fdfs.Config{}, nil)
		assert.ErrorIs(t, err, fdfs.ErrDisabled)
	})

	t.Run("local backend", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithLevel(-4))

		c, err := fdfs.NewFromConfig(ctx, localCfg(t), log)
		require.NoError(t, err)
		t.Cleanup(func() { _ = c.Close() })

		assert.Equal(t, "group7", c.Group())
		assert.Equal(t, "M00/a_64x32.jpg", c.ThumbPath("M00/a.jpg"))

		sp, err := c.UploadText(ctx, "hello", "txt")
		require.NoError(t, err)
		assert.Equal(t, "/files/"+sp.FullPath(), c.URL(sp))
		assert.Contains(t, buf.String(), `"backend":"local"`)
		assert.Contains(t, buf.String(), "file uploaded")
	})

	t.Run("options override config", func(t *testing.T) {
		t.Parallel()
		c, err := fdfs.NewFromConfig(ctx, localCfg(t), nil, fdfs.WithGroup("group9"))
		require.NoError(t, err)
		assert.Equal(t, "group9", c.Group())
	})

	t.Run("invalid group", func(t *testing.T) {
		t.Parallel()
		cfg := localCfg(t)
		cfg.Group = "bucket"
		_, err := fdfs.NewFromConfig(ctx, cfg, nil)
		assert.ErrorIs(t, err, fdfs.ErrInvalidGroup)
	})

	t.Run("unsupported backend", func(t *testing.T) {
		t.Parallel()
		cfg := localCfg(t)
		cfg.Backend = "ftp"
		_, err := fdfs.NewFromConfig(ctx, cfg, nil)
		assert.ErrorIs(t, err, fdfs.ErrUnsupportedBackend)
	})

	t.Run("unsupported cache", func(t *testing.T) {
		t.Parallel()
		cfg := localCfg(t)
		cfg.InfoCache = "memcached"
		_, err := fdfs.NewFromConfig(ctx, cfg, nil)
		assert.ErrorIs(t, err, fdfs.ErrUnsupportedInfoCache)
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		t.Parallel()
		cfg := localCfg(t)
		cfg.Backend = "S3"
		_, err := fdfs.NewFromConfig(ctx, cfg, nil)
		assert.ErrorIs(t, err, file.ErrInvalidConfig)
	})

	t.Run("oss without endpoint", func(t *testing.T) {
		t.Parallel()
		cfg := localCfg(t)
		cfg.Backend = "oss"
		_, err := fdfs.NewFromConfig(ctx, cfg, nil)
		assert.ErrorIs(t, err, fdfs.ErrInvalidOSSConfig)
	})
}

func TestOSSConfig_S3Config(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		oss  fdfs.OSSConfig
		want file.S3Config
	}{
		{
			name: "public endpoint",
			oss: fdfs.OSSConfig{
				Endpoint:        "oss-cn-hangzhou.aliyuncs.com",
				AccessKeyID:     "ak",
				AccessKeySecret: "sk",
				Bucket:          "media",
			},
			want: file.S3Config{
				Bucket:      "media",
				Region:      "oss-cn-hangzhou",
				AccessKeyID: "ak",
				SecretKey:   "sk",
				Endpoint:    "https://oss-cn-hangzhou.aliyuncs.com",
				BaseURL:     "https://media.oss-cn-hangzhou.aliyuncs.com/",
			},
		},
		{
			name: "intranet upload",
			oss: fdfs.OSSConfig{
				Endpoint:     "http://oss-cn-beijing.aliyuncs.com/",
				Intranet:     "oss-cn-beijing-internal.aliyuncs.com",
				OpenIntranet: 1,
				Bucket:       "media",
			},
			want: file.S3Config{
				Bucket:   "media",
				Region:   "oss-cn-beijing",
				Endpoint: "https://oss-cn-beijing-internal.aliyuncs.com",
				BaseURL:  "http://media.oss-cn-beijing.aliyuncs.com/",
			},
		},
		{
			name: "intranet configured but closed",
			oss: fdfs.OSSConfig{
				Endpoint:     "oss-cn-beijing.aliyuncs.com",
				Intranet:     "oss-cn-beijing-internal.aliyuncs.com",
				OpenIntranet: 0,
				Bucket:       "media",
				Region:       "cn-beijing",
			},
			want: file.S3Config{
				Bucket:   "media",
				Region:   "cn-beijing",
				Endpoint: "https://oss-cn-beijing.aliyuncs.com",
				BaseURL:  "https://media.oss-cn-beijing.aliyuncs.com/",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.oss.S3Config()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := fdfs.OSSConfig{Endpoint: "oss-cn-hangzhou.aliyuncs.com"}.S3Config()
	assert.ErrorIs(t, err, fdfs.ErrInvalidOSSConfig)
}
