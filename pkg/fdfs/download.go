package fdfs

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/fdfskit/pkg/file"
	"github.com/dmitrymomot/fdfskit/pkg/fileutil"
	"github.com/dmitrymomot/fdfskit/pkg/logger"
)

// fillTimeout bounds a shared FileInfo backend lookup.
const fillTimeout = 30 * time.Second

// Open streams the file addressed by ref, a full path or access URL.
// The caller closes the reader.
func (c *Client) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	sp, err := c.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return c.storage.Get(ctx, sp.FullPath())
}

// Download reads the whole file addressed by ref into memory.
func (c *Client) Download(ctx context.Context, ref string) ([]byte, error) {
	rc, err := c.Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", file.ErrFailedToReadFile, err)
	}
	return data, nil
}

// DownloadTo writes the file addressed by ref to the local path dst,
// creating parent directories. It returns the number of bytes written.
func (c *Client) DownloadTo(ctx context.Context, ref, dst string) (int64, error) {
	rc, err := c.Open(ctx, ref)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rc.Close() }()

	return fileutil.CopyTo(rc, dst)
}

// Delete removes the file addressed by ref and drops its cached info.
func (c *Client) Delete(ctx context.Context, ref string) error {
	sp, err := c.Resolve(ref)
	if err != nil {
		return err
	}
	key := sp.FullPath()

	c.cacheDelete(ctx, key)
	if err := c.storage.Delete(ctx, key); err != nil {
		c.log.ErrorContext(ctx, "delete failed", logger.StorageKey(key), logger.Error(err))
		return err
	}

	c.log.DebugContext(ctx, "file deleted", logger.StorageGroup(sp.Group), logger.StorageKey(key))
	return nil
}

// Exists reports whether ref addresses a stored file.
func (c *Client) Exists(ctx context.Context, ref string) bool {
	_, err := c.FileInfo(ctx, ref)
	return err == nil
}

// FileInfo returns size, creation time, CRC32 and content type of the file
// addressed by ref. Results are cached when an InfoCache is configured, and
// concurrent lookups of the same file share one backend call.
func (c *Client) FileInfo(ctx context.Context, ref string) (FileInfo, error) {
	sp, err := c.Resolve(ref)
	if err != nil {
		return FileInfo{}, err
	}
	key := sp.FullPath()

	if info, ok := c.cacheGet(ctx, key); ok {
		return info, nil
	}

	// The shared lookup outlives any single caller; each caller only waits
	// on its own context.
	ch := c.fills.DoChan(key, func() (any, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fillTimeout)
		defer cancel()

		obj, err := c.storage.Stat(fillCtx, key)
		if err != nil {
			return FileInfo{}, err
		}
		info := infoFromObject(sp, obj)
		c.cacheSet(fillCtx, info)
		return info, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return FileInfo{}, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return FileInfo{}, res.Err
	}
	return res.Val.(FileInfo), nil
}
