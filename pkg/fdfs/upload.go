package fdfs

import (
	"bytes"
	"context"
	"fmt"
	"hash/crc32"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dmitrymomot/fdfskit/pkg/file"
	"github.com/dmitrymomot/fdfskit/pkg/fileutil"
	"github.com/dmitrymomot/fdfskit/pkg/logger"
)

// UploadReader stores the content of r as a new file with extension ext.
// Seekable readers are hashed in place; others are buffered in memory.
func (c *Client) UploadReader(ctx context.Context, r io.Reader, ext string) (StorePath, error) {
	ext, err := cleanExt(ext)
	if err != nil {
		return StorePath{}, err
	}
	sp := StorePath{Group: c.group, Path: c.newPath(ext)}
	if err := c.store(ctx, sp, r, ""); err != nil {
		return StorePath{}, err
	}
	return sp, nil
}

func (c *Client) UploadBytes(ctx context.Context, data []byte, ext string) (StorePath, error) {
	return c.UploadReader(ctx, bytes.NewReader(data), ext)
}

// UploadText stores content as UTF-8 text.
func (c *Client) UploadText(ctx context.Context, content, ext string) (StorePath, error) {
	return c.UploadReader(ctx, bytes.NewReader([]byte(content)), ext)
}

// UploadBase64 decodes data, with or without a data URI prefix, and stores
// it as a .jpeg file.
func (c *Client) UploadBase64(ctx context.Context, data string) (StorePath, error) {
	decoded, err := fileutil.DecodeBase64(data)
	if err != nil {
		return StorePath{}, err
	}
	return c.UploadReader(ctx, bytes.NewReader(decoded), "jpeg")
}

// UploadFile stores the local file at path, keeping its extension.
func (c *Client) UploadFile(ctx context.Context, path string) (StorePath, error) {
	abs, err := fileutil.AbsolutePath(path)
	if err != nil {
		return StorePath{}, err
	}
	if !fileutil.IsFile(abs) {
		return StorePath{}, fmt.Errorf("%w: %s", fileutil.ErrFileNotFound, path)
	}

	f, err := os.Open(abs)
	if err != nil {
		return StorePath{}, fmt.Errorf("%w: %v", file.ErrFailedToOpenFile, err)
	}
	defer func() { _ = f.Close() }()

	return c.UploadReader(ctx, f, extOf(filepath.ToSlash(abs)))
}

// UploadMultipart stores an uploaded form file, keeping the extension of
// its original name.
func (c *Client) UploadMultipart(ctx context.Context, fh *multipart.FileHeader) (StorePath, error) {
	if fh == nil {
		return StorePath{}, file.ErrNilFileHeader
	}
	f, err := fh.Open()
	if err != nil {
		return StorePath{}, fmt.Errorf("%w: %v", file.ErrFailedToOpenFile, err)
	}
	defer func() { _ = f.Close() }()

	return c.UploadReader(ctx, f, file.GetExtension(fh))
}

// store writes body under sp with its CRC32 in the object metadata and
// seeds the info cache with the result.
func (c *Client) store(ctx context.Context, sp StorePath, body io.Reader, contentType string) error {
	start := time.Now()
	key := sp.FullPath()

	rd, size, sum, err := checksum(body)
	if err != nil {
		return err
	}

	obj, err := c.storage.Put(ctx, key, rd, file.ObjectMeta{
		ContentType: contentType,
		Size:        size,
		Metadata:    map[string]string{file.MetaChecksum: strconv.FormatUint(uint64(sum), 10)},
	})
	if err != nil {
		c.log.ErrorContext(ctx, "upload failed", logger.StorageKey(key), logger.Error(err))
		return err
	}

	info := infoFromObject(sp, obj)
	info.CRC32 = sum
	c.cacheSet(ctx, info)

	c.log.DebugContext(ctx, "file uploaded",
		logger.StorageGroup(sp.Group),
		logger.StorageKey(key),
		logger.Size(obj.Size),
		logger.Duration(time.Since(start)),
	)
	return nil
}

// checksum computes the IEEE CRC32 of body and returns a reader positioned
// at the start of the same content.
func checksum(body io.Reader) (io.Reader, int64, uint32, error) {
	h := crc32.NewIEEE()

	if rs, ok := body.(io.ReadSeeker); ok {
		start, err := rs.Seek(0, io.SeekCurrent)
		if err == nil {
			n, err := io.Copy(h, rs)
			if err != nil {
				return nil, 0, 0, fmt.Errorf("%w: %v", file.ErrFailedToReadFile, err)
			}
			if _, err := rs.Seek(start, io.SeekStart); err != nil {
				return nil, 0, 0, fmt.Errorf("%w: %v", file.ErrFailedToReadFile, err)
			}
			return rs, n, h.Sum32(), nil
		}
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.TeeReader(body, h)); err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", file.ErrFailedToReadFile, err)
	}
	return bytes.NewReader(buf.Bytes()), int64(buf.Len()), h.Sum32(), nil
}
