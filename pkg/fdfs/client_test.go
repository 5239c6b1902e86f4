package fdfs_test

import (
	"bytes"
	"context"
	"hash/crc32"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fdfskit/pkg/fdfs"
	"github.com/dmitrymomot/fdfskit/pkg/file"
	"github.com/dmitrymomot/fdfskit/pkg/fileutil"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil storage", func(t *testing.T) {
		t.Parallel()
		_, err := fdfs.New(nil)
		assert.ErrorIs(t, err, fdfs.ErrNilStorage)
	})

	t.Run("invalid groups", func(t *testing.T) {
		t.Parallel()
		for _, g := range []string{"", "storage", "group1/a", `group\1`, "C:group"} {
			_, err := fdfs.New(newLocal(t), fdfs.WithGroup(g))
			assert.ErrorIs(t, err, fdfs.ErrInvalidGroup, "group %q", g)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		c := newClient(t, newLocal(t))
		assert.Equal(t, fdfs.DefaultGroup, c.Group())
		assert.Equal(t, "M00/00/00/a_150x150.jpg", c.ThumbPath("M00/00/00/a.jpg"))
	})

	t.Run("thumb size panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { fdfs.WithThumbSize(0, 10) })
	})
}

func TestAccessURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		web    string
		path   string
		expect string
	}{
		{"bare host", "img.example.com", "group1/M00/a.jpg", "http://img.example.com/group1/M00/a.jpg"},
		{"host with trailing slash", "img.example.com/", "/group1/M00/a.jpg", "http://img.example.com/group1/M00/a.jpg"},
		{"https kept", "https://cdn.example.com/files", "group1/M00/a.jpg", "https://cdn.example.com/files/group1/M00/a.jpg"},
		{"storage fallback", "", "group1/M00/a.jpg", "/files/group1/M00/a.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newClient(t, newLocal(t), fdfs.WithWebServerURL(tt.web))
			assert.Equal(t, tt.expect, c.AccessURL(tt.path))
		})
	}

	c := newClient(t, newLocal(t), fdfs.WithWebServerURL("img.example.com"))
	sp := fdfs.StorePath{Group: "group1", Path: "M00/a.jpg"}
	assert.Equal(t, "http://img.example.com/group1/M00/a.jpg", c.URL(sp))
}

func TestThumbPath(t *testing.T) {
	t.Parallel()

	c := newClient(t, newLocal(t), fdfs.WithThumbSize(200, 120))
	assert.Equal(t, "M00/00/00/a_200x120.jpg", c.ThumbPath("M00/00/00/a.jpg"))
	assert.Equal(t, "M00/00/00/a.b_200x120.png", c.ThumbPath("M00/00/00/a.b.png"))
	assert.Equal(t, "M00/00/00/noext_200x120", c.ThumbPath("M00/00/00/noext"))
	assert.Equal(t, "M00/v1.0/noext_200x120", c.ThumbPath("M00/v1.0/noext"))
}

func TestResolve(t *testing.T) {
	t.Parallel()

	c := newClient(t, newLocal(t), fdfs.WithWebServerURL("http://cdn.example.com/groups"))

	sp, err := c.Resolve("http://cdn.example.com/groups/group1/M00/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, fdfs.StorePath{Group: "group1", Path: "M00/a.jpg"}, sp)

	sp, err = c.Resolve("group2/M00/b.jpg")
	require.NoError(t, err)
	assert.Equal(t, "group2", sp.Group)
}

func TestUploadBytes_DefaultLayout(t *testing.T) {
	t.Parallel()

	c := newClient(t, newLocal(t))
	sp, err := c.UploadBytes(context.Background(), []byte("hello"), ".JPG")
	require.NoError(t, err)

	assert.Equal(t, "group1", sp.Group)
	assert.Regexp(t, regexp.MustCompile(`^M00/[0-9A-F]{2}/[0-9A-F]{2}/[0-9a-f]{32}\.jpg$`), sp.Path)
}

func TestUploadBytes_InvalidExtension(t *testing.T) {
	t.Parallel()

	c := newClient(t, newLocal(t))
	for _, ext := range []string{"tar.gz", "toolongext", "j/pg", "a b"} {
		_, err := c.UploadBytes(context.Background(), []byte("x"), ext)
		assert.ErrorIs(t, err, fdfs.ErrInvalidExtension, "ext %q", ext)
	}
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClient(t, newLocal(t),
		fdfs.WithKeyGenerator(fixedKeys("f")),
		fdfs.WithWebServerURL("img.example.com"),
	)
	content := []byte("fdfs round trip")

	sp, err := c.UploadBytes(ctx, content, "txt")
	require.NoError(t, err)
	assert.Equal(t, "group1/M00/00/00/f1.txt", sp.FullPath())

	data, err := c.Download(ctx, sp.FullPath())
	require.NoError(t, err)
	assert.Equal(t, content, data)

	data, err = c.Download(ctx, c.URL(sp))
	require.NoError(t, err, "access URLs resolve to the same file")
	assert.Equal(t, content, data)

	dst := filepath.Join(t.TempDir(), "out", "copy.txt")
	n, err := c.DownloadTo(ctx, sp.FullPath(), dst)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), n)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestUploadVariants(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClient(t, newLocal(t))

	t.Run("text", func(t *testing.T) {
		sp, err := c.UploadText(ctx, "plain text", "txt")
		require.NoError(t, err)
		info, err := c.FileInfo(ctx, sp.FullPath())
		require.NoError(t, err)
		assert.Equal(t, int64(10), info.Size)
		assert.Contains(t, info.ContentType, "text/plain")
	})

	t.Run("base64 with data uri", func(t *testing.T) {
		sp, err := c.UploadBase64(ctx, "data:image/jpeg;base64,aGVs\nbG8=")
		require.NoError(t, err)
		assert.Equal(t, "jpeg", filepath.Ext(sp.Path)[1:])
		data, err := c.Download(ctx, sp.FullPath())
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("base64 invalid", func(t *testing.T) {
		_, err := c.UploadBase64(ctx, "!!!not base64")
		assert.ErrorIs(t, err, fileutil.ErrInvalidBase64)
	})

	t.Run("local file", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "report.PDF")
		require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4 test"), 0o644))

		sp, err := c.UploadFile(ctx, "file:"+src)
		require.NoError(t, err)
		assert.Equal(t, ".pdf", filepath.Ext(sp.Path))
	})

	t.Run("missing local file", func(t *testing.T) {
		_, err := c.UploadFile(ctx, filepath.Join(t.TempDir(), "nope.txt"))
		assert.ErrorIs(t, err, fileutil.ErrFileNotFound)
	})

	t.Run("multipart", func(t *testing.T) {
		fh := newFileHeader(t, "avatar.png", pngBytes(t, 4, 4))
		sp, err := c.UploadMultipart(ctx, fh)
		require.NoError(t, err)
		assert.Equal(t, ".png", filepath.Ext(sp.Path))

		info, err := c.FileInfo(ctx, sp.FullPath())
		require.NoError(t, err)
		assert.Equal(t, "image/png", info.ContentType)
	})

	t.Run("nil multipart", func(t *testing.T) {
		_, err := c.UploadMultipart(ctx, nil)
		assert.ErrorIs(t, err, file.ErrNilFileHeader)
	})

	t.Run("non seekable reader", func(t *testing.T) {
		content := []byte("streamed content")
		sp, err := c.UploadReader(ctx, bytes.NewBufferString(string(content)), "")
		require.NoError(t, err)
		assert.Empty(t, filepath.Ext(sp.Path))

		info, err := c.FileInfo(ctx, sp.FullPath())
		require.NoError(t, err)
		assert.Equal(t, crc32.ChecksumIEEE(content), info.CRC32)
	})
}

func TestFileInfo(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	content := []byte("some file content")
	storage := &spyStorage{Storage: newLocal(t)}
	c := newClient(t, storage, fdfs.WithInfoCache(fdfs.NewMemoryInfoCache(16, time.Minute)))

	sp, err := c.UploadBytes(ctx, content, "bin")
	require.NoError(t, err)

	info, err := c.FileInfo(ctx, sp.FullPath())
	require.NoError(t, err)
	assert.Equal(t, sp, info.StorePath())
	assert.Equal(t, int64(len(content)), info.Size)
	assert.Equal(t, crc32.ChecksumIEEE(content), info.CRC32)
	assert.WithinDuration(t, time.Now(), info.CreateTime, time.Minute)
	assert.Zero(t, storage.stats.Load(), "upload seeds the cache")

	assert.True(t, c.Exists(ctx, sp.FullPath()))
	assert.False(t, c.Exists(ctx, "group1/M00/00/00/missing.bin"))

	_, err = c.FileInfo(ctx, "group1/M00/00/00/missing.bin")
	assert.ErrorIs(t, err, fdfs.ErrFileNotFound)

	_, err = c.FileInfo(ctx, "not a store path")
	assert.ErrorIs(t, err, fdfs.ErrInvalidStorePath)
}

func TestFileInfo_WithoutCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := &spyStorage{Storage: newLocal(t)}
	c := newClient(t, storage)

	sp, err := c.UploadBytes(ctx, []byte("abc"), "txt")
	require.NoError(t, err)

	for range 3 {
		_, err := c.FileInfo(ctx, sp.FullPath())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), storage.stats.Load())
}

func TestFileInfo_SharesConcurrentLookups(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	local := newLocal(t)
	_, err := local.Put(ctx, "group1/M00/00/00/shared.txt", bytes.NewReader([]byte("x")), file.ObjectMeta{})
	require.NoError(t, err)

	storage := &spyStorage{Storage: local, statGate: make(chan struct{})}
	c := newClient(t, storage, fdfs.WithInfoCache(fdfs.NewMemoryInfoCache(16, time.Minute)))

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.FileInfo(ctx, "group1/M00/00/00/shared.txt")
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return storage.stats.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(storage.statGate)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), storage.stats.Load())
}

func TestFileInfo_CanceledCallerDoesNotFailOthers(t *testing.T) {
	t.Parallel()

	local := newLocal(t)
	_, err := local.Put(context.Background(), "group1/M00/00/00/shared.txt", bytes.NewReader([]byte("x")), file.ObjectMeta{})
	require.NoError(t, err)

	storage := &spyStorage{Storage: local, statGate: make(chan struct{})}
	c := newClient(t, storage)

	firstCtx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := c.FileInfo(firstCtx, "group1/M00/00/00/shared.txt")
		first <- err
	}()
	require.Eventually(t, func() bool { return storage.stats.Load() == 1 }, time.Second, 5*time.Millisecond)

	second := make(chan error, 1)
	go func() {
		_, err := c.FileInfo(context.Background(), "group1/M00/00/00/shared.txt")
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case err := <-first:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("canceled caller kept waiting for the shared lookup")
	}

	close(storage.statGate)
	select {
	case err := <-second:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("second caller did not return")
	}
	assert.Equal(t, int32(1), storage.stats.Load())
}

func TestDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ic := fdfs.NewMemoryInfoCache(16, time.Minute)
	c := newClient(t, newLocal(t), fdfs.WithInfoCache(ic), fdfs.WithWebServerURL("img.example.com"))

	sp, err := c.UploadBytes(ctx, []byte("to delete"), "txt")
	require.NoError(t, err)
	assert.Equal(t, 1, ic.Len())

	require.NoError(t, c.Delete(ctx, c.URL(sp)))
	assert.Zero(t, ic.Len(), "delete drops cached info")
	assert.False(t, c.Exists(ctx, sp.FullPath()))

	err = c.Delete(ctx, sp.FullPath())
	assert.ErrorIs(t, err, fdfs.ErrFileNotFound)

	err = c.Delete(ctx, "M00/no/file.txt")
	assert.ErrorIs(t, err, fdfs.ErrInvalidStorePath)
}

func TestChecksAndClose(t *testing.T) {
	t.Parallel()

	called := false
	c := newClient(t, newLocal(t), fdfs.WithHealthCheck(func(context.Context) error {
		called = true
		return nil
	}))

	checks := c.Checks()
	require.Len(t, checks, 2)
	for _, check := range checks {
		require.NoError(t, check(context.Background()))
	}
	assert.True(t, called)
	assert.NoError(t, c.Close())
}
