package fdfs_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fdfskit/pkg/fdfs"
	"github.com/dmitrymomot/fdfskit/pkg/file"
)

func newLocal(t *testing.T) *file.LocalStorage {
	t.Helper()
	s, err := file.NewLocalStorage(t.TempDir(), "/files/")
	require.NoError(t, err)
	return s
}

func newClient(t *testing.T, storage file.Storage, opts ...fdfs.Option) *fdfs.Client {
	t.Helper()
	c, err := fdfs.New(storage, opts...)
	require.NoError(t, err)
	return c
}

// fixedKeys returns a generator yielding M00/00/00/<name>N.<ext>.
func fixedKeys(name string) fdfs.KeyGenerator {
	var n atomic.Int32
	return func(ext string) string {
		p := "M00/00/00/" + name + string(rune('0'+n.Add(1)))
		if ext != "" {
			p += "." + ext
		}
		return p
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, "/", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	t.Cleanup(func() { _ = req.MultipartForm.RemoveAll() })

	return req.MultipartForm.File["file"][0]
}

// spyStorage counts Stat calls and can fail Put for matching keys.
type spyStorage struct {
	file.Storage
	stats     atomic.Int32
	statGate  chan struct{}
	failPutOn string
}

func (s *spyStorage) Stat(ctx context.Context, key string) (*file.Object, error) {
	s.stats.Add(1)
	if s.statGate != nil {
		<-s.statGate
	}
	return s.Storage.Stat(ctx, key)
}

func (s *spyStorage) Put(ctx context.Context, key string, body io.Reader, meta file.ObjectMeta) (*file.Object, error) {
	if s.failPutOn != "" && strings.Contains(key, s.failPutOn) {
		return nil, file.ErrFailedToWriteFile
	}
	return s.Storage.Put(ctx, key, body, meta)
}
