package fileutil_test

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fdfskit/pkg/fileutil"
)

func TestBase64ToFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	encoded := base64.StdEncoding.EncodeToString([]byte("jpeg bytes"))
	wrapped := encoded[:4] + "\n " + encoded[4:] + "\r\n"

	path, err := fileutil.Base64ToFile(wrapped, dir)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}-\d+\.jpeg$`), filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))

	_, err = fileutil.Base64ToFile("not base64!", dir)
	assert.ErrorIs(t, err, fileutil.ErrInvalidBase64)
}

func TestBase64Conversions(t *testing.T) {
	t.Parallel()

	path := writeFile(t, filepath.Join(t.TempDir(), "a.bin"), "hello")

	encoded, err := fileutil.FileToBase64(path)
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", encoded)

	encoded, err = fileutil.ReaderToBase64(strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", encoded)

	r, err := fileutil.Base64Reader("data:image/png;base64,aGVs bG8=")
	require.NoError(t, err)
	data, err := fileutil.ReaderToBytes(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = fileutil.Base64Reader("%%%")
	assert.ErrorIs(t, err, fileutil.ErrInvalidBase64)
}

func TestURLDownloads(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/img.jpg" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "hello")
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()

	encoded, err := fileutil.URLToBase64(ctx, srv.URL+"/img.jpg")
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", encoded)

	path := filepath.Join(t.TempDir(), "dl", "img.jpg")
	n, err := fileutil.URLToFile(ctx, srv.URL+"/img.jpg", path)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.FileExists(t, path)

	_, err = fileutil.URLToBase64(ctx, srv.URL+"/missing")
	assert.ErrorIs(t, err, fileutil.ErrDownloadFailed)

	_, err = fileutil.URLToFile(ctx, "://bad", path)
	assert.ErrorIs(t, err, fileutil.ErrDownloadFailed)
}
