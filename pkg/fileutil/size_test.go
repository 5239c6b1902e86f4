package fileutil_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fdfskit/pkg/fileutil"
)

func TestReadableSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		size int64
		want string
	}{
		{size: -1, want: "0"},
		{size: 0, want: "0"},
		{size: 1, want: "1 B"},
		{size: 1023, want: "1,023 B"},
		{size: 1024, want: "1 KB"},
		{size: 1536, want: "1.5 KB"},
		{size: 10 * 1024 * 1024, want: "10 MB"},
		{size: 3 * 1024 * 1024 * 1024, want: "3 GB"},
		{size: 2 * 1024 * 1024 * 1024 * 1024, want: "2 TB"},
		{size: 2048 * 1024 * 1024 * 1024 * 1024, want: "2,048 TB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, fileutil.ReadableSize(tt.size), "size %d", tt.size)
	}
}

func TestFileSize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "a.txt"), strings.Repeat("x", 2560))

	got, err := fileutil.FileSize(path)
	require.NoError(t, err)
	assert.Equal(t, "2.5 KB", got)

	_, err = fileutil.FileSize(dir)
	assert.ErrorIs(t, err, fileutil.ErrIsDirectory)

	_, err = fileutil.FileSize(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, fileutil.ErrFileNotFound)
}
