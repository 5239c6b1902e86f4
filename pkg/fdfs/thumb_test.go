package fdfs_test

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fdfskit/pkg/fdfs"
	"github.com/dmitrymomot/fdfskit/pkg/file"
)

func decodeSize(t *testing.T, data []byte) (int, int, string) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height, format
}

func TestUploadImageWithThumb(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name         string
		data         func(t *testing.T) []byte
		ext          string
		wantW, wantH int
		wantFormat   string
	}{
		{
			name:  "landscape png",
			data:  func(t *testing.T) []byte { return pngBytes(t, 300, 200) },
			ext:   "png",
			wantW: 150, wantH: 100, wantFormat: "png",
		},
		{
			name: "portrait jpeg",
			data: func(t *testing.T) []byte {
				img := image.NewRGBA(image.Rect(0, 0, 100, 400))
				var buf bytes.Buffer
				require.NoError(t, jpeg.Encode(&buf, img, nil))
				return buf.Bytes()
			},
			ext:   "jpg",
			wantW: 38, wantH: 150, wantFormat: "jpeg",
		},
		{
			name:  "small image is not upscaled",
			data:  func(t *testing.T) []byte { return pngBytes(t, 40, 20) },
			wantW: 40, wantH: 20, wantFormat: "png",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newClient(t, newLocal(t))
			src := tt.data(t)

			master, err := c.UploadImageWithThumb(ctx, bytes.NewReader(src), tt.ext)
			require.NoError(t, err)

			data, err := c.Download(ctx, master.FullPath())
			require.NoError(t, err)
			assert.Equal(t, src, data, "master is stored unchanged")

			thumb := fdfs.StorePath{Group: master.Group, Path: c.ThumbPath(master.Path)}
			data, err = c.Download(ctx, thumb.FullPath())
			require.NoError(t, err)

			w, h, format := decodeSize(t, data)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
			assert.Equal(t, tt.wantFormat, format)
		})
	}
}

func TestUploadImageWithThumb_DetectsExtension(t *testing.T) {
	t.Parallel()

	c := newClient(t, newLocal(t), fdfs.WithKeyGenerator(fixedKeys("img")))
	sp, err := c.UploadImageWithThumb(context.Background(), bytes.NewReader(pngBytes(t, 10, 10)), "")
	require.NoError(t, err)
	assert.Equal(t, "M00/00/00/img1.png", sp.Path)
	assert.True(t, c.Exists(context.Background(), "group1/M00/00/00/img1_150x150.png"))
}

func TestUploadImageWithThumb_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("not an image", func(t *testing.T) {
		t.Parallel()
		c := newClient(t, newLocal(t))
		_, err := c.UploadImageWithThumb(ctx, bytes.NewReader([]byte("plain text")), "jpg")
		assert.ErrorIs(t, err, fdfs.ErrNotImage)
	})

	t.Run("too many pixels", func(t *testing.T) {
		t.Parallel()
		c := newClient(t, newLocal(t), fdfs.WithMaxImagePixels(100))
		_, err := c.UploadImageWithThumb(ctx, bytes.NewReader(pngBytes(t, 20, 20)), "png")
		assert.ErrorIs(t, err, fdfs.ErrImageTooLarge)
	})

	t.Run("thumb failure removes master", func(t *testing.T) {
		t.Parallel()
		local := newLocal(t)
		storage := &spyStorage{Storage: local, failPutOn: "_150x150"}
		c := newClient(t, storage, fdfs.WithKeyGenerator(fixedKeys("img")))

		_, err := c.UploadImageWithThumb(ctx, bytes.NewReader(pngBytes(t, 10, 10)), "png")
		assert.ErrorIs(t, err, file.ErrFailedToWriteFile)
		assert.False(t, local.Exists(ctx, "group1/M00/00/00/img1.png"))
	})
}

func TestUploadMultipartWithThumb(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClient(t, newLocal(t), fdfs.WithThumbSize(8, 8))

	sp, err := c.UploadMultipartWithThumb(ctx, newFileHeader(t, "photo.PNG", pngBytes(t, 16, 32)))
	require.NoError(t, err)

	data, err := c.Download(ctx, sp.Group+"/"+c.ThumbPath(sp.Path))
	require.NoError(t, err)
	w, h, _ := decodeSize(t, data)
	assert.Equal(t, 4, w)
	assert.Equal(t, 8, h)

	_, err = c.UploadMultipartWithThumb(ctx, nil)
	assert.ErrorIs(t, err, file.ErrNilFileHeader)
}
