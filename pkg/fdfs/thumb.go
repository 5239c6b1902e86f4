package fdfs

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/dmitrymomot/fdfskit/pkg/file"
	"github.com/dmitrymomot/fdfskit/pkg/logger"
)

// UploadImageWithThumb stores an image and a thumbnail of it. The thumbnail
// fits in the configured box, keeps the aspect ratio, is never upscaled, and
// is stored next to the master at ThumbPath(master.Path) in the same format.
// If the thumbnail cannot be stored the master is removed again.
//
// An empty ext is replaced by the detected image format.
func (c *Client) UploadImageWithThumb(ctx context.Context, r io.Reader, ext string) (StorePath, error) {
	ext, err := cleanExt(ext)
	if err != nil {
		return StorePath{}, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return StorePath{}, fmt.Errorf("%w: %v", file.ErrFailedToReadFile, err)
	}

	thumb, format, err := c.thumbnail(data)
	if err != nil {
		return StorePath{}, err
	}
	if ext == "" {
		ext = format
	}

	master := StorePath{Group: c.group, Path: c.newPath(ext)}
	if err := c.store(ctx, master, bytes.NewReader(data), ""); err != nil {
		return StorePath{}, err
	}

	slave := StorePath{Group: c.group, Path: c.ThumbPath(master.Path)}
	if err := c.store(ctx, slave, bytes.NewReader(thumb), "image/"+format); err != nil {
		if derr := c.storage.Delete(ctx, master.FullPath()); derr != nil {
			c.log.ErrorContext(ctx, "rollback of master file failed",
				logger.StorageKey(master.FullPath()), logger.Error(derr))
		}
		c.cacheDelete(ctx, master.FullPath())
		return StorePath{}, err
	}

	return master, nil
}

// UploadMultipartWithThumb is UploadImageWithThumb for a form file.
func (c *Client) UploadMultipartWithThumb(ctx context.Context, fh *multipart.FileHeader) (StorePath, error) {
	if fh == nil {
		return StorePath{}, file.ErrNilFileHeader
	}
	f, err := fh.Open()
	if err != nil {
		return StorePath{}, fmt.Errorf("%w: %v", file.ErrFailedToOpenFile, err)
	}
	defer func() { _ = f.Close() }()

	return c.UploadImageWithThumb(ctx, f, file.GetExtension(fh))
}

// thumbnail decodes data and returns the encoded thumbnail and the format
// name reported by the decoder.
func (c *Client) thumbnail(data []byte) ([]byte, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", ErrNotImage
	}
	if cfg.Width*cfg.Height > c.maxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	var buf bytes.Buffer
	if err := encodeImage(&buf, scaleToFit(src, c.thumbWidth, c.thumbHeight), format); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), format, nil
}

func scaleToFit(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h), 1)
	tw := max(int(float64(w)*scale+0.5), 1)
	th := max(int(float64(h)*scale+0.5), 1)

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func encodeImage(w io.Writer, img image.Image, format string) error {
	switch format {
	case "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 85})
	case "png":
		return png.Encode(w, img)
	case "gif":
		return gif.Encode(w, img, nil)
	case "bmp":
		return bmp.Encode(w, img)
	case "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedImage, format)
	}
}
