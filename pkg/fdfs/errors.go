package fdfs

import (
	"errors"

	"github.com/dmitrymomot/fdfskit/pkg/file"
)

var (
	ErrDisabled         = errors.New("fdfs client is disabled")
	ErrNilStorage       = errors.New("storage backend is nil")
	ErrInvalidGroup     = errors.New("invalid storage group")
	ErrInvalidStorePath = errors.New("invalid store path")
	ErrInvalidExtension = errors.New("invalid file extension")

	ErrNotImage         = errors.New("content is not a supported image")
	ErrImageTooLarge    = errors.New("image dimensions exceed the limit")
	ErrUnsupportedImage = errors.New("image format cannot be encoded")

	ErrUnsupportedBackend   = errors.New("unsupported storage backend")
	ErrUnsupportedInfoCache = errors.New("unsupported info cache")
	ErrInvalidOSSConfig     = errors.New("invalid oss configuration")

	// ErrFileNotFound is file.ErrFileNotFound, so backend misses match it.
	ErrFileNotFound = file.ErrFileNotFound
)
