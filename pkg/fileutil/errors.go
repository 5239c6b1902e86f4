package fileutil

import "errors"

var (
	ErrEmptyPath        = errors.New("fileutil: empty path")
	ErrFileNotFound     = errors.New("fileutil: file not found")
	ErrIsDirectory      = errors.New("fileutil: path is a directory")
	ErrNotDirectory     = errors.New("fileutil: path is not a directory")
	ErrInvalidBase64    = errors.New("fileutil: invalid base64 data")
	ErrDownloadFailed   = errors.New("fileutil: download failed")
	ErrTimeout          = errors.New("fileutil: timed out waiting for future completion")
	ErrSameSourceTarget = errors.New("fileutil: source and target are the same file")
)
