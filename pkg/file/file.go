package file

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/dmitrymomot/fdfskit/pkg/pathutil"
)

// DefaultContentType is used when content sniffing yields nothing useful.
const DefaultContentType = "application/octet-stream"

var imageMIMETypes = map[string]bool{
	"image/jpeg":    true,
	"image/jpg":     true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
	"image/bmp":     true,
	"image/tiff":    true,
	"image/heic":    true,
	"image/heif":    true,
	"image/avif":    true,
}

// IsImage checks if the file is an image based on MIME type.
// Falls back to the extension when content detection fails so that renamed
// files are still caught by the MIME check first.
func IsImage(fh *multipart.FileHeader) bool {
	if fh == nil {
		return false
	}

	if mimeType, err := GetMIMEType(fh); err == nil && mimeType != "" {
		return IsImageType(mimeType)
	}

	switch strings.ToLower(GetExtension(fh)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".bmp", ".tiff", ".tif", ".heic", ".heif", ".avif":
		return true
	default:
		return false
	}
}

// IsImageType reports whether contentType names an image format.
func IsImageType(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return imageMIMETypes[strings.TrimSpace(strings.ToLower(mediaType))]
}

// GetExtension returns the extension of the uploaded file name including
// the dot, or "" when it has none.
//
// Example:
//
//	ext := file.GetExtension(fh) // ".jpg"
func GetExtension(fh *multipart.FileHeader) string {
	if fh == nil {
		return ""
	}
	if ext := pathutil.ExtName(pathutil.LastSegment(fh.Filename)); ext != "" {
		return "." + ext
	}
	return ""
}

// GetMIMEType detects the MIME type by reading the file content.
// Only the first 512 bytes are inspected; the extension is never trusted.
func GetMIMEType(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", ErrNilFileHeader
	}

	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}
	defer func() { _ = file.Close() }()

	// 512 bytes is the maximum http.DetectContentType reads
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
	}

	return http.DetectContentType(buffer[:n]), nil
}

// DetectContentType sniffs the MIME type of data.
// Empty input yields DefaultContentType.
func DetectContentType(data []byte) string {
	if len(data) == 0 {
		return DefaultContentType
	}
	return http.DetectContentType(data)
}

// ValidateSize checks if the file size is within the allowed limit.
// FileHeader.Size may be 0 for streamed uploads, so backends still count
// bytes while writing.
func ValidateSize(fh *multipart.FileHeader, maxBytes int64) error {
	if fh == nil {
		return ErrNilFileHeader
	}
	if fh.Size > maxBytes {
		return fmt.Errorf("file size %d bytes exceeds %d bytes limit: %w", fh.Size, maxBytes, ErrFileTooLarge)
	}
	return nil
}

// ValidateMIMEType checks if the file's MIME type is in the allowed list.
// Pass no types to allow all MIME types.
func ValidateMIMEType(fh *multipart.FileHeader, allowedTypes ...string) error {
	if fh == nil {
		return ErrNilFileHeader
	}
	if len(allowedTypes) == 0 {
		return nil
	}

	mimeType, err := GetMIMEType(fh)
	if err != nil {
		return err
	}

	if slices.Contains(allowedTypes, mimeType) {
		return nil
	}

	return fmt.Errorf("MIME type %s not in allowed types %v: %w", mimeType, allowedTypes, ErrMIMETypeNotAllowed)
}

// SanitizeFilename reduces filename to its last element without NUL bytes,
// for use in headers such as Content-Disposition. Returns "unnamed" when
// nothing is left.
//
// Example:
//
//	safe := file.SanitizeFilename("../../../etc/passwd") // "passwd"
//	safe = file.SanitizeFilename(`C:\Windows\file.txt`)  // "file.txt"
func SanitizeFilename(filename string) string {
	name := pathutil.LastSegment(strings.ReplaceAll(filename, "\x00", ""))
	if name == "" {
		return "unnamed"
	}
	return name
}
