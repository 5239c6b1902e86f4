package fdfshttp

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/dmitrymomot/fdfskit/pkg/binder"
	"github.com/dmitrymomot/fdfskit/pkg/fdfs"
	"github.com/dmitrymomot/fdfskit/pkg/file"
	"github.com/dmitrymomot/fdfskit/pkg/fileutil"
	"github.com/dmitrymomot/fdfskit/pkg/handler"
)

var (
	errInvalidPath      = handler.NewHTTPError(http.StatusBadRequest, "invalid_path")
	errInvalidExtension = handler.NewHTTPError(http.StatusBadRequest, "invalid_extension")
	errNotImage         = handler.NewHTTPError(http.StatusBadRequest, "not_image")
	errUnsupportedImage = handler.NewHTTPError(http.StatusBadRequest, "unsupported_image")
	errImageTooLarge    = handler.NewHTTPError(http.StatusRequestEntityTooLarge, "image_too_large")
	errInvalidBase64    = handler.NewHTTPError(http.StatusBadRequest, "invalid_base64")
	errFileTooLarge     = handler.NewHTTPError(http.StatusRequestEntityTooLarge, "file_too_large")
	errMissingFile      = handler.NewHTTPError(http.StatusBadRequest, "missing_file")
	errNotMultipart     = handler.NewHTTPError(http.StatusBadRequest, "not_multipart")
	errAccessDenied     = handler.NewHTTPError(http.StatusBadGateway, "storage_access_denied")
)

type errorMapping struct {
	target error
	as     handler.HTTPError
}

// errorStatus maps errors to replies; the first match wins.
var errorStatus = []errorMapping{
	{fdfs.ErrFileNotFound, handler.ErrNotFound},
	{file.ErrIsDirectory, handler.ErrNotFound},
	{fdfs.ErrInvalidStorePath, errInvalidPath},
	{file.ErrInvalidPath, errInvalidPath},
	{fdfs.ErrInvalidExtension, errInvalidExtension},
	{fdfs.ErrNotImage, errNotImage},
	{fdfs.ErrUnsupportedImage, errUnsupportedImage},
	{fdfs.ErrImageTooLarge, errImageTooLarge},
	{fileutil.ErrInvalidBase64, errInvalidBase64},
	{file.ErrFileTooLarge, errFileTooLarge},
	{multipart.ErrMessageTooLarge, errFileTooLarge},
	{file.ErrMIMETypeNotAllowed, handler.ErrUnsupportedMediaType},
	{binder.ErrMissingFile, errMissingFile},
	{http.ErrNotMultipart, errNotMultipart},
	{http.ErrMissingBoundary, errNotMultipart},
	{binder.ErrFailedToParseForm, handler.ErrBadRequest},
	{binder.ErrFailedToParseQuery, handler.ErrBadRequest},
	{binder.ErrFailedToParsePath, errInvalidPath},
	{file.ErrAccessDenied, errAccessDenied},
	{file.ErrServiceUnavailable, handler.ErrServiceUnavailable},
	{file.ErrOperationTimeout, handler.ErrGatewayTimeout},
	{context.DeadlineExceeded, handler.ErrGatewayTimeout},
}

// classify turns domain errors into handler.HTTPError. Unmapped errors pass
// through and render as a generic internal error.
func classify(err error) error {
	var httpErr handler.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return errFileTooLarge.WithCause(err)
	}

	for _, m := range errorStatus {
		if errors.Is(err, m.target) {
			return m.as.WithCause(err)
		}
	}
	return err
}
