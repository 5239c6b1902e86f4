package binder

import "errors"

var (
	ErrFailedToParseQuery = errors.New("failed to parse query parameters")
	ErrFailedToParsePath  = errors.New("failed to parse path parameters")
	ErrFailedToParseForm  = errors.New("failed to parse multipart form")
	ErrMissingFile        = errors.New("required file part is missing")
	ErrInvalidTarget      = errors.New("bind target must be a non-nil pointer to struct")
)
