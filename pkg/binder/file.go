package binder

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"reflect"
	"strings"
)

// DefaultMaxMemory is the part of a multipart body kept in memory; larger
// parts spill to temporary files.
const DefaultMaxMemory = 8 << 20

var (
	fileHeaderType  = reflect.TypeFor[*multipart.FileHeader]()
	fileHeadersType = reflect.TypeFor[[]*multipart.FileHeader]()
)

// File binds multipart file parts to fields tagged `file:"name"`. A field is
// either *multipart.FileHeader, which takes the first part, or
// []*multipart.FileHeader. The "required" option fails with ErrMissingFile
// when the part is absent. Part bodies are not read, so handlers can stream
// them to storage.
//
// The form is parsed only when the target has file fields; parse failures,
// including a request that is not multipart, wrap ErrFailedToParseForm and
// the cause.
//
// Example:
//
//	type uploadRequest struct {
//		File  *multipart.FileHeader   `file:"file,required"`
//		Extra []*multipart.FileHeader `file:"extra"`
//	}
func File(maxMemory int64) func(r *http.Request, v any) error {
	if maxMemory <= 0 {
		maxMemory = DefaultMaxMemory
	}

	return func(r *http.Request, v any) error {
		parsed := false
		err := structFields(v, "file", func(name string, field reflect.Value, sf reflect.StructField) error {
			if !parsed {
				if err := parseMultipartForm(r, maxMemory); err != nil {
					return err
				}
				parsed = true
			}

			var parts []*multipart.FileHeader
			if r.MultipartForm != nil {
				parts = r.MultipartForm.File[name]
			}
			if len(parts) == 0 {
				if hasOption(sf.Tag.Get("file"), "required") {
					return fmt.Errorf("%w: %q", ErrMissingFile, name)
				}
				return nil
			}

			switch sf.Type {
			case fileHeaderType:
				field.Set(reflect.ValueOf(parts[0]))
			case fileHeadersType:
				field.Set(reflect.ValueOf(parts))
			default:
				return fmt.Errorf("%w: field %s: unsupported type %s", ErrFailedToParseForm, sf.Name, sf.Type)
			}
			return nil
		})
		if err == ErrInvalidTarget {
			return fmt.Errorf("%w: %w", ErrFailedToParseForm, err)
		}
		return err
	}
}

// parseMultipartForm parses the form once per request.
func parseMultipartForm(r *http.Request, maxMemory int64) error {
	if r.MultipartForm != nil {
		return nil
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToParseForm, err)
	}
	return nil
}

func hasOption(tag, option string) bool {
	_, opts, _ := strings.Cut(tag, ",")
	for opt := range strings.SplitSeq(opts, ",") {
		if strings.TrimSpace(opt) == option {
			return true
		}
	}
	return false
}
