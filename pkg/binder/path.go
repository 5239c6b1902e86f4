package binder

import (
	"fmt"
	"net/http"
	"reflect"
)

// Path binds fields tagged `path:"name"` with values returned by extractor,
// usually chi.URLParam. Empty values leave the field untouched.
//
// Example:
//
//	type fileRequest struct {
//		Ref string `path:"*"`
//	}
//
//	bind := binder.Path(chi.URLParam)
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return fmt.Errorf("%w: nil extractor", ErrFailedToParsePath)
		}

		err := structFields(v, "path", func(name string, field reflect.Value, sf reflect.StructField) error {
			value := extractor(r, name)
			if value == "" {
				return nil
			}
			if err := setFieldValue(field, sf.Type, []string{value}); err != nil {
				return fmt.Errorf("%w: field %s: %v", ErrFailedToParsePath, sf.Name, err)
			}
			return nil
		})
		if err == ErrInvalidTarget {
			return fmt.Errorf("%w: %w", ErrFailedToParsePath, err)
		}
		return err
	}
}
