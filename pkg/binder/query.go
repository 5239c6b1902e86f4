package binder

import "net/http"

// BindQuery binds fields tagged `query:"name"` from the URL query.
// Slices take repeated parameters or comma separated values; pointers mark
// optional fields.
//
// Example:
//
//	type listRequest struct {
//		Prefix string   `query:"prefix"`
//		Limit  int      `query:"limit"`
//		Types  []string `query:"type"` // ?type=a&type=b or ?type=a,b
//	}
func BindQuery() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", r.URL.Query(), ErrFailedToParseQuery)
	}
}
