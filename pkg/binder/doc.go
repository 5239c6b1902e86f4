// Package binder fills request structs from query strings, router path
// parameters and multipart file parts, driven by struct tags:
//
//	type request struct {
//		Ref   string                `path:"*"`
//		Thumb bool                  `query:"thumb"`
//		File  *multipart.FileHeader `file:"file,required"`
//	}
//
// Untagged fields and fields tagged "-" are left alone. Each binder returns
// an error wrapping one of the package sentinels so callers can map it to a
// response status.
package binder
