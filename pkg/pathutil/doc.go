// Package pathutil canonicalizes file-system-like path strings into storage keys.
//
// Normalize accepts paths in any of the shapes callers tend to pass around:
// Spring-style "classpath:" and "file:" locations, Windows drive paths with
// backslashes, paths with redundant separators and "." or ".." elements. The
// result always uses "/" as separator and keeps an optional drive prefix and
// the leading separator of absolute paths.
//
//	pathutil.Normalize(`C:\data\.\img\..\a.jpg`) // "C:/data/a.jpg"
//	pathutil.Normalize("classpath:conf//app.yml") // "conf/app.yml"
//	pathutil.Normalize("../../a")                 // "a"
//
// Excess ".." elements are dropped instead of climbing above the root, so a
// normalized key can never reference a location outside its base.
//
// Segment and SubSegments address the elements of a normalized path with
// negative indices counting from the end:
//
//	pathutil.Segment("/group1/M00/a.jpg", -1)         // "a.jpg"
//	pathutil.SubSegments("/group1/M00/00/a.jpg", 1, -1) // ["M00", "00"]
//
// All functions are pure and safe for concurrent use. None of them return
// errors: malformed input degrades to an empty or best-effort result.
package pathutil
