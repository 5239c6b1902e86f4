// Package fileutil provides helpers for working with files on the local
// filesystem: existence and equality checks, text and line I/O, base64 and
// URL conversions, copying and moving, human readable sizes and a small
// Future type for asynchronous reads and writes.
//
// Paths are accepted in any separator style and cleaned with
// pathutil.Normalize before they reach the os package.
//
// Every helper reports failures as errors. Missing files are reported as
// ErrFileNotFound so callers can branch with errors.Is:
//
//	text, err := fileutil.ReadText("conf/app.txt")
//	if errors.Is(err, fileutil.ErrFileNotFound) {
//		// fall back to defaults
//	}
package fileutil
