package pathutil

import "strings"

// MainName returns the file name of path without its extension.
//
// Example:
//
//	pathutil.MainName("/tmp/report.final.pdf") // "report.final"
func MainName(path string) string {
	name := LastSegment(path)
	if i := strings.LastIndex(name, dot); i > 0 {
		return name[:i]
	}
	return name
}

// ExtName returns the extension of fileName without the leading dot.
// Returns "" when there is no extension or when the text after the last dot
// contains a separator.
//
// Example:
//
//	pathutil.ExtName("a/b.tar.gz") // "gz"
//	pathutil.ExtName("a.d/b")      // ""
func ExtName(fileName string) string {
	i := strings.LastIndex(fileName, dot)
	if i == -1 {
		return ""
	}
	ext := fileName[i+1:]
	if strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}
