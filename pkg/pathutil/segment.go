package pathutil

import "strings"

// Segments returns the elements of the normalized path, without its drive
// prefix or leading separator. Returns nil for empty or root-only paths.
func Segments(path string) []string {
	_, body := splitPrefix(Normalize(path))
	if body == "" {
		return nil
	}
	return strings.Split(body, separator)
}

// Segment returns the element at index; negative indices count from the end.
// Returns "" when the index resolves to an empty range.
//
// Example:
//
//	pathutil.Segment("a/b/c", 0)  // "a"
//	pathutil.Segment("a/b/c", -1) // "c"
func Segment(path string, index int) string {
	to := index + 1
	if index == -1 {
		to = len(Segments(path))
	}
	s := SubSegments(path, index, to)
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// LastSegment returns the final element of path, usually its file name.
func LastSegment(path string) string {
	return Segment(path, -1)
}

// SubSegments returns the elements in [fromIndex, toIndex).
// Negative indices count from the end. A negative fromIndex that is still
// below zero after resolution becomes 0, a negative toIndex that is still
// below zero becomes the length. Indices past the end are clamped to the
// length and the pair is swapped when toIndex < fromIndex. An empty range
// returns nil.
func SubSegments(path string, fromIndex, toIndex int) []string {
	segments := Segments(path)
	n := len(segments)

	from, to := fromIndex, toIndex
	switch {
	case from < 0:
		from = max(n+from, 0)
	case from > n:
		from = n
	}
	switch {
	case to < 0:
		to = n + to
		if to < 0 {
			to = n
		}
	case to > n:
		to = n
	}
	if to < from {
		from, to = to, from
	}
	if from == to {
		return nil
	}

	out := make([]string, to-from)
	copy(out, segments[from:to])
	return out
}

// Parent returns the path level elements above path, keeping its prefix.
// A level below 1 returns the normalized path itself.
//
// Example:
//
//	pathutil.Parent("/a/b/c.txt", 2) // "/a"
func Parent(path string, level int) string {
	p := Normalize(path)
	if level < 1 {
		return p
	}

	prefix, body := splitPrefix(p)
	segments := splitSegments(body)
	if level >= len(segments) {
		return prefix
	}
	return prefix + strings.Join(segments[:len(segments)-level], separator)
}

// splitPrefix separates the drive and root marker of a normalized path.
func splitPrefix(p string) (prefix, body string) {
	if drive, rest, ok := cutDrive(p); ok {
		prefix = drive
		p = rest
	}
	if strings.HasPrefix(p, separator) {
		prefix += separator
		p = p[1:]
	}
	return prefix, p
}
