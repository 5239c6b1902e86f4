package pathutil

import (
	"runtime"
	"strings"
)

const (
	separator = "/"
	dot       = "."
	doubleDot = ".."
)

// schemePrefixes are stripped in order, case-insensitively.
var schemePrefixes = []string{"classpath:", "file:"}

// Normalize returns the canonical form of path.
// Separators are unified to "/", "." elements are removed and ".." elements
// cancel the element before them. A drive prefix such as "C:" and the leading
// separator of absolute paths are preserved. Empty input yields "".
//
// Example:
//
//	pathutil.Normalize(`/C:\a\\b\..\c`) // "C:/a/c"
func Normalize(path string) string {
	// A scheme, drive or blank can surface once leading elements are resolved
	// away ("./classpath:a"), so repeat until stable. Every pass that changes
	// the string makes it shorter or removes its backslashes.
	p := path
	for {
		next := normalizeOnce(p)
		if next == p {
			return next
		}
		p = next
	}
}

func normalizeOnce(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return ""
	}

	p = collapseSeparators(TrimScheme(p))

	prefix := ""
	if drive, rest, ok := cutDrive(p); ok {
		prefix = drive
		p = rest
	}

	if strings.HasPrefix(p, separator) {
		prefix += separator
		p = p[1:]
	}

	return prefix + strings.Join(resolve(splitSegments(p)), separator)
}

// TrimScheme removes leading "classpath:" and "file:" prefixes, in any case
// and any number, together with surrounding blanks.
//
// Example:
//
//	pathutil.TrimScheme("file: classpath:conf/app.yml") // "conf/app.yml"
func TrimScheme(path string) string {
	p := strings.TrimSpace(path)
	for {
		stripped := p
		for _, scheme := range schemePrefixes {
			stripped = strings.TrimSpace(trimPrefixFold(stripped, scheme))
		}
		if stripped == p {
			return p
		}
		p = stripped
	}
}

// SubPath returns fullPath relative to basePath.
// Both arguments are normalized and the base is matched case-insensitively.
// When basePath is not a prefix of fullPath the normalized fullPath is
// returned unchanged. A root or empty base only drops the leading separator.
//
// Example:
//
//	pathutil.SubPath("/root", "/ROOT/sub/file.txt") // "sub/file.txt"
func SubPath(basePath, fullPath string) string {
	full := Normalize(fullPath)
	base := strings.TrimSuffix(Normalize(basePath), separator)
	if len(base) > len(full) || !strings.EqualFold(full[:len(base)], base) {
		return full
	}

	return strings.TrimPrefix(full[len(base):], separator)
}

// IsAbsolute reports whether path starts with a separator or a drive prefix
// followed by a separator.
func IsAbsolute(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	if path[0] == '/' || path[0] == '\\' {
		return true
	}
	return len(path) >= 3 && isDriveLetter(path[0]) && path[1] == ':' && isSeparator(path[2])
}

// Equal reports whether a and b normalize to the same path.
// The comparison ignores case on Windows.
func Equal(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if runtime.GOOS == "windows" {
		return strings.EqualFold(na, nb)
	}
	return na == nb
}

// Join joins elements with "/" and normalizes the result.
func Join(elems ...string) string {
	nonEmpty := make([]string, 0, len(elems))
	for _, e := range elems {
		if e != "" {
			nonEmpty = append(nonEmpty, e)
		}
	}
	return Normalize(strings.Join(nonEmpty, separator))
}

// resolve drops "." and applies ".." walking from the end.
// A ".." with nothing left to cancel is discarded.
func resolve(segments []string) []string {
	out := make([]string, 0, len(segments))
	tops := 0
	for i := len(segments) - 1; i >= 0; i-- {
		switch s := segments[i]; {
		case s == dot:
		case s == doubleDot:
			tops++
		case tops > 0:
			tops--
		default:
			out = append(out, s)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// cutDrive splits a leading "C:" (optionally preceded by "/") from p when it
// is followed by a separator. rest keeps that separator.
func cutDrive(p string) (drive, rest string, ok bool) {
	s := strings.TrimPrefix(p, separator)
	if len(s) < 3 || !isDriveLetter(s[0]) || s[1] != ':' || s[2] != '/' {
		return "", p, false
	}
	return s[:2], s[2:], true
}

func collapseSeparators(p string) string {
	var b strings.Builder
	b.Grow(len(p))
	prevSep := false
	for i := 0; i < len(p); i++ {
		c := p[i]
		if isSeparator(c) {
			if !prevSep {
				b.WriteByte('/')
			}
			prevSep = true
			continue
		}
		prevSep = false
		b.WriteByte(c)
	}
	return b.String()
}

func splitSegments(p string) []string {
	parts := strings.Split(p, separator)
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func trimPrefixFold(s, prefix string) string {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):]
	}
	return s
}

func isSeparator(c byte) bool { return c == '/' || c == '\\' }

func isDriveLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
