package file

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/fdfskit/pkg/pathutil"
)

// CleanKey converts key into the canonical storage key form: normalized,
// relative and without a drive prefix.
// Excess ".." elements are dropped by normalization, so a cleaned key never
// points above the storage root.
//
// Example:
//
//	key, err := file.CleanKey(`/group1\M00\.\a.jpg`) // "group1/M00/a.jpg"
func CleanKey(key string) (string, error) {
	k := pathutil.Normalize(key)
	if pathutil.IsAbsolute(k) && !strings.HasPrefix(k, "/") {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, key)
	}
	k = strings.TrimPrefix(k, "/")
	if k == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, key)
	}
	return k, nil
}

// cleanDir is CleanKey for directory arguments, where the root is allowed
// and reported as "".
func cleanDir(dir string) (string, error) {
	k := pathutil.Normalize(dir)
	if pathutil.IsAbsolute(k) && !strings.HasPrefix(k, "/") {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, dir)
	}
	return strings.TrimPrefix(k, "/"), nil
}
