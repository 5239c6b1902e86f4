package fdfs

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/fdfskit/pkg/fileutil"
	"github.com/dmitrymomot/fdfskit/pkg/pathutil"
)

// maxExtLen matches the FastDFS limit on file extension length.
const maxExtLen = 6

// KeyGenerator returns the in-group path for a new file. ext is already
// cleaned: lower case, without the dot, possibly empty.
type KeyGenerator func(ext string) string

// defaultKeyGenerator lays files out as M00/<hh>/<hh>/<uuid>.<ext>, with the
// two directory levels taken from the id.
func defaultKeyGenerator(ext string) string {
	id := fileutil.UUID()
	p := "M00/" + strings.ToUpper(id[0:2]) + "/" + strings.ToUpper(id[2:4]) + "/" + id
	if ext != "" {
		p += "." + ext
	}
	return p
}

// cleanExt accepts "jpg", ".JPG" or "" and rejects anything that is not a
// short alphanumeric extension.
func cleanExt(ext string) (string, error) {
	e := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if len(e) > maxExtLen {
		return "", fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
	}
	for _, r := range e {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return "", fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
		}
	}
	return e, nil
}

// extOf returns the extension of the last element of name.
func extOf(name string) string {
	return pathutil.ExtName(pathutil.LastSegment(name))
}

// thumbPath inserts "_<w>x<h>" before the extension of p.
func thumbPath(p string, w, h int) string {
	suffix := fmt.Sprintf("_%dx%d", w, h)
	ext := extOf(p)
	if ext == "" {
		return p + suffix
	}
	return p[:len(p)-len(ext)-1] + suffix + "." + ext
}
