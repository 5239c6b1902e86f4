package fdfs

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/fdfskit/pkg/pathutil"
)

const groupMarker = "group"

// StorePath addresses a stored file: the group and the path inside it.
type StorePath struct {
	Group string `json:"group"`
	Path  string `json:"path"`
}

// FullPath returns "<group>/<path>", the form used as the storage key.
func (p StorePath) FullPath() string {
	if p.Group == "" {
		return p.Path
	}
	return p.Group + "/" + p.Path
}

func (p StorePath) String() string { return p.FullPath() }

func (p StorePath) IsZero() bool { return p.Group == "" && p.Path == "" }

// ParseStorePath accepts a full path ("group1/M00/00/00/a.jpg") or an
// access URL ("http://img.example.com/group1/M00/00/00/a.jpg").
// The scheme, host, query and fragment are dropped and the rest is
// normalized. The group is the first segment containing "group"; the path
// is everything after it.
func ParseStorePath(s string) (StorePath, error) {
	segs := pathutil.Segments(stripURL(strings.TrimSpace(s)))
	for i, seg := range segs {
		if !strings.Contains(seg, groupMarker) {
			continue
		}
		if i == len(segs)-1 {
			break
		}
		return StorePath{Group: seg, Path: strings.Join(segs[i+1:], "/")}, nil
	}
	return StorePath{}, fmt.Errorf("%w: %q", ErrInvalidStorePath, s)
}

// stripURL removes "scheme://host" and any query or fragment.
func stripURL(s string) string {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	i := strings.Index(s, "://")
	if i <= 0 || strings.ContainsAny(s[:i], `/\`) {
		return s
	}
	rest := s[i+3:]
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		return rest[j:]
	}
	return ""
}
