package file

import (
	"context"
	"io"
	"time"
)

// MetaChecksum is the object metadata key holding the IEEE CRC32 of the content
// as a decimal string.
const MetaChecksum = "crc32"

// Object describes a stored object.
type Object struct {
	Key         string
	Size        int64
	ContentType string
	ModTime     time.Time
	ETag        string
	Checksum    uint32 // IEEE CRC32, 0 when the backend does not know it
	Metadata    map[string]string
}

// ObjectMeta carries optional attributes for Put.
type ObjectMeta struct {
	ContentType string
	Size        int64 // Content length when known, 0 otherwise
	Metadata    map[string]string
}

// Entry represents a file or directory entry.
type Entry struct {
	Name  string
	Key   string
	IsDir bool
	Size  int64
}

// Storage is an object store addressed by storage keys.
// Keys are normalized with pathutil.Normalize before use, so "a/./b",
// "/a/b" and `a\b` address the same object.
type Storage interface {
	// Put stores body under key, replacing any existing object.
	Put(ctx context.Context, key string, body io.Reader, meta ObjectMeta) (*Object, error)
	// Get opens the object for reading. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Stat returns object attributes without reading content.
	Stat(ctx context.Context, key string) (*Object, error)
	// Delete removes a single object.
	Delete(ctx context.Context, key string) error
	// DeleteDir recursively removes every object under dir.
	DeleteDir(ctx context.Context, dir string) error
	// Exists checks if an object or directory exists.
	Exists(ctx context.Context, key string) bool
	// List returns all entries in a directory (non-recursive).
	List(ctx context.Context, dir string) ([]Entry, error)
	// URL returns the public URL for a key.
	URL(key string) string
}
