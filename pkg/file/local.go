package file

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage implements Storage on the local filesystem.
// All operations are confined to baseDir.
type LocalStorage struct {
	baseDir       string        // Absolute path - all objects stored within this directory
	baseURL       string        // URL prefix for serving files (e.g., "/files/")
	uploadTimeout time.Duration // Optional timeout to prevent hanging uploads
	dirPerm       os.FileMode
	filePerm      os.FileMode
}

// LocalOption defines a function that configures LocalStorage.
type LocalOption func(*LocalStorage)

// WithLocalUploadTimeout sets the timeout for Put.
// If not set, relies on context deadline from caller.
func WithLocalUploadTimeout(timeout time.Duration) LocalOption {
	return func(s *LocalStorage) {
		s.uploadTimeout = timeout
	}
}

// WithLocalPermissions overrides the directory and file modes (0755 and 0644).
func WithLocalPermissions(dirPerm, filePerm os.FileMode) LocalOption {
	return func(s *LocalStorage) {
		if dirPerm != 0 {
			s.dirPerm = dirPerm
		}
		if filePerm != 0 {
			s.filePerm = filePerm
		}
	}
}

// NewLocalStorage creates a new local filesystem storage.
// baseDir is resolved to an absolute path and created if it doesn't exist.
// baseURL is used for generating public URLs (e.g., "/files/").
func NewLocalStorage(baseDir, baseURL string, opts ...LocalOption) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, ErrInvalidConfig
	}

	absBaseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to resolve base directory: %v", ErrFailedToGetAbsolutePath, err)
	}

	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	s := &LocalStorage{
		baseDir:  absBaseDir,
		baseURL:  baseURL,
		dirPerm:  0755,
		filePerm: 0644,
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(absBaseDir, s.dirPerm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}

	return s, nil
}

// BaseDir returns the absolute root directory of the storage.
func (s *LocalStorage) BaseDir() string {
	return s.baseDir
}

// Put writes body to the file addressed by key.
// The copy checks ctx between chunks and removes the partial file on failure.
func (s *LocalStorage) Put(ctx context.Context, key string, body io.Reader, meta ObjectMeta) (*Object, error) {
	if s.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.uploadTimeout)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k, absPath, err := s.resolvePath(key)
	if err != nil {
		return nil, err
	}

	if info, err := os.Stat(absPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, k)
	}

	if err := os.MkdirAll(filepath.Dir(absPath), s.dirPerm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}

	dst, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, s.filePerm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateFile, err)
	}

	fail := func(err error) (*Object, error) {
		_ = dst.Close()
		_ = os.Remove(absPath)
		return nil, err
	}

	crc := crc32.NewIEEE()
	sniff := make([]byte, 0, 512)
	written := int64(0)
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			if len(sniff) < cap(sniff) {
				sniff = append(sniff, buf[:min(n, cap(sniff)-len(sniff))]...)
			}
			crc.Write(buf[:n])
			nw, writeErr := dst.Write(buf[:n])
			if writeErr != nil {
				return fail(fmt.Errorf("%w: %v", ErrFailedToWriteFile, writeErr))
			}
			written += int64(nw)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fail(fmt.Errorf("%w: %v", ErrFailedToReadFile, readErr))
		}
	}

	if err := dst.Close(); err != nil {
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("%w: %v", ErrFailedToWriteFile, err)
	}

	contentType := meta.ContentType
	if contentType == "" {
		contentType = DetectContentType(sniff)
	}

	modTime := time.Now()
	if info, err := os.Stat(absPath); err == nil {
		modTime = info.ModTime()
	}

	return &Object{
		Key:         k,
		Size:        written,
		ContentType: contentType,
		ModTime:     modTime,
		Checksum:    crc.Sum32(),
		Metadata:    meta.Metadata,
	}, nil
}

// Get opens the file addressed by key.
func (s *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k, absPath, err := s.resolvePath(key)
	if err != nil {
		return nil, err
	}

	if _, err := s.statFile(k, absPath); err != nil {
		return nil, err
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}
	return f, nil
}

// Stat returns file attributes. The checksum and content type are computed
// from the file content, so Stat reads the whole file.
func (s *LocalStorage) Stat(ctx context.Context, key string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k, absPath, err := s.resolvePath(key)
	if err != nil {
		return nil, err
	}

	info, err := s.statFile(k, absPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
	}

	crc := crc32.NewIEEE()
	crc.Write(head[:n])
	if _, err := io.Copy(crc, f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToHashFile, err)
	}

	return &Object{
		Key:         k,
		Size:        info.Size(),
		ContentType: DetectContentType(head[:n]),
		ModTime:     info.ModTime(),
		Checksum:    crc.Sum32(),
	}, nil
}

// Delete removes a single file.
// Directories are refused so a wrong key cannot wipe a tree.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	k, absPath, err := s.resolvePath(key)
	if err != nil {
		return err
	}

	if _, err := s.statFile(k, absPath); err != nil {
		return err
	}

	if err := os.Remove(absPath); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToDeleteFile, err)
	}

	return nil
}

// DeleteDir recursively removes a directory and all its contents.
// The storage root itself cannot be removed.
func (s *LocalStorage) DeleteDir(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	k, absPath, err := s.resolvePath(dir)
	if err != nil {
		return err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrDirectoryNotFound, k)
		}
		return fmt.Errorf("%w: %v", ErrFailedToStatPath, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, k)
	}

	if err := os.RemoveAll(absPath); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToDeleteDirectory, err)
	}

	return nil
}

// Exists checks if a file or directory exists.
// Returns false for invalid keys or on context cancellation.
func (s *LocalStorage) Exists(ctx context.Context, key string) bool {
	if ctx.Err() != nil {
		return false
	}

	_, absPath, err := s.resolvePath(key)
	if err != nil {
		return false
	}

	_, err = os.Stat(absPath)
	return err == nil
}

// List returns all entries in a directory (non-recursive).
// An empty dir lists the storage root.
func (s *LocalStorage) List(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k, err := cleanDir(dir)
	if err != nil {
		return nil, err
	}
	absPath := filepath.Join(s.baseDir, filepath.FromSlash(k))

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, k)
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToStatPath, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, k)
	}

	dirEntries, err := os.ReadDir(absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToReadDirectory, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := dirEntry.Info()
		if err != nil {
			continue // Skip entries we can't read
		}

		entry := Entry{
			Name:  dirEntry.Name(),
			Key:   strings.TrimPrefix(k+"/"+dirEntry.Name(), "/"),
			IsDir: dirEntry.IsDir(),
		}
		if !entry.IsDir {
			entry.Size = info.Size()
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// URL returns the public URL for a key.
func (s *LocalStorage) URL(key string) string {
	k, err := cleanDir(key)
	if err != nil {
		return ""
	}
	return s.baseURL + k
}

// statFile stats absPath and requires a regular file.
func (s *LocalStorage) statFile(key, absPath string) (os.FileInfo, error) {
	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, key)
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToStatPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, key)
	}
	return info, nil
}

// resolvePath cleans key and maps it inside baseDir.
func (s *LocalStorage) resolvePath(key string) (string, string, error) {
	k, err := CleanKey(key)
	if err != nil {
		return "", "", err
	}

	absPath := filepath.Join(s.baseDir, filepath.FromSlash(k))

	// CleanKey already drops "..", this guards against platform path quirks
	if !strings.HasPrefix(absPath, s.baseDir+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidPath, key)
	}

	return k, absPath, nil
}
