package fileutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrymomot/fdfskit/pkg/pathutil"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// AbsolutePath resolves path against the working directory and returns it
// normalized, in the separator style of the host OS.
// Leading "classpath:" and "file:" prefixes are ignored.
func AbsolutePath(path string) (string, error) {
	p := pathutil.TrimScheme(path)
	if p == "" {
		return "", ErrEmptyPath
	}

	if !pathutil.IsAbsolute(p) {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("fileutil: working directory: %w", err)
		}
		p = wd + "/" + p
	}

	return filepath.FromSlash(pathutil.Normalize(p)), nil
}

// IsDir reports whether path is an existing directory.
func IsDir(path string) bool {
	info, err := stat(path)
	return err == nil && info.IsDir()
}

// IsFile reports whether path is an existing regular file.
func IsFile(path string) bool {
	info, err := stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Exists reports whether anything exists at path.
func Exists(path string) bool {
	_, err := stat(path)
	return err == nil
}

// SameFile reports whether a and b refer to the same file.
// Two missing paths are the same when their absolute forms are equal.
func SameFile(a, b string) (bool, error) {
	infoA, errA := stat(a)
	infoB, errB := stat(b)

	switch {
	case errors.Is(errA, ErrFileNotFound) && errors.Is(errB, ErrFileNotFound):
		return PathEquals(a, b), nil
	case errors.Is(errA, ErrFileNotFound) || errors.Is(errB, ErrFileNotFound):
		return false, nil
	case errA != nil:
		return false, errA
	case errB != nil:
		return false, errB
	}

	return os.SameFile(infoA, infoB), nil
}

// PathEquals compares the absolute forms of a and b.
// The comparison ignores case on Windows.
func PathEquals(a, b string) bool {
	absA, err := AbsolutePath(a)
	if err != nil {
		return false
	}
	absB, err := AbsolutePath(b)
	if err != nil {
		return false
	}
	return pathutil.Equal(absA, absB)
}

// ContentEquals reports whether two files have identical content.
// Two missing files are equal; a missing and an existing one are not.
// Directories are rejected with ErrIsDirectory.
func ContentEquals(a, b string) (bool, error) {
	infoA, errA := stat(a)
	infoB, errB := stat(b)

	missingA, missingB := errors.Is(errA, ErrFileNotFound), errors.Is(errB, ErrFileNotFound)
	if missingA || missingB {
		return missingA == missingB, nil
	}
	if errA != nil {
		return false, errA
	}
	if errB != nil {
		return false, errB
	}

	if infoA.IsDir() || infoB.IsDir() {
		return false, ErrIsDirectory
	}
	if infoA.Size() != infoB.Size() {
		return false, nil
	}
	if os.SameFile(infoA, infoB) {
		return true, nil
	}

	fa, err := open(a)
	if err != nil {
		return false, err
	}
	defer func() { _ = fa.Close() }()

	fb, err := open(b)
	if err != nil {
		return false, err
	}
	defer func() { _ = fb.Close() }()

	bufA := make([]byte, 32*1024)
	bufB := make([]byte, 32*1024)
	for {
		na, errA := io.ReadFull(fa, bufA)
		nb, errB := io.ReadFull(fb, bufB)
		if !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}
		doneA := errors.Is(errA, io.EOF) || errors.Is(errA, io.ErrUnexpectedEOF)
		doneB := errors.Is(errB, io.EOF) || errors.Is(errB, io.ErrUnexpectedEOF)
		if doneA || doneB {
			return doneA == doneB, nil
		}
		if errA != nil {
			return false, fmt.Errorf("fileutil: read %s: %w", a, errA)
		}
		if errB != nil {
			return false, fmt.Errorf("fileutil: read %s: %w", b, errB)
		}
	}
}

// IsModified reports whether the file at path changed since modTime.
// A missing file counts as modified.
func IsModified(path string, modTime time.Time) bool {
	info, err := stat(path)
	if err != nil {
		return true
	}
	return !info.ModTime().Equal(modTime)
}

// Mkdirs creates dir and any missing parents.
func Mkdirs(dir string) error {
	p, err := AbsolutePath(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(p, dirPerm); err != nil {
		return fmt.Errorf("fileutil: create directory: %w", err)
	}
	return nil
}

// MkdirsForFile creates the parent directories of path.
func MkdirsForFile(path string) error {
	p, err := AbsolutePath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), dirPerm); err != nil {
		return fmt.Errorf("fileutil: create directory: %w", err)
	}
	return nil
}

// Delete removes a file or a whole directory tree.
// A missing path is not an error.
func Delete(path string) error {
	p, err := AbsolutePath(path)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(p); err != nil {
		return fmt.Errorf("fileutil: delete %s: %w", path, err)
	}
	return nil
}

// DeleteDir removes a directory tree. Unlike Delete it refuses regular files.
func DeleteDir(dir string) error {
	info, err := stat(dir)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}
	return Delete(dir)
}

// IsReadable reports whether the file at path can be opened for reading.
func IsReadable(path string) bool {
	f, err := open(path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// IsWritable reports whether the file at path can be opened for writing.
// For directories the owner write bit is checked.
func IsWritable(path string) bool {
	info, err := stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return info.Mode().Perm()&0o200 != 0
	}

	p, _ := AbsolutePath(path)
	f, err := os.OpenFile(p, os.O_WRONLY, 0)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// IsExecutable reports whether path is a regular file with any execute bit set.
func IsExecutable(path string) bool {
	info, err := stat(path)
	return err == nil && info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}

// stat resolves path and maps a missing file to ErrFileNotFound.
func stat(path string) (fs.FileInfo, error) {
	p, err := AbsolutePath(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("fileutil: stat %s: %w", path, err)
	}
	return info, nil
}

// open opens a regular file for reading.
func open(path string) (*os.File, error) {
	info, err := stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	p, _ := AbsolutePath(path)
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("fileutil: open %s: %w", path, err)
	}
	return f, nil
}
