package fileutil

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ReadText reads the whole file as a string.
func ReadText(path string) (string, error) {
	data, err := ReadBytes(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadBytes reads the whole file.
func ReadBytes(path string) ([]byte, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReaderToBytes(f)
}

// ReadLines reads the file line by line. Line terminators ("\n" or "\r\n")
// are not included.
func ReadLines(path string) ([]string, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("fileutil: read %s: %w", path, err)
	}
	return lines, nil
}

// WriteText writes text to path, creating parent directories.
// With appendMode set the text is added to the end of an existing file.
func WriteText(path, text string, appendMode bool) error {
	return writeFile(path, appendMode, func(w io.Writer) error {
		_, err := io.WriteString(w, text)
		return err
	})
}

// WriteLines writes each line followed by "\n".
func WriteLines(path string, lines []string, appendMode bool) error {
	return writeFile(path, appendMode, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		for _, line := range lines {
			if _, err := bw.WriteString(line); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		return bw.Flush()
	})
}

// BytesToFile writes data to path, replacing any existing file.
func BytesToFile(data []byte, path string) error {
	return writeFile(path, false, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// ReaderToBytes drains r.
func ReaderToBytes(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("fileutil: read: %w", err)
	}
	return data, nil
}

// CopyTo writes everything from r to the file at path and returns the
// number of bytes written.
func CopyTo(r io.Reader, path string) (int64, error) {
	var n int64
	err := writeFile(path, false, func(w io.Writer) error {
		var err error
		n, err = io.Copy(w, r)
		return err
	})
	return n, err
}

// CopyFrom streams the file at path into w.
func CopyFrom(path string, w io.Writer) (int64, error) {
	f, err := open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	n, err := io.Copy(w, f)
	if err != nil {
		return n, fmt.Errorf("fileutil: copy %s: %w", path, err)
	}
	return n, nil
}

// CopyFile copies src to dst, keeping the source permissions.
func CopyFile(src, dst string) error {
	same, err := SameFile(src, dst)
	if err != nil {
		return err
	}
	if same {
		return ErrSameSourceTarget
	}

	info, err := stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s", ErrIsDirectory, src)
	}

	in, err := open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	if _, err := CopyTo(in, dst); err != nil {
		return err
	}

	p, err := AbsolutePath(dst)
	if err != nil {
		return err
	}
	if err := os.Chmod(p, info.Mode().Perm()); err != nil {
		return fmt.Errorf("fileutil: chmod %s: %w", dst, err)
	}
	return nil
}

// MoveFile renames src to dst, falling back to copy and delete when the
// rename crosses filesystems.
func MoveFile(src, dst string) error {
	from, err := AbsolutePath(src)
	if err != nil {
		return err
	}
	to, err := AbsolutePath(dst)
	if err != nil {
		return err
	}
	if _, err := stat(src); err != nil {
		return err
	}
	if err := MkdirsForFile(dst); err != nil {
		return err
	}

	err = os.Rename(from, to)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || IsDir(src) {
		return fmt.Errorf("fileutil: move %s: %w", src, err)
	}

	if err := CopyFile(src, dst); err != nil {
		return err
	}
	return Delete(src)
}

// CreateTemp creates an empty file in dir named prefix + random + suffix and
// returns its path. An empty dir means os.TempDir().
func CreateTemp(dir, prefix, suffix string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := Mkdirs(dir); err != nil {
		return "", err
	}
	p, err := AbsolutePath(dir)
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp(p, strings.ReplaceAll(prefix, "*", "")+"*"+suffix)
	if err != nil {
		return "", fmt.Errorf("fileutil: create temp file: %w", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("fileutil: create temp file: %w", err)
	}
	return name, nil
}

func writeFile(path string, appendMode bool, write func(io.Writer) error) error {
	p, err := AbsolutePath(path)
	if err != nil {
		return err
	}
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		return fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}
	if err := os.MkdirAll(filepath.Dir(p), dirPerm); err != nil {
		return fmt.Errorf("fileutil: create directory: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if appendMode {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}

	f, err := os.OpenFile(p, flags, filePerm)
	if err != nil {
		return fmt.Errorf("fileutil: open %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("fileutil: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("fileutil: write %s: %w", path, err)
	}
	return nil
}
