package fileutil

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// HTTPClient is used by URLToBase64 and URLToFile.
var HTTPClient = &http.Client{Timeout: 30 * time.Second}

// Base64ToFile decodes data and writes it into dir under a generated name
// "<uuid>-<unix millis>.jpeg". Whitespace and a "data:...;base64," prefix
// are ignored. It returns the path of the new file.
func Base64ToFile(data, dir string) (string, error) {
	raw, err := DecodeBase64(data)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s-%d.jpeg", UUID(), time.Now().UnixMilli())
	p, err := AbsolutePath(dir)
	if err != nil {
		return "", err
	}
	p = filepath.Join(p, name)

	if err := BytesToFile(raw, p); err != nil {
		return "", err
	}
	return p, nil
}

// DecodeBase64 decodes standard base64, ignoring whitespace and a data URI
// prefix.
func DecodeBase64(data string) ([]byte, error) {
	s := data
	if strings.HasPrefix(s, "data:") {
		if _, after, ok := strings.Cut(s, ";base64,"); ok {
			s = after
		}
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}
	return raw, nil
}

// FileToBase64 returns the standard base64 encoding of the file content.
func FileToBase64(path string) (string, error) {
	data, err := ReadBytes(path)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// ReaderToBase64 drains r and returns its standard base64 encoding.
func ReaderToBase64(r io.Reader) (string, error) {
	var buf bytes.Buffer
	enc := base64.NewEncoder(base64.StdEncoding, &buf)
	if _, err := io.Copy(enc, r); err != nil {
		return "", fmt.Errorf("fileutil: read: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("fileutil: encode: %w", err)
	}
	return buf.String(), nil
}

// Base64Reader decodes data into an in-memory reader.
func Base64Reader(data string) (io.Reader, error) {
	raw, err := DecodeBase64(data)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(raw), nil
}

// URLToBase64 downloads url and returns the body as standard base64.
func URLToBase64(ctx context.Context, url string) (string, error) {
	body, err := fetch(ctx, url)
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }()
	return ReaderToBase64(body)
}

// URLToFile downloads url into path and returns the number of bytes written.
func URLToFile(ctx context.Context, url, path string) (int64, error) {
	body, err := fetch(ctx, url)
	if err != nil {
		return 0, err
	}
	defer func() { _ = body.Close() }()
	return CopyTo(body, path)
}

func fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s: status %d", ErrDownloadFailed, url, resp.StatusCode)
	}
	return resp.Body, nil
}
