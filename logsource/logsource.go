// Package logsource opens transaction trace logs from local paths, file://
// URIs or http(s) URLs, decompressing .zst and .gz logs on the fly.
package logsource

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Open returns a reader over the log named by uri.
//   - Input without "://" is treated as a local path (relative or absolute).
//   - file:// URIs use their path directly.
//   - http:// and https:// URLs are streamed; any status other than 200 is an error.
//
// The caller must close the returned reader.
func Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	rc, name, err := openRaw(ctx, uri)
	if err != nil {
		return nil, err
	}
	r, err := decompress(rc, name)
	if err != nil {
		rc.Close()
		return nil, err
	}
	return r, nil
}

func openRaw(ctx context.Context, uri string) (io.ReadCloser, string, error) {
	if !strings.Contains(uri, "://") {
		absPath, err := filepath.Abs(uri)
		if err != nil {
			return nil, "", fmt.Errorf("failed to get absolute path for '%s': %w", uri, err)
		}
		slog.Debug("opening local log", "path", absPath)
		f, err := os.Open(absPath)
		if err != nil {
			return nil, "", fmt.Errorf("open log: %w", err)
		}
		return f, absPath, nil
	}

	parsedURI, err := url.Parse(uri)
	if err != nil {
		return nil, "", fmt.Errorf("invalid log URI '%s': %w", uri, err)
	}

	switch parsedURI.Scheme {
	case "file":
		path := parsedURI.Path
		if path == "" {
			return nil, "", fmt.Errorf("invalid file path derived from URI '%s'", uri)
		}
		slog.Debug("opening local log", "path", path)
		f, err := os.Open(path)
		if err != nil {
			return nil, "", fmt.Errorf("open log: %w", err)
		}
		return f, path, nil

	case "http", "https":
		slog.Info("downloading log", "url", uri)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, "", fmt.Errorf("build request for '%s': %w", uri, err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, "", fmt.Errorf("failed to download log from '%s': %w", uri, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, "", fmt.Errorf("failed to download log from '%s': received status code %d", uri, resp.StatusCode)
		}
		return resp.Body, parsedURI.Path, nil

	default:
		return nil, "", fmt.Errorf("unsupported URI scheme '%s', only 'file://', 'http://', 'https://', or a plain local path are supported", parsedURI.Scheme)
	}
}

func decompress(rc io.ReadCloser, name string) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zst", ".zstd":
		dec, err := zstd.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		return &stackedReader{Reader: dec, closers: []func() error{
			func() error { dec.Close(); return nil },
			rc.Close,
		}}, nil
	case ".gz":
		zr, err := gzip.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		return &stackedReader{Reader: zr, closers: []func() error{zr.Close, rc.Close}}, nil
	default:
		return rc, nil
	}
}

// stackedReader reads from a decompressor and closes it before the
// underlying source.
type stackedReader struct {
	io.Reader
	closers []func() error
}

func (s *stackedReader) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
