package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned when a key doesn't exist.
var ErrNotFound = errors.New("upload: object not found")

// ErrTooLarge is returned when an object exceeds the size limit.
var ErrTooLarge = errors.New("upload: object too large")

// ErrInvalidKey is returned for empty keys and keys escaping the store root.
var ErrInvalidKey = errors.New("upload: invalid key")

// Store is the interface for artifact storage backends.
type Store interface {
	// Put stores the contents of r under key and returns the object's
	// location (a URL or path).
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

// Object describes a stored artifact.
type Object struct {
	Key         string
	ContentType string
	Size        int64
	CreatedAt   time.Time

	// Location is the local path or remote URL of the object.
	Location string

	// Reader provides access to the contents. May be nil for listings.
	Reader io.ReadCloser
}

// Close closes the object reader if open.
func (o *Object) Close() error {
	if o.Reader != nil {
		return o.Reader.Close()
	}
	return nil
}

var contentTypes = map[string]string{
	".vgv":  "text/plain; charset=utf-8",
	".html": "text/html; charset=utf-8",
	".htm":  "text/html; charset=utf-8",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".svg":  "image/svg+xml",
}

// ContentType returns the MIME type stored for an artifact name.
func ContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// CleanKey normalizes key to a slash separated relative path.
func CleanKey(key string) (string, error) {
	key = strings.ReplaceAll(key, "\\", "/")
	if key == "" || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return clean, nil
}

// File uploads the local file at name to store. An empty key uses the
// file's base name.
func File(ctx context.Context, store Store, name, key string) (string, error) {
	if key == "" {
		key = filepath.Base(name)
	}
	f, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return store.Put(ctx, key, ContentType(name), f)
}

// limit copies at most max bytes from r into w, failing with ErrTooLarge
// when r holds more. max <= 0 means no limit.
func limit(w io.Writer, r io.Reader, max int64) (int64, error) {
	if max <= 0 {
		return io.Copy(w, r)
	}
	n, err := io.Copy(w, io.LimitReader(r, max+1))
	if err != nil {
		return n, err
	}
	if n > max {
		return n, ErrTooLarge
	}
	return n, nil
}
