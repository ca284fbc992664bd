// Package blob names and stores item photos.
package blob

import (
	"context"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/gofrs/uuid/v5"
)

// DefaultExt is used when the picked file carries no usable extension.
const DefaultExt = ".jpg"

// MaxImageBytes caps an attached photo.
const MaxImageBytes = 8 << 20

// Store persists opaque blobs under slash-separated paths.
type Store interface {
	// Put writes r under p, replacing any previous blob at p.
	Put(ctx context.Context, p string, r io.Reader, contentType string) error
	// Open returns a reader over the blob and its stored content type.
	Open(ctx context.Context, p string) (io.ReadCloser, string, error)
	// Delete removes the blob; a missing blob is errs.ErrNotFound.
	Delete(ctx context.Context, p string) error
}

// Extension returns the lower-cased extension of filename, or DefaultExt.
func Extension(filename string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(filename)))
	if len(ext) < 2 || strings.ContainsAny(ext, `/\ `) {
		return DefaultExt
	}
	return ext
}

// ItemImagePath is <namespace>/items/<id>/image<ext>.
func ItemImagePath(namespace string, id uuid.UUID, ext string) string {
	return namespace + "/items/" + id.String() + "/image" + ext
}

// ContentType maps an extension to a MIME type.
func ContentType(ext string) string {
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// URL joins the public base with the blob route.
func URL(base, p string) string {
	return strings.TrimRight(base, "/") + "/blobs/" + strings.TrimLeft(p, "/")
}

// CleanPath normalizes a requested path and rejects traversal.
func CleanPath(p string) (string, bool) {
	c := path.Clean("/" + p)
	if c == "/" || strings.Contains(p, "..") {
		return "", false
	}
	return strings.TrimPrefix(c, "/"), true
}
