// Package images stores uploaded image blobs and maps them to public URLs.
package images

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"
)

// Object describes a stored image.
type Object struct {
	ID          string
	Filename    string
	ContentType string
	Size        int64
	UploadedAt  time.Time
}

type Store interface {
	Put(ctx context.Context, filename, contentType string, r io.Reader) (Object, error)
	// Open returns a reader over the blob; NotFound when id is unknown.
	Open(ctx context.Context, id string) (io.ReadCloser, Object, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Object, error)
}

const pathPrefix = "/api/images/"

// URL builds the public URL served by the image GET route.
func URL(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + pathPrefix + id
}

// IDFromURL extracts the id from an image URL by its path alone. Scheme and
// host are ignored so records survive a change of PUBLIC_BASE_URL.
// Foreign URLs return false.
func IDFromURL(u string) (string, bool) {
	parsed, err := url.Parse(u)
	if err != nil {
		return "", false
	}
	p := parsed.Path
	i := strings.LastIndex(p, pathPrefix)
	if i < 0 {
		return "", false
	}
	id := p[i+len(pathPrefix):]
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
