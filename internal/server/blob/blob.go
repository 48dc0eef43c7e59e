// Package blob abstracts the binary object store used for catalog images.
// Two backends implement Store: Local (filesystem) and S3 (any S3-compatible
// bucket). Keys are slash-separated relative paths such as
// "temp/s1-1700000000000-photo.png" or "products/photo.png".
package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/trophyshop/internal/common"
)

// Object describes one stored blob.
type Object struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// Store is the storage medium behind the upload staging pipeline.
type Store interface {
	// Put writes r under key, replacing any existing object. The write is
	// all-or-nothing.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (int64, error)

	// Open streams an object. Missing keys yield common.ErrorNotFound.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	Exists(ctx context.Context, key string) (bool, error)

	// List returns every object whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]Object, error)

	Copy(ctx context.Context, srcKey, dstKey string) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// URL resolves the public reference for key.
	URL(key string) string

	// KeyFromURL maps a public reference back to a key of this store.
	// ok is false for references this store did not produce.
	KeyFromURL(ref string) (key string, ok bool)
}

// CleanKey normalises key and rejects anything that could escape the store
// root.
func CleanKey(key string) (string, error) {
	if key == "" {
		return "", common.NewValidationError("key", "must not be empty")
	}
	clean := path.Clean(strings.ReplaceAll(key, "\\", "/"))
	if strings.HasPrefix(clean, "/") || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", common.NewValidationError("key", fmt.Sprintf("%q escapes the storage root", key))
	}
	return clean, nil
}

// urlMapper converts between keys and public references rooted at base.
type urlMapper struct {
	base string
}

func newURLMapper(base string) urlMapper {
	return urlMapper{base: strings.TrimRight(base, "/")}
}

func (m urlMapper) URL(key string) string {
	return m.base + "/" + key
}

func (m urlMapper) KeyFromURL(ref string) (string, bool) {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	rest, found := strings.CutPrefix(ref, m.base+"/")
	if !found || rest == "" {
		return "", false
	}
	key, err := CleanKey(rest)
	if err != nil || key != rest {
		return "", false
	}
	return key, true
}
