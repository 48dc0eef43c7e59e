package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/trophyshop/internal/common"
)

// partialPrefix marks files still being written; List never reports them.
const partialPrefix = ".partial-"

// Local stores blobs on the local filesystem under root. Writes go to a
// partial file in the destination directory and are renamed into place.
type Local struct {
	root string
	urlMapper
}

// NewLocal creates a Local backend rooted at root, creating the directory if
// needed. publicBase prefixes every URL, e.g. "/media".
func NewLocal(root, publicBase string) (*Local, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create storage root %q: %w", root, err)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	return &Local{root: absRoot, urlMapper: newURLMapper(publicBase)}, nil
}

// Root returns the absolute directory holding the blobs.
func (l *Local) Root() string { return l.root }

func (l *Local) abs(key string) (string, error) {
	clean, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	joined := filepath.Join(l.root, filepath.FromSlash(clean))
	rel, err := filepath.Rel(l.root, joined)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("key %q escapes storage root", key)
	}
	return joined, nil
}

func (l *Local) Put(_ context.Context, key string, r io.Reader, _ string) (int64, error) {
	dest, err := l.abs(key)
	if err != nil {
		return 0, err
	}
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return 0, fmt.Errorf("mkdir %q: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, partialPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("create partial file: %w", err)
	}
	tmp := f.Name()

	n, werr := io.Copy(f, r)
	cerr := f.Close()
	if werr != nil {
		os.Remove(tmp) //nolint:errcheck
		return 0, fmt.Errorf("stream write: %w", werr)
	}
	if cerr != nil {
		os.Remove(tmp) //nolint:errcheck
		return 0, fmt.Errorf("flush: %w", cerr)
	}
	if err := os.Chmod(tmp, 0o640); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return 0, fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return 0, fmt.Errorf("rename to %q: %w", dest, err)
	}
	return n, nil
}

func (l *Local) Open(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := l.abs(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, common.ErrorNotFound)
	}
	return f, err
}

func (l *Local) Exists(_ context.Context, key string) (bool, error) {
	p, err := l.abs(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// List walks the directory that contains prefix and keeps regular files
// whose key starts with prefix. A prefix may end in a partial file name.
func (l *Local) List(_ context.Context, prefix string) ([]Object, error) {
	dirKey := prefix
	if !strings.HasSuffix(prefix, "/") {
		dirKey = path.Dir(prefix)
	}
	dir := l.root
	if dirKey != "." && dirKey != "" {
		var err error
		if dir, err = l.abs(dirKey); err != nil {
			return nil, err
		}
	}

	var out []Object
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), partialPrefix) {
			return nil
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		out = append(out, Object{Key: key, Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}
	return out, nil
}

func (l *Local) Copy(ctx context.Context, srcKey, dstKey string) error {
	src, err := l.Open(ctx, srcKey)
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = l.Put(ctx, dstKey, src, "")
	return err
}

func (l *Local) Delete(_ context.Context, key string) error {
	p, err := l.abs(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
