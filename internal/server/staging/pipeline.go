// Package staging implements the image upload workflow: uploads land in a
// temporary area under a session-scoped name and are either promoted to the
// permanent area when the owning record is saved, or swept when the form is
// abandoned.
package staging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dmitrijs2005/trophyshop/internal/common"
	"github.com/dmitrijs2005/trophyshop/internal/logging"
	"github.com/dmitrijs2005/trophyshop/internal/server/blob"
)

const (
	DefaultTempPrefix  = "temp/"
	DefaultMaxFileSize = 2 * mib

	// maxNameAttempts bounds the search for a free permanent name.
	maxNameAttempts = 1000
)

// DefaultAllowedTypes is the image allow-list used when Config leaves it empty.
var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

type Config struct {
	TempPrefix      string
	PermanentPrefix string
	MaxFileSize     int64
	AllowedTypes    []string
}

// File is an incoming upload. Size is the size the client declared, or a
// negative value when unknown.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type StagedUpload struct {
	SessionID        string
	TemporaryKey     string
	URL              string
	OriginalFileName string
	ContentType      string
	SizeBytes        int64
}

type FinalizeResult struct {
	Success     bool
	Message     string
	FinalURL    string
	FallbackURL string
	Deleted     int
}

type CleanupResult struct {
	Path    string `json:"path"`
	Deleted bool   `json:"deleted"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Pipeline struct {
	store  blob.Store
	cfg    Config
	logger logging.Logger
	now    func() time.Time

	stampMu   sync.Mutex
	lastStamp int64

	// promoteMu serialises name selection and copy so two promotions of
	// the same original name cannot pick the same destination.
	promoteMu sync.Mutex
}

type Option func(*Pipeline)

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func New(store blob.Store, cfg Config, logger logging.Logger, opts ...Option) *Pipeline {
	if cfg.TempPrefix == "" {
		cfg.TempPrefix = DefaultTempPrefix
	}
	cfg.TempPrefix = withSlash(cfg.TempPrefix)
	cfg.PermanentPrefix = withSlash(cfg.PermanentPrefix)
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if len(cfg.AllowedTypes) == 0 {
		cfg.AllowedTypes = DefaultAllowedTypes
	}
	p := &Pipeline{
		store:  store,
		cfg:    cfg,
		logger: logger.With("module", "staging", "area", strings.TrimSuffix(cfg.PermanentPrefix, "/")),
		now:    time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func withSlash(prefix string) string {
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}

func (p *Pipeline) Config() Config { return p.cfg }

// nextStamp returns a millisecond stamp strictly greater than any previous
// one issued by this pipeline.
func (p *Pipeline) nextStamp() int64 {
	p.stampMu.Lock()
	defer p.stampMu.Unlock()
	ms := p.now().UnixMilli()
	if ms <= p.lastStamp {
		ms = p.lastStamp + 1
	}
	p.lastStamp = ms
	return ms
}

// TooLarge builds the error reported for an upload of size bytes.
func (p *Pipeline) TooLarge(size int64) error {
	return &common.PayloadTooLargeError{Size: size, Max: p.cfg.MaxFileSize, Msg: tooLargeMessage(size, p.cfg.MaxFileSize)}
}

// Accept validates an upload and writes it to the temporary area. Nothing
// is written when validation fails.
func (p *Pipeline) Accept(ctx context.Context, f File, sessionID string) (*StagedUpload, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}
	ct := normalizeContentType(f.ContentType)
	if !slices.Contains(p.cfg.AllowedTypes, ct) {
		return nil, common.NewValidationError("file",
			fmt.Sprintf("content type %q is not allowed (allowed: %s)", f.ContentType, strings.Join(p.cfg.AllowedTypes, ", ")))
	}
	if f.Body == nil {
		return nil, common.NewValidationError("file", "missing file body")
	}
	if f.Size > p.cfg.MaxFileSize {
		return nil, p.TooLarge(f.Size)
	}

	// Declared sizes can lie; read one byte past the limit to find out.
	data, err := io.ReadAll(io.LimitReader(f.Body, p.cfg.MaxFileSize+1))
	if err != nil {
		return nil, &common.TransportError{Op: "read upload", Err: err}
	}
	if int64(len(data)) > p.cfg.MaxFileSize {
		return nil, p.TooLarge(max(f.Size, int64(len(data))))
	}
	if len(data) == 0 {
		return nil, common.NewValidationError("file", "file is empty")
	}

	name := sanitizeFileName(f.Name, ct)
	key := p.cfg.TempPrefix + stagedName(sessionID, p.nextStamp(), name)

	n, err := p.store.Put(ctx, key, bytes.NewReader(data), ct)
	if err != nil {
		return nil, &common.TransportError{Op: "stage upload", Err: err}
	}

	p.logger.Info(ctx, "upload staged", "session", sessionID, "key", key, "size", humanize.IBytes(uint64(n)))

	return &StagedUpload{
		SessionID:        sessionID,
		TemporaryKey:     key,
		URL:              p.store.URL(key),
		OriginalFileName: f.Name,
		ContentType:      ct,
		SizeBytes:        n,
	}, nil
}

// tempKey resolves ref to a key in this pipeline's temporary area.
func (p *Pipeline) tempKey(ref string) (string, bool) {
	key, ok := p.store.KeyFromURL(ref)
	if !ok || !strings.HasPrefix(key, p.cfg.TempPrefix) {
		return "", false
	}
	if strings.Contains(key[len(p.cfg.TempPrefix):], "/") {
		return "", false
	}
	return key, true
}

// Finalize promotes the staged reference when save is true, or discards
// everything the session staged when it is false.
func (p *Pipeline) Finalize(ctx context.Context, sessionID string, save bool, ref string) (*FinalizeResult, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}
	if !save {
		return p.discardSession(ctx, sessionID)
	}
	if ref == "" {
		return &FinalizeResult{Success: true, Message: "nothing to promote"}, nil
	}

	key, ok := p.tempKey(ref)
	if !ok {
		return &FinalizeResult{Success: true, Message: "reference is not a staged upload", FinalURL: ref}, nil
	}
	name, owned := parseStagedName(key[len(p.cfg.TempPrefix):], sessionID)
	if !owned {
		return nil, common.NewValidationError("path", "staged file does not belong to this session")
	}

	dst, err := p.promote(ctx, key, name)
	if errors.Is(err, common.ErrorNotFound) {
		// Already promoted or swept: the reference is dead, nothing to fall back to.
		p.logger.Warn(ctx, "staged file no longer exists", "session", sessionID, "key", key)
		return &FinalizeResult{Message: "staged file no longer exists"}, fmt.Errorf("promote %s: %w", key, err)
	}
	if err != nil {
		p.logger.Error(ctx, "promotion failed", "session", sessionID, "key", key, "error", err)
		return &FinalizeResult{Message: "could not move the image to permanent storage", FallbackURL: ref},
			&common.TransportError{Op: "promote", Err: err}
	}

	if err := p.store.Delete(ctx, key); err != nil {
		p.logger.Warn(ctx, "temporary file left behind", "key", key, "error", err)
	}

	p.logger.Info(ctx, "upload promoted", "session", sessionID, "from", key, "to", dst)
	return &FinalizeResult{Success: true, Message: "image saved", FinalURL: p.store.URL(dst)}, nil
}

func (p *Pipeline) promote(ctx context.Context, src, name string) (string, error) {
	p.promoteMu.Lock()
	defer p.promoteMu.Unlock()

	dst, err := p.freeKey(ctx, name)
	if err != nil {
		return "", err
	}
	if err := p.store.Copy(ctx, src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// freeKey finds the first unused permanent key for name, appending -2, -3,
// and so on when the plain name is taken.
func (p *Pipeline) freeKey(ctx context.Context, name string) (string, error) {
	for n := 1; n <= maxNameAttempts; n++ {
		candidate := name
		if n > 1 {
			candidate = numbered(name, n)
		}
		key := p.cfg.PermanentPrefix + candidate
		exists, err := p.store.Exists(ctx, key)
		if err != nil {
			return "", err
		}
		if !exists {
			return key, nil
		}
	}
	return "", fmt.Errorf("no free name for %q after %d attempts", name, maxNameAttempts)
}

func (p *Pipeline) discardSession(ctx context.Context, sessionID string) (*FinalizeResult, error) {
	prefix := p.cfg.TempPrefix + sessionID + "-"
	objects, err := p.store.List(ctx, prefix)
	if err != nil {
		p.logger.Warn(ctx, "listing session uploads failed", "session", sessionID, "error", err)
		return &FinalizeResult{Message: "could not list temporary files"},
			&common.CleanupError{Err: &common.TransportError{Op: "list", Err: err}}
	}

	var (
		left []string
		errs []error
	)
	deleted := 0
	for _, o := range objects {
		if err := p.store.Delete(ctx, o.Key); err != nil {
			left = append(left, o.Key)
			errs = append(errs, err)
			continue
		}
		deleted++
	}
	if len(left) > 0 {
		p.logger.Warn(ctx, "temporary files left behind", "session", sessionID, "keys", left)
		return &FinalizeResult{Message: fmt.Sprintf("could not remove %d temporary file(s)", len(left)), Deleted: deleted},
			&common.CleanupError{Keys: left, Err: errors.Join(errs...)}
	}

	p.logger.Debug(ctx, "session uploads discarded", "session", sessionID, "deleted", deleted)
	return &FinalizeResult{Success: true, Message: fmt.Sprintf("removed %d temporary file(s)", deleted), Deleted: deleted}, nil
}

// Cleanup deletes the given references that point into the temporary area
// and skips everything else.
func (p *Pipeline) Cleanup(ctx context.Context, refs []string) []CleanupResult {
	results := make([]CleanupResult, 0, len(refs))
	for _, ref := range refs {
		res := CleanupResult{Path: ref}
		key, ok := p.tempKey(ref)
		if !ok {
			res.Skipped = true
			results = append(results, res)
			continue
		}
		if err := p.store.Delete(ctx, key); err != nil {
			p.logger.Warn(ctx, "cleanup failed", "key", key, "error", err)
			res.Error = err.Error()
		} else {
			res.Deleted = true
		}
		results = append(results, res)
	}
	return results
}

// Discard removes a permanent image of this area. References outside the
// area, external URLs included, are ignored.
func (p *Pipeline) Discard(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	key, ok := p.store.KeyFromURL(ref)
	if !ok || !strings.HasPrefix(key, p.cfg.PermanentPrefix) || path.Dir(key)+"/" != p.cfg.PermanentPrefix {
		return nil
	}
	if err := p.store.Delete(ctx, key); err != nil {
		return &common.TransportError{Op: "discard", Err: err}
	}
	p.logger.Info(ctx, "image discarded", "key", key)
	return nil
}

// SweepStale removes temporary objects last modified before now-ttl. It
// returns the number of removed objects and the total size they occupied.
func (p *Pipeline) SweepStale(ctx context.Context, ttl time.Duration) (int, int64, error) {
	objects, err := p.store.List(ctx, p.cfg.TempPrefix)
	if err != nil {
		return 0, 0, &common.CleanupError{Err: &common.TransportError{Op: "list", Err: err}}
	}
	cutoff := p.now().Add(-ttl)

	var (
		left  []string
		errs  []error
		count int
		freed int64
	)
	for _, o := range objects {
		if !o.ModTime.Before(cutoff) {
			continue
		}
		if err := p.store.Delete(ctx, o.Key); err != nil {
			left = append(left, o.Key)
			errs = append(errs, err)
			continue
		}
		count++
		freed += o.Size
	}
	if len(left) > 0 {
		return count, freed, &common.CleanupError{Keys: left, Err: errors.Join(errs...)}
	}
	return count, freed, nil
}
