// Package storage is the object storage gateway for gallery media.
// The application server never handles media bytes: it hands out
// write-scoped presigned URLs and deletes objects it no longer references.
// Backends work with any S3-compatible provider (MinIO, Cloudflare R2, AWS S3).
package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
)

// Storage is the interface for issuing upload capabilities and removing objects.
type Storage interface {
	// PresignPut returns a URL that accepts a single PUT of an object under key
	// with the given content type until expiry elapses.
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	// Delete removes an object identified by key. Deleting a missing object succeeds.
	Delete(ctx context.Context, key string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
	// KeyFromURL maps a public URL back to its object key. The boolean is
	// false when the URL is not served from this storage namespace.
	KeyFromURL(rawURL string) (string, bool)
}

// Namespace maps keys to public URLs under a fixed base address.
type Namespace struct {
	base string
}

// NewNamespace returns a Namespace rooted at publicBase.
func NewNamespace(publicBase string) Namespace {
	return Namespace{base: strings.TrimRight(strings.TrimSpace(publicBase), "/")}
}

// PublicURL returns base + "/" + key with each path segment escaped, so
// KeyFromURL maps it back to the same key.
func (n Namespace) PublicURL(key string) string {
	segments := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return n.base + "/" + strings.Join(segments, "/")
}

// KeyFromURL strips the public base from rawURL.
func (n Namespace) KeyFromURL(rawURL string) (string, bool) {
	if n.base == "" {
		return "", false
	}
	rest, ok := strings.CutPrefix(strings.TrimSpace(rawURL), n.base+"/")
	if !ok {
		return "", false
	}
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	if unescaped, err := url.PathUnescape(rest); err == nil {
		rest = unescaped
	}
	if rest == "" {
		return "", false
	}
	return rest, true
}

// CleanupResult describes the outcome of a best-effort object removal.
type CleanupResult struct {
	URL     string
	Key     string
	Skipped bool // URL empty or outside the managed namespace
	Err     error
}

// Outcome returns a short label for logs and metrics.
func (r CleanupResult) Outcome() string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Err != nil:
		return "failed"
	default:
		return "deleted"
	}
}

// Cleanup removes the object behind rawURL if it belongs to s. It never
// returns an error; failures are reported in the result for the caller to log.
func Cleanup(ctx context.Context, s Storage, rawURL string) CleanupResult {
	res := CleanupResult{URL: rawURL}
	if strings.TrimSpace(rawURL) == "" {
		res.Skipped = true
		return res
	}
	key, ok := s.KeyFromURL(rawURL)
	if !ok {
		res.Skipped = true
		return res
	}
	res.Key = key
	res.Err = s.Delete(ctx, key)
	return res
}

// ErrUnsupportedDriver is returned by New for an unknown driver name.
var ErrUnsupportedDriver = errors.New("unsupported storage driver")
