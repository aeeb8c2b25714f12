// Package upload turns a declared intent to upload a file into a
// time-limited presigned write URL. It never sees the file's bytes.
package upload

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/visualink/studio/internal/apperr"
	"github.com/visualink/studio/internal/metrics"
	"github.com/visualink/studio/internal/storage"
)

// DefaultTTL bounds how long a signed URL accepts the upload.
const DefaultTTL = time.Hour

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// TicketRequest is the body of an upload ticket request.
type TicketRequest struct {
	Filename    string `json:"filename"    example:"My Clip.mp4"`
	ContentType string `json:"contentType" example:"video/mp4"`
}

// Validate checks required fields.
func (r TicketRequest) Validate() error {
	if strings.TrimSpace(r.Filename) == "" {
		return apperr.Required("filename")
	}
	return nil
}

// Ticket is a single-attempt write capability. It is not persisted.
type Ticket struct {
	ObjectKey   string    `json:"objectKey"   example:"1700000000000-My-Clip.mp4"`
	ContentType string    `json:"contentType" example:"video/mp4"`
	SignedURL   string    `json:"signedUrl"   example:"https://account.r2.cloudflarestorage.com/media/1700000000000-My-Clip.mp4?X-Amz-..."`
	PublicURL   string    `json:"publicUrl"   example:"https://media.example.com/1700000000000-My-Clip.mp4"`
	ExpiresAt   time.Time `json:"expiresAt"   example:"2026-02-27T15:48:34Z"`
}

// Broker issues upload tickets.
type Broker struct {
	objects storage.Storage
	ttl     time.Duration
	now     func() time.Time
	lastMS  atomic.Int64
}

// NewBroker creates a Broker whose signed URLs live for ttl.
func NewBroker(objects storage.Storage, ttl time.Duration) *Broker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Broker{objects: objects, ttl: ttl, now: time.Now}
}

// Issue validates req, derives a unique object key and asks storage for a
// signed PUT URL. Storage failures are returned as upstream errors and not retried.
func (b *Broker) Issue(ctx context.Context, req TicketRequest) (*Ticket, error) {
	if err := req.Validate(); err != nil {
		metrics.UploadTickets.WithLabelValues("invalid").Inc()
		return nil, err
	}

	contentType := strings.TrimSpace(req.ContentType)
	if contentType == "" {
		contentType = ResolveContentType(req.Filename)
	}

	now := b.now()
	key := b.objectKey(now, req.Filename)

	signed, err := b.objects.PresignPut(ctx, key, contentType, b.ttl)
	if err != nil {
		metrics.UploadTickets.WithLabelValues("error").Inc()
		return nil, apperr.Upstream("presign upload", err)
	}

	metrics.UploadTickets.WithLabelValues("issued").Inc()
	return &Ticket{
		ObjectKey:   key,
		ContentType: contentType,
		SignedURL:   signed,
		PublicURL:   b.objects.PublicURL(key),
		ExpiresAt:   now.Add(b.ttl).UTC(),
	}, nil
}

// objectKey prefixes the sanitized filename with a millisecond timestamp
// that never repeats within this process.
func (b *Broker) objectKey(now time.Time, filename string) string {
	ms := now.UnixMilli()
	for {
		last := b.lastMS.Load()
		if ms <= last {
			ms = last + 1
		}
		if b.lastMS.CompareAndSwap(last, ms) {
			break
		}
	}
	return strconv.FormatInt(ms, 10) + "-" + SanitizeFilename(filename)
}

// SanitizeFilename drops any directory part and replaces every run of
// characters outside [A-Za-z0-9._-] with "-", so the key needs no escaping
// in a URL path.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = unsafeKeyChars.ReplaceAllString(name, "-")
	if strings.Trim(name, ".-") == "" {
		return "upload"
	}
	return name
}
