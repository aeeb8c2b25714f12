package upload

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visualink/studio/internal/apperr"
	"github.com/visualink/studio/internal/middleware"
	"github.com/visualink/studio/internal/storage"
)

type presignCall struct {
	key, contentType string
	expiry           time.Duration
}

type fakePresigner struct {
	storage.Namespace
	calls []presignCall
	err   error
}

func (f *fakePresigner) PresignPut(_ context.Context, key, contentType string, expiry time.Duration) (string, error) {
	f.calls = append(f.calls, presignCall{key, contentType, expiry})
	if f.err != nil {
		return "", f.err
	}
	return "https://signed.example/" + key + "?sig=abc", nil
}

func (f *fakePresigner) Delete(context.Context, string) error { return nil }

func newFake() *fakePresigner {
	return &fakePresigner{Namespace: storage.NewNamespace("https://media.example.com")}
}

func TestIssueInfersContentTypeAndNormalizesKey(t *testing.T) {
	objects := newFake()
	b := NewBroker(objects, time.Hour)
	b.now = func() time.Time { return time.UnixMilli(1700000000000) }

	ticket, err := b.Issue(context.Background(), TicketRequest{Filename: "My Clip.mp4"})
	require.NoError(t, err)

	assert.Equal(t, "video/mp4", ticket.ContentType)
	assert.Equal(t, "1700000000000-My-Clip.mp4", ticket.ObjectKey)
	assert.NotContains(t, ticket.ObjectKey, " ")
	assert.Equal(t, "https://media.example.com/1700000000000-My-Clip.mp4", ticket.PublicURL)
	assert.Equal(t, time.UnixMilli(1700000000000).Add(time.Hour).UTC(), ticket.ExpiresAt)

	require.Len(t, objects.calls, 1)
	assert.Equal(t, presignCall{"1700000000000-My-Clip.mp4", "video/mp4", time.Hour}, objects.calls[0])
}

func TestIssuedPublicURLMapsBackToObjectKey(t *testing.T) {
	objects := newFake()
	b := NewBroker(objects, time.Hour)
	safe := regexp.MustCompile(`^[0-9]+-[A-Za-z0-9._-]+$`)

	for _, name := range []string{"take#2.mp4", "what?.png", "50%20off.jpg", "Été à Paris.jpg", "My Clip.mp4"} {
		ticket, err := b.Issue(context.Background(), TicketRequest{Filename: name})
		require.NoError(t, err)
		assert.Regexp(t, safe, ticket.ObjectKey, name)

		key, ok := objects.KeyFromURL(ticket.PublicURL)
		require.True(t, ok, name)
		assert.Equal(t, ticket.ObjectKey, key, "cleanup of %q must target the uploaded object", name)
	}
}

func TestIssueKeepsDeclaredContentType(t *testing.T) {
	b := NewBroker(newFake(), 0)

	ticket, err := b.Issue(context.Background(), TicketRequest{Filename: "clip.mp4", ContentType: "video/quicktime"})
	require.NoError(t, err)
	assert.Equal(t, "video/quicktime", ticket.ContentType)
}

func TestIssueDefaultsUnknownExtension(t *testing.T) {
	b := NewBroker(newFake(), 0)

	ticket, err := b.Issue(context.Background(), TicketRequest{Filename: "notes.xyz"})
	require.NoError(t, err)
	assert.Equal(t, DefaultContentType, ticket.ContentType)
}

func TestIssueKeysAreUniqueForRepeatedFilenames(t *testing.T) {
	b := NewBroker(newFake(), 0)
	b.now = func() time.Time { return time.UnixMilli(1700000000000) }

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		ticket, err := b.Issue(context.Background(), TicketRequest{Filename: "same.jpg"})
		require.NoError(t, err)
		assert.False(t, seen[ticket.ObjectKey], "duplicate key %s", ticket.ObjectKey)
		seen[ticket.ObjectKey] = true
	}
}

func TestIssueValidationHasNoSideEffects(t *testing.T) {
	objects := newFake()
	b := NewBroker(objects, 0)

	_, err := b.Issue(context.Background(), TicketRequest{Filename: "   "})
	assert.True(t, apperr.IsValidation(err))
	assert.Empty(t, objects.calls)
}

func TestIssueSurfacesStorageFailure(t *testing.T) {
	objects := newFake()
	objects.err = errors.New("signature does not match")
	b := NewBroker(objects, 0)

	_, err := b.Issue(context.Background(), TicketRequest{Filename: "a.png"})
	assert.True(t, apperr.IsUpstream(err))
	assert.Len(t, objects.calls, 1, "no automatic retry")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "My-Wedding-Film.mov", SanitizeFilename("My  Wedding\tFilm.mov"))
	assert.Equal(t, "clip.mp4", SanitizeFilename("../../etc/clip.mp4"))
	assert.Equal(t, "clip.mp4", SanitizeFilename(`C:\Users\me\clip.mp4`))
	assert.Equal(t, "upload", SanitizeFilename("dir/"))
	assert.Equal(t, "take-2.mp4", SanitizeFilename("take#2.mp4"))
	assert.Equal(t, "what-.png", SanitizeFilename("what?.png"))
	assert.Equal(t, "50-20off.jpg", SanitizeFilename("50%20off.jpg"))
	assert.Equal(t, "upload", SanitizeFilename("..."))
}

func TestResolveContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", ResolveContentType("PHOTO.JPG"))
	assert.Equal(t, "video/webm", ResolveContentType("a.webm"))
	assert.Equal(t, DefaultContentType, ResolveContentType("README"))
	assert.True(t, IsVideo("video/mp4"))
	assert.False(t, IsVideo("image/png"))
}

type gateFunc func(string) error

func (f gateFunc) Check(c string) error { return f(c) }

func TestCreateTicketRequiresAdmin(t *testing.T) {
	objects := newFake()
	gate := gateFunc(func(c string) error {
		if c == "s3cret" {
			return nil
		}
		return apperr.ErrUnauthorized
	})

	r := chi.NewRouter()
	r.With(middleware.RequireAdmin(gate)).Post("/uploads", NewHandler(NewBroker(objects, 0)).CreateTicket)

	req := httptest.NewRequest(http.MethodPost, "/uploads", strings.NewReader(`{"filename":"My Clip.mp4"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, objects.calls, "no signed URL issued without a credential")

	req = httptest.NewRequest(http.MethodPost, "/uploads", strings.NewReader(`{"filename":"My Clip.mp4"}`))
	req.Header.Set("Authorization", "s3cret")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data Ticket `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, "video/mp4", env.Data.ContentType)
	assert.NotEmpty(t, env.Data.SignedURL)
	assert.NotEmpty(t, env.Data.PublicURL)
}

func TestCreateTicketMissingFilename(t *testing.T) {
	h := NewHandler(NewBroker(newFake(), 0))
	rec := httptest.NewRecorder()
	h.CreateTicket(rec, httptest.NewRequest(http.MethodPost, "/uploads", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
