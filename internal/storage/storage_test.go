package storage

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	Namespace
	deleted []string
	err     error
}

func (f *fakeStorage) PresignPut(context.Context, string, string, time.Duration) (string, error) {
	return "", nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return f.err
}

func TestNamespaceRoundTrip(t *testing.T) {
	ns := NewNamespace("https://media.example.com/")

	assert.Equal(t, "https://media.example.com/1700000000000-clip.mp4", ns.PublicURL("1700000000000-clip.mp4"))

	key, ok := ns.KeyFromURL("https://media.example.com/1700000000000-clip.mp4")
	require.True(t, ok)
	assert.Equal(t, "1700000000000-clip.mp4", key)
}

func TestNamespacePublicURLEscapesKey(t *testing.T) {
	ns := NewNamespace("https://media.example.com")

	for _, key := range []string{"take#2.mp4", "what?.png", "50%20off.jpg", "a b.jpg", "café.jpg", "dir/x y.jpg"} {
		t.Run(key, func(t *testing.T) {
			u := ns.PublicURL(key)
			assert.NotContains(t, u[len("https://media.example.com/"):], "#")
			assert.NotContains(t, u, "?")

			got, ok := ns.KeyFromURL(u)
			require.True(t, ok)
			assert.Equal(t, key, got)
		})
	}
}

func TestNamespaceKeyFromURL(t *testing.T) {
	ns := NewNamespace("https://media.example.com")

	tests := []struct {
		name string
		in   string
		key  string
		ok   bool
	}{
		{"managed", "https://media.example.com/a.jpg", "a.jpg", true},
		{"escaped", "https://media.example.com/caf%C3%A9.jpg", "café.jpg", true},
		{"query stripped", "https://media.example.com/a.jpg?v=2", "a.jpg", true},
		{"external host", "https://cdn.other.com/a.jpg", "", false},
		{"prefix lookalike", "https://media.example.com.evil/a.jpg", "", false},
		{"base only", "https://media.example.com/", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := ns.KeyFromURL(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()

	t.Run("managed url is deleted", func(t *testing.T) {
		s := &fakeStorage{Namespace: NewNamespace("https://media.example.com")}
		res := Cleanup(ctx, s, "https://media.example.com/a.jpg")
		assert.Equal(t, "deleted", res.Outcome())
		assert.Equal(t, []string{"a.jpg"}, s.deleted)
	})

	t.Run("external url is skipped silently", func(t *testing.T) {
		s := &fakeStorage{Namespace: NewNamespace("https://media.example.com")}
		res := Cleanup(ctx, s, "https://youtube.com/watch?v=1")
		assert.True(t, res.Skipped)
		assert.NoError(t, res.Err)
		assert.Empty(t, s.deleted)
	})

	t.Run("empty url is skipped", func(t *testing.T) {
		s := &fakeStorage{Namespace: NewNamespace("https://media.example.com")}
		res := Cleanup(ctx, s, "  ")
		assert.Equal(t, "skipped", res.Outcome())
		assert.Empty(t, s.deleted)
	})

	t.Run("failure is reported not returned", func(t *testing.T) {
		s := &fakeStorage{Namespace: NewNamespace("https://media.example.com"), err: errors.New("boom")}
		res := Cleanup(ctx, s, "https://media.example.com/a.jpg")
		assert.Equal(t, "failed", res.Outcome())
		assert.EqualError(t, res.Err, "boom")
		assert.Equal(t, "a.jpg", res.Key)
	})
}

func TestS3PresignPutIsOffline(t *testing.T) {
	s, err := NewS3Storage(context.Background(), Config{
		Endpoint:   "https://account.r2.cloudflarestorage.com",
		Region:     "auto",
		Bucket:     "media",
		AccessKey:  "AKIDEXAMPLE",
		SecretKey:  "secret",
		PathStyle:  true,
		PublicBase: "https://media.example.com",
	})
	require.NoError(t, err)

	signed, err := s.PresignPut(context.Background(), "1700000000000-My-Clip.mp4", "video/mp4", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "/media/1700000000000-My-Clip.mp4", u.Path)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
	assert.Contains(t, u.Query().Get("X-Amz-SignedHeaders"), "content-type")
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), Config{Driver: "ftp"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}
