package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/visualink/studio/internal/upload"
)

// ProgressFunc receives bytes sent so far and the total.
type ProgressFunc func(sent, total int64)

// Uploader sends file bytes straight to object storage using a ticket.
type Uploader struct {
	http *http.Client
}

// NewUploader creates an Uploader. A nil client means no overall timeout,
// since large videos can take a while.
func NewUploader(hc *http.Client) *Uploader {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Uploader{http: hc}
}

// Put uploads size bytes from body to the ticket's signed URL with the
// ticket's content type. The object is only visible once Put returns nil.
func (u *Uploader) Put(ctx context.Context, t *upload.Ticket, body io.Reader, size int64, progress ProgressFunc) error {
	if t == nil || t.SignedURL == "" {
		return fmt.Errorf("upload ticket has no signed url")
	}
	if progress != nil {
		body = &countingReader{r: body, total: size, progress: progress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, t.SignedURL, body)
	if err != nil {
		return err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", t.ContentType)

	resp, err := u.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload %s: %w", t.ObjectKey, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("upload %s: storage returned %d: %s", t.ObjectKey, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

type countingReader struct {
	r        io.Reader
	sent     int64
	total    int64
	progress ProgressFunc
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.sent += int64(n)
		c.progress(c.sent, c.total)
	}
	return n, err
}
