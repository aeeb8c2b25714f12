// Package client talks to the studio API on behalf of the admin CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/visualink/studio/internal/gallery"
	"github.com/visualink/studio/internal/upload"
)

// APIError is a non-2xx reply from the studio API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("studio api: %s", http.StatusText(e.Status))
	}
	return fmt.Sprintf("studio api: %d %s", e.Status, e.Message)
}

// Client calls the /api/v1 endpoints with an admin credential.
type Client struct {
	baseURL    string
	credential string
	http       *http.Client
}

// New creates a Client. baseURL includes the /api/v1 prefix.
func New(baseURL, credential string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		credential: credential,
		http:       hc,
	}
}

// RequestTicket asks the upload broker for a signed PUT URL.
func (c *Client) RequestTicket(ctx context.Context, filename, contentType string) (*upload.Ticket, error) {
	var t upload.Ticket
	err := c.do(ctx, http.MethodPost, "/uploads", upload.TicketRequest{Filename: filename, ContentType: contentType}, &t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListItems returns the gallery, newest first.
func (c *Client) ListItems(ctx context.Context) ([]gallery.Item, error) {
	var items []gallery.Item
	if err := c.do(ctx, http.MethodGet, "/gallery", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateItem records an uploaded object in the gallery.
func (c *Client) CreateItem(ctx context.Context, req gallery.CreateRequest) (*gallery.Item, error) {
	var it gallery.Item
	if err := c.do(ctx, http.MethodPost, "/gallery", req, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// UpdateItem changes a gallery record.
func (c *Client) UpdateItem(ctx context.Context, req gallery.UpdateRequest) (*gallery.Item, error) {
	var it gallery.Item
	if err := c.do(ctx, http.MethodPut, "/gallery/"+strconv.FormatInt(req.ID, 10), req, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// DeleteItem removes a gallery record and its media.
func (c *Client) DeleteItem(ctx context.Context, id int64, url string) error {
	return c.do(ctx, http.MethodDelete, "/gallery/"+strconv.FormatInt(id, 10), gallery.DeleteRequest{ID: id, URL: url}, nil)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.credential != "" {
		req.Header.Set("Authorization", c.credential)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&env); err != nil && err != io.EOF {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode}
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Error}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode %s %s data: %w", method, path, err)
		}
	}
	return nil
}
