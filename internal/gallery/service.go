package gallery

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/visualink/studio/internal/apperr"
	"github.com/visualink/studio/internal/metrics"
	"github.com/visualink/studio/internal/storage"
)

// DefaultCategory is stored when a record is created without a category.
const DefaultCategory = "general"

// Store is the persistence the Service needs. *Repository satisfies it.
type Store interface {
	List(ctx context.Context) ([]Item, error)
	Create(ctx context.Context, url, title, category string) (*Item, error)
	GetByID(ctx context.Context, id int64) (*Item, error)
	Update(ctx context.Context, id int64, url, title, category *string) (*Item, error)
	Delete(ctx context.Context, id int64) (*Item, error)
}

// CreateRequest is the body of a create call.
type CreateRequest struct {
	URL      string `json:"url"      example:"https://media.example.com/1700000000000-clip.mp4"`
	Title    string `json:"title"    example:"Wedding Reception"`
	Category string `json:"category" example:"Wedding"`
}

// Validate checks required fields.
func (r CreateRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return apperr.Required("url")
	}
	return nil
}

// UpdateRequest changes an existing record. Nil fields are left unchanged.
// When URL differs from OldURL the object at OldURL is removed from storage.
type UpdateRequest struct {
	ID       int64   `json:"id"       example:"5"`
	URL      *string `json:"url"      example:"https://media.example.com/1700000000001-clip.mp4"`
	OldURL   string  `json:"oldUrl"   example:"https://media.example.com/1700000000000-clip.mp4"`
	Title    *string `json:"title"    example:"Wedding Reception"`
	Category *string `json:"category" example:"Wedding"`
}

// Validate checks required fields.
func (r UpdateRequest) Validate() error {
	if r.ID <= 0 {
		return apperr.Required("id")
	}
	return nil
}

// DeleteRequest removes a record and its media. URL may be empty, in which
// case the stored URL is used.
type DeleteRequest struct {
	ID  int64  `json:"id"  example:"5"`
	URL string `json:"url" example:"https://media.example.com/1700000000000-clip.mp4"`
}

// Validate checks required fields.
func (r DeleteRequest) Validate() error {
	if r.ID <= 0 {
		return apperr.Required("id")
	}
	return nil
}

// Service implements gallery CRUD with storage cleanup on replace and delete.
type Service struct {
	store   Store
	objects storage.Storage
	log     *slog.Logger
}

// NewService creates a new gallery Service.
func NewService(store Store, objects storage.Storage, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, objects: objects, log: log}
}

// List returns every item, newest first.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.Upstream("list gallery", err)
	}
	return items, nil
}

// Create stores a new record. Title defaults to "" and category to "general".
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Item, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = DefaultCategory
	}
	it, err := s.store.Create(ctx, strings.TrimSpace(req.URL), req.Title, category)
	if err != nil {
		return nil, apperr.Upstream("create gallery item", err)
	}
	return it, nil
}

// Update applies req. Once the metadata write succeeds, a previous URL that
// differs from the stored one has its object removed; that removal is best
// effort and never fails the update.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*Item, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var newURL *string
	if req.URL != nil {
		if u := strings.TrimSpace(*req.URL); u != "" {
			newURL = &u
		}
	}
	var category *string
	if req.Category != nil {
		c := strings.TrimSpace(*req.Category)
		if c == "" {
			c = DefaultCategory
		}
		category = &c
	}

	var oldURL string
	if newURL != nil {
		oldURL = strings.TrimSpace(req.OldURL)
		if oldURL == "" {
			current, err := s.store.GetByID(ctx, req.ID)
			if err != nil {
				return nil, s.storeErr("get gallery item", err)
			}
			oldURL = current.URL
		}
	}

	it, err := s.store.Update(ctx, req.ID, newURL, req.Title, category)
	if err != nil {
		return nil, s.storeErr("update gallery item", err)
	}

	if oldURL != "" && oldURL != it.URL {
		s.cleanup(ctx, req.ID, oldURL)
	}
	return it, nil
}

// Delete removes the record, then the object behind its URL. A failed
// storage removal is logged and does not fail the call. Deleting an id that
// no longer exists succeeds and touches no storage.
func (s *Service) Delete(ctx context.Context, req DeleteRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	removed, err := s.store.Delete(ctx, req.ID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return nil
	case err != nil:
		return apperr.Upstream("delete gallery item", err)
	}

	url := strings.TrimSpace(req.URL)
	if url == "" {
		url = removed.URL
	}
	s.cleanup(ctx, req.ID, url)
	return nil
}

// cleanup runs the best-effort storage removal and records its outcome.
func (s *Service) cleanup(ctx context.Context, id int64, url string) storage.CleanupResult {
	res := storage.Cleanup(ctx, s.objects, url)
	metrics.StorageCleanups.WithLabelValues(res.Outcome()).Inc()
	if res.Err != nil {
		s.log.WarnContext(ctx, "storage cleanup failed, object orphaned",
			slog.Int64("item_id", id),
			slog.String("url", res.URL),
			slog.String("key", res.Key),
			slog.String("error", res.Err.Error()),
		)
	}
	return res
}

func (s *Service) storeErr(op string, err error) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return apperr.Upstream(op, err)
}
